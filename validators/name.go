package validators

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrNameEmpty    = errors.New("no name provided")
	ErrNameTooLong  = errors.New("name is too long")
	ErrNameInvalid  = errors.New("name contains forbidden characters")
	ErrNameDotsOnly = errors.New("name can't consist of dots only")
)

const maxNameLen = 255

// RecordNameValidator checks a file or folder display name against the
// configured forbidden character set
func RecordNameValidator(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return ErrNameEmpty
	}

	if len(name) > maxNameLen {
		return ErrNameTooLong
	}

	if strings.Trim(name, ".") == "" {
		return ErrNameDotsOnly
	}

	if strings.ContainsAny(name, viper.GetString("upload.forbidden_name_chars")) {
		return ErrNameInvalid
	}

	return nil
}
