package validators_test

import (
	"strings"
	"testing"

	"skyvault/drive-api/validators"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestRecordNameValidator(t *testing.T) {
	viper.Set("upload.forbidden_name_chars", `<>:"/\|?*`)

	cases := []struct {
		name string
		in   string
		err  error
	}{
		{"plain file", "report.pdf", nil},
		{"folder", "My Documents", nil},
		{"empty", "", validators.ErrNameEmpty},
		{"whitespace only", "   ", validators.ErrNameEmpty},
		{"dots only", "...", validators.ErrNameDotsOnly},
		{"path separator", "a/b", validators.ErrNameInvalid},
		{"wildcard", "notes*", validators.ErrNameInvalid},
		{"too long", strings.Repeat("a", 256), validators.ErrNameTooLong},
		{"exactly max", strings.Repeat("a", 255), nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := validators.RecordNameValidator(c.in)
			if c.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.err)
			}
		})
	}
}
