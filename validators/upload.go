package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrNoFile       = errors.New("no file provided")
)

// UploadValidator checks the file header and sniffs the real MIME type
// from the content instead of trusting the Content-Type header
func UploadValidator(fh *multipart.FileHeader) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	if err := RecordNameValidator(fh.Filename); err != nil {
		return http.StatusBadRequest, nil, "", err
	}

	if fh.Size > viper.GetInt64("upload.max_size") {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	return 0, f, mime.String(), nil
}
