package api

import (
	"errors"
	"net/http"
	"strings"

	"skyvault/drive-api/internal/store"
	"skyvault/drive-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err))
		return
	}

	files := form.File["file"]
	if len(files) <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	fh := files[0]

	code, f, mimeType, err := validators.UploadValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err))

			// That's to set the error into a general one for the users
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	var parentID *string
	if v := c.PostForm("parent_id"); v != "" {
		parentID = &v
	}

	st, err := a.Stores.Files(c.Request.Context(), userID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	in := store.UploadInput{
		Name:       fh.Filename,
		MimeType:   mimeType,
		Size:       fh.Size,
		Body:       f,
		ParentID:   parentID,
		DeviceName: c.PostForm("device_name"),
		FileOrigin: c.PostForm("file_origin"),
	}

	key := progressKey(userID, c.PostForm("upload_id"))

	err = st.Upload(c.Request.Context(), in, func(pct float64) {
		uploadProgress.Store(key, pct)
	})
	if err != nil {
		uploadProgress.Delete(key)
		abortStoreErr(c, requestID, err)
		return
	}

	// The authoritative record reaches clients through the change feed,
	// there's nothing useful to return here
	c.Status(http.StatusCreated)
}
