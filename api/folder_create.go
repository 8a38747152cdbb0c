package api

import (
	"net/http"
	"strings"

	"skyvault/drive-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type folderCreateBody struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

func (a *API) FolderCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data folderCreateBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read JSON body", zap.Error(err))
		return
	}

	if err := validators.RecordNameValidator(data.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	st, err := a.Stores.Files(c.Request.Context(), userID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	err = st.CreateFolder(c.Request.Context(), strings.TrimSpace(data.Name), data.ParentID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	c.Status(http.StatusCreated)
}
