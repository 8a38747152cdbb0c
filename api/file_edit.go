package api

import (
	"net/http"
	"strings"

	"skyvault/drive-api/internal/model"
	"skyvault/drive-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fileEditOpts struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	IsLiked     *bool     `json:"is_liked"`
	Tags        *[]string `json:"tags"`
}

func (a *API) FileEdit(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No file ID provided",
			"requestID": requestID,
		})
		return
	}

	var data fileEditOpts
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read JSON body", zap.Error(err))
		return
	}

	patch := map[string]any{}

	if data.Name != nil {
		if err := validators.RecordNameValidator(*data.Name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
		patch["name"] = strings.TrimSpace(*data.Name)
	}
	if data.Description != nil {
		patch["description"] = *data.Description
	}
	if data.IsLiked != nil {
		patch["is_liked"] = *data.IsLiked
	}
	if data.Tags != nil {
		for _, tag := range *data.Tags {
			if strings.Contains(tag, ",") {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "Tags can't contain commas",
					"requestID": requestID,
				})
				return
			}
		}
		patch["tags"] = model.StringSlice(*data.Tags)
	}

	if len(patch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No changes provided",
			"requestID": requestID,
		})
		return
	}

	st, err := a.Stores.Files(c.Request.Context(), userID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	if err := st.UpdateFile(c.Request.Context(), fileID, patch); err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	c.Status(http.StatusOK)
}
