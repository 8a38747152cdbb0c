package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type shareBody struct {
	Users []string `json:"users"`
}

// FileShare replaces the sharing list of a file with exactly the given
// users
func (a *API) FileShare(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")

	var data shareBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read JSON body", zap.Error(err))
		return
	}

	st, err := a.Stores.Files(c.Request.Context(), userID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	if err := st.ShareWithUsers(c.Request.Context(), fileID, data.Users); err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	c.Status(http.StatusOK)
}

// FileUnshare removes the given users from the sharing list
func (a *API) FileUnshare(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")

	var data shareBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read JSON body", zap.Error(err))
		return
	}

	st, err := a.Stores.Shared(c.Request.Context(), userID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	if err := st.Unshare(c.Request.Context(), fileID, data.Users); err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	c.Status(http.StatusOK)
}
