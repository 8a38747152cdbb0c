package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SharedList returns the files other users shared with the caller
func (a *API) SharedList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	st, err := a.Stores.Shared(c.Request.Context(), userID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	if err := st.FetchShared(c.Request.Context(), userID); err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, st.Shared())
}

type sharedAddBody struct {
	User string `json:"user"`
}

// SharedAdd grants one user access to a file, by id or email
func (a *API) SharedAdd(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")

	var data sharedAddBody
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

	if err := st.ShareFile(c.Request.Context(), fileID, data.User); err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	c.Status(http.StatusOK)
}

// SharedTrash soft-deletes a file from the shared context
func (a *API) SharedTrash(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")

	st, err := a.Stores.Shared(c.Request.Context(), userID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	if err := st.TrashShared(c.Request.Context(), fileID); err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	c.Status(http.StatusOK)
}
