package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileDelete moves a record to trash. The object and the row both stay
// around; listings drop the record once the update event lands.
func (a *API) FileDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return
	}

	st, err := a.Stores.Files(c.Request.Context(), userID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	if err := st.DeleteFile(c.Request.Context(), fileID); err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	c.Status(http.StatusOK)
}
