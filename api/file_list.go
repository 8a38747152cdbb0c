package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileList refreshes the caller's store from the database and returns the
// visible (non-trashed) records
func (a *API) FileList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	st, err := a.Stores.Files(c.Request.Context(), userID)
	if err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	if err := st.Fetch(c.Request.Context(), userID); err != nil {
		abortStoreErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, st.Visible())
}
