package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserLogout clears the auth cookie and tears down the caller's realtime
// channels so a following login may subscribe again
func (a *API) UserLogout(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	a.Stores.Drop(userID)

	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.Status(http.StatusOK)
}
