package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Keyed by <userID>:<uploadID> so a user's concurrent uploads don't
// clobber each other's percentages
var uploadProgress = sync.Map{}

func progressKey(userID, uploadID string) string {
	if uploadID == "" {
		uploadID = "default"
	}
	return userID + ":" + uploadID
}

// FileProgress streams one upload's running progress as server-sent
// events until it reaches 100, the upload fails, or the client leaves
func (a *API) FileProgress(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	key := progressKey(userID, c.Query("id"))

	if _, ok := uploadProgress.Load(key); !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "No running uploads found",
			"requestID": requestID,
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "nocache")
	c.Header("Connection", "keep-alive")

	ticker := time.NewTicker(time.Millisecond * 200)
	defer ticker.Stop()
	defer uploadProgress.Delete(key)

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}

		val, ok := uploadProgress.Load(key)
		if !ok {
			// Upload failed and tore the entry down
			return
		}

		pct := val.(float64)

		fmt.Fprintf(c.Writer, "data: %.2f\n\n", pct)
		c.Writer.Flush()

		if pct >= 100 {
			return
		}
	}
}
