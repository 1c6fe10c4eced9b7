package api

import (
	"io" // Stream writer

	"expense_tracker/internal/watch" // Live queries

	"github.com/gin-gonic/gin" // Gin web framework
)

// snapshotEvent is the Server-Sent Events name of every snapshot
const snapshotEvent = "snapshot"

// streamSnapshots writes the initial snapshot and every update of sub as
// Server-Sent Events until the client goes away
func streamSnapshots[T any](c *gin.Context, sub *watch.Subscription[T]) {
	defer sub.Cancel() // Release the broker listener

	c.Header("Cache-Control", "no-cache")  // Never cache a live stream
	c.Header("X-Accel-Buffering", "no")    // Disable proxy buffering
	c.SSEvent(snapshotEvent, sub.Snapshot) // Initial result set
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-sub.Updates():
			if !ok {
				return false // Subscription ended
			}
			c.SSEvent(snapshotEvent, snapshot) // Fresh result set
			return true
		case <-c.Request.Context().Done():
			return false // Client disconnected
		}
	})
}
