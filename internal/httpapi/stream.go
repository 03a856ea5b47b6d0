package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendverify/internal/bus"
)

// stream serves a server-sent-events feed for one topic. Events are refetch
// signals; clients re-query the API when one arrives, so missing events
// across a reconnect is fine.
func (h *Handler) stream(c *gin.Context) {
	var topic string
	switch {
	case c.Query("session_id") != "":
		topic = bus.SessionTopic(c.Query("session_id"))
	case c.Query("email") != "":
		topic = bus.RegistrationTopic(c.Query("email"))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id or email query required"})
		return
	}

	events, err := h.Bus.Subscribe(c.Request.Context(), topic)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		evt, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("change", evt)
		return true
	})
}
