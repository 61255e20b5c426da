package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vigneswari-developer/isstracker/internal/metrics"
)

const writeDeadline = 30 * time.Second

// client manages a single SSE connection's write operations.
type client struct {
	w      http.ResponseWriter
	rc     *http.ResponseController
	ip     string
	logger *slog.Logger

	messagesSent int64
}

// sendJSON marshals v and sends it as an SSE "data:" message.
func (c *client) sendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := c.write(fmt.Sprintf("data: %s\n\n", data)); err != nil {
		return err
	}
	c.messagesSent++
	metrics.IncStreamMessages()
	return nil
}

// sendRetry tells the browser how long to wait before reconnecting.
func (c *client) sendRetry(ms int) error {
	return c.write(fmt.Sprintf("retry: %d\n\n", ms))
}

// sendKeepalive sends an SSE comment line to keep the connection alive.
func (c *client) sendKeepalive() error {
	return c.write(":\n\n")
}

func (c *client) write(msg string) error {
	// Extend the deadline before each write; the server WriteTimeout would
	// otherwise cut long-lived streams.
	if err := c.rc.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		c.logger.Debug("could not set write deadline", "error", err)
	}
	if _, err := fmt.Fprint(c.w, msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return c.rc.Flush()
}
