package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"

	"CanvasBoard/internal/state"
)

// Watch subscribes to a session's change feed and calls fn for every event,
// starting with the server's hello. It blocks until ctx is done or the
// connection drops.
func (c *Client) Watch(ctx context.Context, sessionID string, fn func(state.Event)) error {
	wsURL := "ws" + strings.TrimPrefix(c.base, "http") + c.canvasPath(sessionID, "events")
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if apiErr := checkStatus(resp); apiErr != nil {
				return apiErr
			}
		}
		return fmt.Errorf("subscribing to %s: %w", sessionID, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var ev state.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("event stream for %s: %w", sessionID, err)
		}
		fn(ev)
	}
}
