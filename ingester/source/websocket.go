package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yaron8/telemetry-dashboard/logi"
)

// WebSocketSource reads snapshots from the measurement source's websocket.
// There is no reconnection: when the connection ends, Run returns.
type WebSocketSource struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger
}

func NewWebSocketSource(url string) *WebSocketSource {
	return &WebSocketSource{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logi.GetLogger(),
	}
}

func (s *WebSocketSource) Run(ctx context.Context, h Handler) error {
	if h == nil {
		return ErrNoHandler
	}

	s.logger.Info("WebSocket source connecting", "url", s.url)

	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if resp != nil {
			s.logger.Error("WebSocket handshake rejected", "url", s.url, "status_code", resp.StatusCode)
		}
		return fmt.Errorf("failed to connect to %s: %w", s.url, err)
	}
	defer conn.Close()

	s.logger.Info("WebSocket source connected", "url", s.url)

	// unblock ReadMessage on shutdown
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	received := 0
	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info("WebSocket source closed by peer", "messages", received)
				return nil
			}
			return fmt.Errorf("failed to read from %s: %w", s.url, err)
		}

		if kind != websocket.TextMessage {
			continue
		}
		received++

		deliver(h, payload, s.logger)
	}
}

// deliver hands one payload to the handler. A bad payload is logged and
// does not end the stream.
func deliver(h Handler, payload []byte, logger *slog.Logger) {
	if err := h.HandleMessage(payload); err != nil {
		logger.Error("Error handling message", "error", err, "bytes", len(payload))
	}
}
