package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaron8/telemetry-dashboard/ingester/config"
)

var ErrNoHandler = errors.New("no message handler")

// Handler consumes raw payloads one at a time.
type Handler interface {
	HandleMessage(raw []byte) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(raw []byte) error

func (f HandlerFunc) HandleMessage(raw []byte) error { return f(raw) }

// Source delivers snapshots from the measurement source to a Handler until
// the context ends or the transport closes. Deliveries never overlap.
type Source interface {
	Run(ctx context.Context, h Handler) error
}

// New builds the source selected by the configuration.
func New(cfg *config.Config) (Source, error) {
	switch cfg.Source.Kind {
	case config.SourceWebSocket:
		return NewWebSocketSource(cfg.Source.URL), nil
	case config.SourceRedis:
		return NewRedisSource(NewRedisClient(cfg.Redis), cfg.Redis.Channel), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source.Kind)
	}
}
