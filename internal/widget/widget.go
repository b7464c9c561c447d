package widget

import (
	"fmt"
	"io"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/model"
)

// Backend publishes and reads back the widget numbers.
type Backend interface {
	Publish(model.WidgetData) error
	Read() (model.WidgetData, error)
}

type nopBackend struct{}

func (nopBackend) Publish(model.WidgetData) error { return nil }
func (nopBackend) Read() (model.WidgetData, error) { return model.WidgetData{}, nil }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the backend selected by cfg. The closer must be closed when done.
func Open(cfg config.Config) (Backend, io.Closer, error) {
	switch cfg.Widget.Backend {
	case "", "file":
		return NewFilePublisher(config.WidgetPath(cfg)), nopCloser{}, nil
	case "redis":
		p, err := NewRedisPublisher(cfg.Widget.RedisURL, cfg.Widget.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case "none":
		return nopBackend{}, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown widget backend %q", cfg.Widget.Backend)
	}
}
