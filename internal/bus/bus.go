// Package bus provides the event bus implementations for the audit
// pipeline.
package bus

import (
	"fmt"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

// New creates an event bus based on configuration.
// Single node: ChannelBus. Multi-node: NATSBus.
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "channel":
		return NewChannelBus(cfg.ChannelBufferSize), nil

	case "nats":
		return NewNATSBus(cfg)

	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", cfg.Type)
	}
}
