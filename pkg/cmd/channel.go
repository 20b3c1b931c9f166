package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/hireflow/hireflow/pkg/channels/gochannel"
	"github.com/hireflow/hireflow/pkg/channels/kafka"
)

// NewRelayPublisher builds the watermill publisher the event relay mirrors
// lifecycle events to.
func NewRelayPublisher(provider string, logger *slog.Logger) (message.Publisher, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		pub, _, err := kafka.CreateChannel(wmLogger, "hireflow")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka channel: %w", err)
		}

		return pub, nil
	case "gochannel":
		pub, _, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gochannel channel: %w", err)
		}

		return pub, nil
	default:
		return nil, fmt.Errorf("unsupported relay provider: %s", provider)
	}
}
