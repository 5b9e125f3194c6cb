package bus

import (
	"fmt"
	"strings"

	"github.com/Junhan0037/SearchFoundry/internal/config"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
)

// NewBus creates a new Bus instance based on the configuration.
func NewBus(cfg config.BusConfig) (Bus, error) {
	switch strings.ToLower(cfg.Type) {
	case "none":
		return NilBus{}, nil

	case "memory", "":
		return NewMemoryBus(), nil

	case "kafka":
		brokers := ParseKafkaBrokers(cfg.KafkaBrokers)
		if len(brokers) == 0 {
			return nil, apperrors.BadRequestError("kafka brokers not configured")
		}

		return NewKafkaBus(KafkaConfig{
			Brokers:       brokers,
			ConsumerGroup: "searchctl",
			ClientID:      "searchctl-bus",
		})

	default:
		return nil, apperrors.BadRequestError(fmt.Sprintf("unknown bus type: %s", cfg.Type))
	}
}
