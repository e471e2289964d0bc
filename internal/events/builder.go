package events

import (
	"fmt"
	"io"
	"strings"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/config"
)

// New builds the publisher chain from config. The hub, when given, always
// receives events. The returned closer releases broker connections.
func New(cfg config.EventsConfig, hub *Hub) (Publisher, io.Closer, error) {
	var pubs Fanout
	var closers multiCloser
	if hub != nil {
		pubs = append(pubs, hub)
	}

	switch strings.ToLower(cfg.Driver) {
	case "", "none":
	case "kafka":
		if len(cfg.Brokers) == 0 {
			return nil, nil, fmt.Errorf("events: kafka driver needs brokers")
		}
		kp := NewKafkaPublisher(cfg.Brokers, cfg.Topic)
		pubs = append(pubs, kp)
		closers = append(closers, kp)
	case "rabbitmq":
		rp, err := NewRabbitPublisher(cfg.RabbitMQURL, cfg.Queue)
		if err != nil {
			return nil, nil, err
		}
		pubs = append(pubs, rp)
		closers = append(closers, rp)
	default:
		return nil, nil, fmt.Errorf("events: unknown driver %q", cfg.Driver)
	}

	if len(pubs) == 0 {
		return Nop{}, closers, nil
	}
	return pubs, closers, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
