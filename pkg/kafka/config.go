package kafka

import (
	"crypto/tls"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Config holds Kafka connection parameters.
type Config struct {
	ConsumerGroup string

	// SASL configuration for authentication.
	SASLMechanism string // "PLAIN" or "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	// TLS enables TLS for Kafka connections.
	TLS         bool
	SASLEnabled bool
}

func (c Config) tlsConfig() *tls.Config {
	if !c.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// saslMechanism returns the configured SASL mechanism, or nil when SASL is
// disabled or the mechanism is unknown.
func (c Config) saslMechanism() sasl.Mechanism {
	if !c.SASLEnabled {
		return nil
	}
	switch c.SASLMechanism {
	case "SCRAM-SHA-256":
		m, err := scram.Mechanism(scram.SHA256, c.SASLUsername, c.SASLPassword)
		if err != nil {
			return nil
		}
		return m
	case "SCRAM-SHA-512":
		m, err := scram.Mechanism(scram.SHA512, c.SASLUsername, c.SASLPassword)
		if err != nil {
			return nil
		}
		return m
	case "PLAIN", "":
		return &plain.Mechanism{
			Username: c.SASLUsername,
			Password: c.SASLPassword,
		}
	default:
		return nil
	}
}

func (c Config) dialer() *kafkago.Dialer {
	if !c.TLS && !c.SASLEnabled {
		return nil
	}
	return &kafkago.Dialer{
		TLS:           c.tlsConfig(),
		SASLMechanism: c.saslMechanism(),
	}
}

func (c Config) transport() *kafkago.Transport {
	if !c.TLS && !c.SASLEnabled {
		return nil
	}
	return &kafkago.Transport{
		TLS:  c.tlsConfig(),
		SASL: c.saslMechanism(),
	}
}
