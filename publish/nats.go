package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATS publishes every publication on a subject.
type NATS struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATS connects to url.
func NewNATS(url, subject string, logger zerolog.Logger) (*NATS, error) {
	logger = logger.With().Str("component", "nats").Logger()
	conn, err := nats.Connect(url,
		nats.Name("geotren-matcher"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	logger.Info().Str("url", url).Str("subject", subject).Msg("NATS publisher initialized")
	return &NATS{conn: conn, subject: subject, logger: logger}, nil
}

func (n *NATS) Publish(_ context.Context, p *Publication) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal publication: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}
