package publish

import (
	"context"

	"github.com/rs/zerolog"
)

// Log writes a one-line summary of every publication.
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "publish").Logger()}
}

func (l *Log) Publish(_ context.Context, p *Publication) error {
	if p.Notice != "" {
		l.logger.Warn().Str("cycle", p.ID).Msg(p.Notice)
		return nil
	}
	l.logger.Info().
		Str("cycle", p.ID).
		Int("records", p.Records).
		Int("results", len(p.Results)).
		Int("tracked", p.Matched).
		Int("delayed", p.Delayed).
		Int("reaped", len(p.Reaped)).
		Msg("cycle published")
	return nil
}
