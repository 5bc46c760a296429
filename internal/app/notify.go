package app

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogNotifier surfaces operator alerts through the structured log stream,
// where the deployment's alerting picks them up. The mail collaborator of
// the hosted deployment is wired in its place when configured.
type LogNotifier struct{}

func (LogNotifier) NotifyOperator(_ context.Context, subject, body string) {
	log.Error().Str("module", "app.notify").Str("subject", subject).Str("body", body).Msg("operator alert")
}
