package monitoring

import (
	"github.com/rs/zerolog"

	"github.com/rengine/rengine/internal/domain"
)

// StructuredLogger is a zerolog-backed EngineObserver.
type StructuredLogger struct {
	NoopObserver
	log zerolog.Logger
}

func NewStructuredLogger(log zerolog.Logger) *StructuredLogger {
	return &StructuredLogger{log: log.With().Str("component", "rengine").Logger()}
}

func (l *StructuredLogger) OnFactInserted(fact *domain.Fact) {
	l.log.Debug().Uint32("handle", uint32(fact.Handle)).Str("type", fact.Type).Msg("fact inserted")
}

func (l *StructuredLogger) OnFactRetracted(fact *domain.Fact) {
	l.log.Debug().Uint32("handle", uint32(fact.Handle)).Str("type", fact.Type).Msg("fact retracted")
}

func (l *StructuredLogger) OnActivationCreated(a *domain.Activation) {
	l.log.Debug().Str("rule", a.RuleName).Uint64("activation", uint64(a.ID)).Int("salience", a.Salience).Msg("activation created")
}

func (l *StructuredLogger) OnActivationFired(a *domain.Activation, outcome *ActionOutcome) {
	ev := l.log.Info().Str("rule", a.RuleName).Uint64("activation", uint64(a.ID)).Int("actions_run", outcome.ActionsRun)
	if outcome.Err != nil {
		ev.Err(outcome.Err).Msg("activation fired with error")
		return
	}
	ev.Msg("activation fired")
}

func (l *StructuredLogger) OnActivationWithdrawn(a *domain.Activation) {
	l.log.Debug().Str("rule", a.RuleName).Uint64("activation", uint64(a.ID)).Msg("activation withdrawn")
}

func (l *StructuredLogger) OnRuleLoaded(name string) {
	l.log.Info().Str("rule", name).Msg("rule loaded")
}

func (l *StructuredLogger) OnRuleUnloaded(name string) {
	l.log.Info().Str("rule", name).Msg("rule unloaded")
}

func (l *StructuredLogger) OnCycleLimitReached(cycles int) {
	l.log.Warn().Int("cycles", cycles).Msg("cycle limit reached")
}
