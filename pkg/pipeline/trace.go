package pipeline

import (
	"github.com/rs/zerolog"

	"votetopics/pkg/classify"
	"votetopics/pkg/domain"
)

// itemTrace follows one item through the run for logging.
type itemTrace struct {
	log   zerolog.Logger
	title string
	state domain.ItemState
}

func newItemTrace(log zerolog.Logger, title string) *itemTrace {
	return &itemTrace{log: log.With().Str("item", title).Logger(), title: title, state: domain.StateFetched}
}

func (t *itemTrace) advance(next domain.ItemState) {
	if t.state.Terminal() {
		return
	}
	t.log.Debug().Str("from", string(t.state)).Str("to", string(next)).Msg("item transition")
	t.state = next
}

func (t *itemTrace) retitle(title string) {
	if title != t.title {
		t.log = t.log.With().Str("question", title).Logger()
	}
}

// reject logs the gate diagnostics of a rejected item.
func (t *itemTrace) reject(v classify.Verdict) {
	t.advance(domain.StateRejected)
	t.log.Info().
		Str("gate", v.RejectedAt).
		Str("reason", v.RejectionNote).
		Bool("debatable", v.Debatable).
		Bool("excluded", v.Excluded).
		Bool("fresh", v.Fresh).
		Int("facts", v.FactCount).
		Str("debatable_hit", v.DebatableHit).
		Str("excluded_hit", v.ExcludedHit).
		Str("stale_reason", v.StaleReason).
		Msg("item rejected")
}
