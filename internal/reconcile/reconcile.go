/*
Package reconcile diffs freshly scraped tender records against the previous
run's snapshot, deciding which notifications to emit and what to persist.
*/
package reconcile

import (
	"sort"

	"go.uber.org/zap"

	"github.com/rmedina/cfewatch/internal/snapshot"
	"github.com/rmedina/cfewatch/internal/types"
)

// Field labels as they appear in notification messages. The amount is labeled
// "Monto" in messages even though the snapshot stores it as "Monto
// Adjudicado".
const (
	FieldStatus  = "Estado"
	FieldAwardee = "Adjudicado a"
	FieldAmount  = "Monto"
)

// Engine owns the in-memory snapshot for the duration of one run. It is not
// safe for concurrent use; the run processes codes strictly one at a time.
type Engine struct {
	snap     snapshot.Snapshot
	observed map[string]struct{}
	logger   *zap.Logger
}

func NewEngine(snap snapshot.Snapshot, logger *zap.Logger) *Engine {
	if snap == nil {
		snap = snapshot.Snapshot{}
	}
	return &Engine{
		snap:     snap,
		observed: make(map[string]struct{}),
		logger:   logger,
	}
}

// Snapshot returns the engine's working snapshot. The caller persists it; the
// engine only mutates it.
func (e *Engine) Snapshot() snapshot.Snapshot {
	return e.snap
}

// Reconcile evaluates one code's records, in extraction order, against the
// working snapshot. Each record is compared to the snapshot as already
// updated by earlier records in the same run: a duplicate identifier (within
// a code, or reappearing under another code) emits a second event only if it
// differs from the just-committed state, and the last occurrence wins.
func (e *Engine) Reconcile(code string, records []types.TenderRecord) []types.ChangeEvent {
	var events []types.ChangeEvent

	for _, rec := range records {
		e.observed[rec.ID] = struct{}{}

		prev, known := e.snap[rec.ID]
		if !known {
			events = append(events, types.ChangeEvent{
				Kind:        types.EventNewTender,
				ID:          rec.ID,
				Description: rec.Description,
				Published:   rec.Published,
			})
			e.snap[rec.ID] = snapshot.Entry{Status: rec.Status, Awardee: rec.Awardee, Amount: rec.Amount}
			continue
		}

		var diffs []types.FieldDiff
		if rec.Status != prev.Status {
			diffs = append(diffs, types.FieldDiff{Field: FieldStatus, Old: prev.Status, New: rec.Status})
		}
		if rec.Awardee != prev.Awardee {
			diffs = append(diffs, types.FieldDiff{Field: FieldAwardee, Old: prev.Awardee, New: rec.Awardee})
		}
		// An empty stored amount means the amount was never scraped
		// meaningfully, not that the tender was awarded for nothing;
		// comparing against it would fire a bogus change on the first run
		// after the field was introduced.
		if prev.Amount != "" && rec.Amount != prev.Amount {
			diffs = append(diffs, types.FieldDiff{Field: FieldAmount, Old: prev.Amount, New: rec.Amount})
		}

		if len(diffs) == 0 {
			continue
		}

		events = append(events, types.ChangeEvent{
			Kind:        types.EventFieldChange,
			ID:          rec.ID,
			Description: rec.Description,
			Diffs:       diffs,
		})
		e.snap[rec.ID] = snapshot.Entry{Status: rec.Status, Awardee: rec.Awardee, Amount: rec.Amount}
	}

	e.logger.Info("reconciled code",
		zap.String("code", code),
		zap.Int("records", len(records)),
		zap.Int("events", len(events)),
	)
	return events
}

// Finalize classifies the run's observations against the snapshot and, when
// the run observed the portal completely, purges identifiers that are no
// longer listed. A run where any code's extraction failed must not purge:
// rows that simply were not reached would look retired.
func (e *Engine) Finalize(complete bool) types.IntegrityReport {
	report := types.IntegrityReport{Observed: sortedKeys(e.observed)}

	for id := range e.snap {
		if _, ok := e.observed[id]; !ok {
			report.Missing = append(report.Missing, id)
		}
	}
	sort.Strings(report.Missing)

	for id := range e.observed {
		if _, ok := e.snap[id]; !ok {
			report.ExtraRemoved = append(report.ExtraRemoved, id)
		}
	}
	sort.Strings(report.ExtraRemoved)

	switch {
	case len(report.ExtraRemoved) > 0:
		// Every observed identifier was just inserted or already present, so
		// this set should be impossible to populate.
		e.logger.Error("observed identifiers absent from snapshot after reconciliation",
			zap.Strings("ids", report.ExtraRemoved))
	case len(report.Missing) > 0:
		e.logger.Warn("identifiers in snapshot no longer observed on portal",
			zap.Strings("ids", report.Missing))
	default:
		e.logger.Info("snapshot consistent with portal",
			zap.Int("observed", len(report.Observed)))
	}

	if !complete {
		e.logger.Warn("extraction incomplete for at least one code, skipping purge",
			zap.Int("would_purge", len(report.Missing)))
		return report
	}

	for _, id := range report.Missing {
		delete(e.snap, id)
	}
	return report
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
