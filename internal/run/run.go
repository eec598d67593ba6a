/*
Package run orchestrates one monitoring pass: extract each tracked code,
reconcile against the snapshot, notify, and finish with the integrity pass.
*/
package run

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rmedina/cfewatch/internal/ai"
	"github.com/rmedina/cfewatch/internal/notify"
	"github.com/rmedina/cfewatch/internal/reconcile"
	"github.com/rmedina/cfewatch/internal/snapshot"
	"github.com/rmedina/cfewatch/internal/types"
)

// Extractor yields every record the portal currently lists for a code. An
// empty slice means the portal reported no results; a truncated or failed
// extraction must be an error instead, so the driver can keep the purge pass
// honest.
type Extractor interface {
	Extract(ctx context.Context, code string) ([]types.TenderRecord, error)
}

// Store persists the snapshot between runs.
type Store interface {
	Load() (snapshot.Snapshot, error)
	Save(snapshot.Snapshot) error
}

// Driver runs one pass over all tracked codes. A failure on one code is
// logged and contained; only snapshot load/save failures are fatal.
type Driver struct {
	codes     []string
	store     Store
	extractor Extractor
	notifier  notify.Notifier
	annotator *ai.Annotator
	logger    *zap.Logger
}

func NewDriver(codes []string, store Store, extractor Extractor, notifier notify.Notifier, annotator *ai.Annotator, logger *zap.Logger) *Driver {
	return &Driver{
		codes:     codes,
		store:     store,
		extractor: extractor,
		notifier:  notifier,
		annotator: annotator,
		logger:    logger,
	}
}

// Run executes one pass and returns the final integrity classification.
func (d *Driver) Run(ctx context.Context) (types.IntegrityReport, error) {
	snap, err := d.store.Load()
	if err != nil {
		return types.IntegrityReport{}, fmt.Errorf("load snapshot: %w", err)
	}
	d.logger.Info("loaded snapshot", zap.Int("known", len(snap)))

	engine := reconcile.NewEngine(snap, d.logger)
	complete := true

	for _, code := range d.codes {
		records, err := d.extractor.Extract(ctx, code)
		if err != nil {
			complete = false
			d.logger.Error("extraction failed, skipping code",
				zap.String("code", code),
				zap.Error(err),
			)
			continue
		}

		for _, ev := range engine.Reconcile(code, records) {
			text := d.formatEvent(ctx, ev)
			if err := d.notifier.Notify(ctx, text); err != nil {
				// The change is real whether or not the message lands; the
				// snapshot update below is kept either way.
				d.logger.Error("notification failed",
					zap.String("id", ev.ID),
					zap.Error(err),
				)
			}
			if err := d.store.Save(engine.Snapshot()); err != nil {
				return types.IntegrityReport{}, fmt.Errorf("persist snapshot after %s: %w", ev.ID, err)
			}
		}
	}

	report := engine.Finalize(complete)
	if err := d.store.Save(engine.Snapshot()); err != nil {
		return report, fmt.Errorf("persist snapshot after purge: %w", err)
	}
	return report, nil
}

// formatEvent renders the notification text, with the optional Gemini gloss
// on new tenders. Annotation failures degrade to the plain message.
func (d *Driver) formatEvent(ctx context.Context, ev types.ChangeEvent) string {
	text := notify.FormatEvent(ev)
	if ev.Kind != types.EventNewTender {
		return text
	}

	gloss, err := d.annotator.Gloss(ctx, ev.Description)
	if err != nil {
		d.logger.Warn("annotation failed", zap.String("id", ev.ID), zap.Error(err))
		return text
	}
	if gloss != "" {
		text += "\n- Resumen: " + gloss
	}
	return text
}
