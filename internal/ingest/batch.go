package ingest

import (
	"context"

	"github.com/weekender-app/weekender/internal/logger"
	"github.com/weekender-app/weekender/internal/place"
	"github.com/weekender-app/weekender/internal/store"
)

// Importer runs place drafts through the dedup gate and into the store.
type Importer struct {
	store *store.Store
	log   logger.Logger
}

func NewImporter(st *store.Store, log logger.Logger) *Importer {
	return &Importer{store: st, log: log}
}

// ImportBatch persists the admitted drafts and returns them. Candidates are
// processed strictly one at a time: the gate's running view of "already
// inserted this batch" only stays consistent under sequential inserts, so
// parallelizing this loop would reintroduce the duplicate race. A draft that
// fails validation is dropped and logged; it never aborts the batch.
func (im *Importer) ImportBatch(ctx context.Context, drafts []place.Draft) ([]place.Place, error) {
	existing, err := im.store.ListPlaces(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(existing))
	for _, p := range existing {
		names = append(names, p.Name)
	}
	gate := NewGate(names)

	created := make([]place.Place, 0, len(drafts))
	for _, d := range drafts {
		if !gate.Admit(d.Name) {
			im.log.Info("duplicate place skipped", logger.String("name", d.Name))
			continue
		}
		p, err := im.store.CreatePlace(ctx, d)
		if err != nil {
			im.log.Warn("place draft dropped",
				logger.String("name", d.Name),
				logger.Error(err))
			continue
		}
		created = append(created, p)
	}
	return created, nil
}
