package service

import (
	"context"
	"time"

	repository "github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/internal/domain/ranking"
	"github.com/okian/pmwiki/internal/domain/scoring"
	"github.com/okian/pmwiki/internal/domain/search"
	"github.com/okian/pmwiki/pkg/logger"
	"github.com/okian/pmwiki/pkg/metrics"
)

// snapshot is an immutable view of the published catalog. Readers load it
// through an atomic pointer; Refresh swaps in a new one.
type snapshot struct {
	listing    []*model.Device
	byCategory map[model.Category][]*model.Device
	bySlug     map[string]*model.Device
	index      *search.Index
	board      *ranking.Board
	builtAt    time.Time
}

var emptySnapshot = &snapshot{ //nolint:gochecknoglobals // zero value for readers before the first build
	byCategory: map[model.Category][]*model.Device{},
	bySlug:     map[string]*model.Device{},
	index:      search.NewIndex(nil),
	board:      ranking.Build(nil),
}

func buildSnapshot(devices []*model.Device, now time.Time) *snapshot {
	snap := &snapshot{
		listing:    devices,
		byCategory: make(map[model.Category][]*model.Device, len(model.Categories)),
		bySlug:     make(map[string]*model.Device, len(devices)),
		index:      search.NewIndex(devices),
		board:      ranking.Build(devices),
		builtAt:    now,
	}
	for _, d := range devices {
		snap.byCategory[d.Category] = append(snap.byCategory[d.Category], d)
		snap.bySlug[d.Slug] = d
	}
	return snap
}

func (sn *snapshot) published() int {
	return len(sn.listing)
}

// Refresh rebuilds the listing snapshot from the store. On failure the
// previous snapshot stays in place.
func (s *Service) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := s.now()
	devices, err := s.store.ListPublished(ctx, repository.ListFilter{})
	if err != nil {
		metrics.RecordFetchError("listing")
		return wrapFetch("list published", err)
	}
	for _, d := range devices {
		_, ok := scoring.ValueScore(scoring.FromDevice(d))
		metrics.RecordValueScore(ok)
	}

	snap := buildSnapshot(devices, s.now())
	s.snap.Store(snap)

	elapsed := s.now().Sub(start)
	metrics.RecordSnapshotRebuild(float64(elapsed.Milliseconds()), snap.builtAt.Unix(), snap.published(), snap.board.Len())
	s.log().Debug(ctx, "catalog snapshot rebuilt",
		logger.Int("published", snap.published()),
		logger.Int("ranked", snap.board.Len()),
		logger.Duration("took", elapsed),
	)
	return nil
}

// current returns the latest snapshot, or an empty one before the first
// successful build.
func (s *Service) current() *snapshot {
	if snap := s.snap.Load(); snap != nil {
		return snap
	}
	return emptySnapshot
}

// ensure builds the first snapshot on demand for callers that did not Start
// the service. Failures degrade to the empty snapshot.
func (s *Service) ensure(ctx context.Context) *snapshot {
	if snap := s.snap.Load(); snap != nil {
		return snap
	}
	if err := s.Refresh(ctx); err != nil {
		s.log().Warn(ctx, "catalog snapshot unavailable", logger.Error(err))
	}
	return s.current()
}
