package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campusnav/internal/domain/entity"
	"campusnav/internal/domain/service"
	"campusnav/internal/errors"
	"campusnav/internal/usecase"

	"github.com/google/uuid"
)

type positionService struct {
	provider service.PositioningProvider
	filter   *SampleFilter
	logger   *slog.Logger

	mu         sync.Mutex
	watch      service.WatchHandle
	lastKnown  *entity.CoordinateSample
	lastUpdate time.Time
	updateSubs map[uuid.UUID]func(entity.CoordinateSample)
	errorSubs  map[uuid.UUID]func(error)
}

// NewPositionService creates a new position source instance
func NewPositionService(provider service.PositioningProvider, filter *SampleFilter, logger *slog.Logger) usecase.PositionUsecase {
	return &positionService{
		provider:   provider,
		filter:     filter,
		logger:     logger,
		updateSubs: make(map[uuid.UUID]func(entity.CoordinateSample)),
		errorSubs:  make(map[uuid.UUID]func(error)),
	}
}

// CurrentPosition performs a single-shot fetch through the geo-sample filter.
func (s *positionService) CurrentPosition(ctx context.Context, opts service.PositionOptions) (entity.CoordinateSample, error) {
	raw, err := s.provider.CurrentPosition(ctx, opts)
	if err != nil {
		return entity.CoordinateSample{}, errors.Wrap(err, "failed to fetch current position")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered, ok := s.filter.Apply(raw, s.lastKnown)
	if !ok {
		// The one-shot path still answers: hand back the raw fix without
		// touching the last-known cache.
		return raw, nil
	}

	s.cacheLocked(filtered)

	return filtered, nil
}

// StartWatching begins continuous sampling, replacing any prior watch.
func (s *positionService) StartWatching(opts service.PositionOptions) error {
	s.StopWatching()

	watch, err := s.provider.WatchPosition(opts, s.handleRawSample, s.handleWatchError)
	if err != nil {
		if errors.Is(err, service.ErrPositioningUnsupported) {
			s.logger.Warn("positioning not supported, watch not started")

			return nil
		}

		return errors.Wrap(err, "failed to start position watch")
	}

	s.mu.Lock()
	s.watch = watch
	s.mu.Unlock()

	return nil
}

// StopWatching cancels the active watch. Idempotent.
func (s *positionService) StopWatching() {
	s.mu.Lock()
	watch := s.watch
	s.watch = nil
	s.mu.Unlock()

	if watch != nil {
		watch.Stop()
	}
}

// IsWatching reports whether a continuous watch is active.
func (s *positionService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.watch != nil
}

// OnLocationUpdate registers a subscriber for filtered watch samples.
func (s *positionService) OnLocationUpdate(fn func(entity.CoordinateSample)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.updateSubs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.updateSubs, id)
	}
}

// OnLocationError registers a subscriber for watch positioning failures.
func (s *positionService) OnLocationError(fn func(error)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.errorSubs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.errorSubs, id)
	}
}

// LastKnownLocation returns the most recently accepted sample, if any.
func (s *positionService) LastKnownLocation() (entity.CoordinateSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastKnown == nil {
		return entity.CoordinateSample{}, false
	}

	return *s.lastKnown, true
}

// LastUpdateTime returns the capture time of the most recent accepted sample.
func (s *positionService) LastUpdateTime() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastKnown == nil {
		return time.Time{}, false
	}

	return s.lastUpdate, true
}

// handleRawSample filters one watch sample and notifies subscribers when it
// is accepted. Rejections are silent: no callback fires for that sample.
func (s *positionService) handleRawSample(raw entity.CoordinateSample) {
	s.mu.Lock()

	filtered, ok := s.filter.Apply(raw, s.lastKnown)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("rejected positioning sample",
			slog.Float64("accuracy_meters", raw.AccuracyMeters))

		return
	}

	// Cache before notifying, so subscribers reading back observe the sample
	// they were just handed.
	s.cacheLocked(filtered)

	subs := make([]func(entity.CoordinateSample), 0, len(s.updateSubs))
	for _, fn := range s.updateSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		s.notifyUpdate(fn, filtered)
	}
}

// handleWatchError forwards a positioning failure to error subscribers.
func (s *positionService) handleWatchError(err error) {
	s.logger.Warn("positioning error during watch", slog.Any("error", err))

	s.mu.Lock()
	subs := make([]func(error), 0, len(s.errorSubs))
	for _, fn := range s.errorSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		s.notifyError(fn, err)
	}
}

func (s *positionService) cacheLocked(sample entity.CoordinateSample) {
	s.lastKnown = &sample
	s.lastUpdate = sample.CapturedAt
	if s.lastUpdate.IsZero() {
		s.lastUpdate = time.Now()
	}
}

// notifyUpdate isolates subscriber panics so one faulty callback cannot take
// the watch down with it.
func (s *positionService) notifyUpdate(fn func(entity.CoordinateSample), sample entity.CoordinateSample) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("location update subscriber panicked", slog.Any("panic", r))
		}
	}()

	fn(sample)
}

func (s *positionService) notifyError(fn func(error), err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("location error subscriber panicked", slog.Any("panic", r))
		}
	}()

	fn(err)
}
