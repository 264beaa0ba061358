// Package positioning contains the bundled positioning adapters. Hosts with
// real GPS hardware substitute their own service.PositioningProvider.
package positioning

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campusnav/config"
	"campusnav/internal/domain/entity"
	"campusnav/internal/domain/service"
	"campusnav/internal/geo"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const (
	defaultUpdateInterval = 2 * time.Second
	defaultAccuracyMeters = 8.0
)

// SimulatedProvider replays a configured track at a fixed interval. It is the
// default adapter for development and demos; the watch walks the track point
// by point and stays on the last point once the track is exhausted.
type SimulatedProvider struct {
	logger   *slog.Logger
	interval time.Duration
	accuracy float64
	track    []orb.Point

	mu  sync.Mutex
	pos int
}

// NewSimulatedProvider creates a simulated positioning provider from config.
func NewSimulatedProvider(cfg *config.Config, logger *slog.Logger) (*SimulatedProvider, error) {
	if cfg.Positioning == nil || len(cfg.Positioning.Track) == 0 {
		return nil, errors.New("simulated positioning requires a non-empty track")
	}

	interval := cfg.Positioning.UpdateInterval
	if interval <= 0 {
		interval = defaultUpdateInterval
	}

	accuracy := cfg.Positioning.AccuracyMeters
	if accuracy <= 0 {
		accuracy = defaultAccuracyMeters
	}

	track := make([]orb.Point, 0, len(cfg.Positioning.Track))
	for _, p := range cfg.Positioning.Track {
		track = append(track, orb.Point{p.Longitude, p.Latitude})
	}

	return &SimulatedProvider{
		logger:   logger,
		interval: interval,
		accuracy: accuracy,
		track:    track,
	}, nil
}

// CurrentPosition returns the sample at the current track position without
// advancing the replay.
func (p *SimulatedProvider) CurrentPosition(ctx context.Context, opts service.PositionOptions) (entity.CoordinateSample, error) {
	if err := ctx.Err(); err != nil {
		return entity.CoordinateSample{}, service.NewPositionError(service.PositionTimeout, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.sampleAtLocked(p.pos), nil
}

// WatchPosition replays the track on a ticker until the handle is stopped.
func (p *SimulatedProvider) WatchPosition(opts service.PositionOptions, onUpdate func(entity.CoordinateSample), onError func(error)) (service.WatchHandle, error) {
	handle := &simulatedWatch{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-handle.stop:
				return
			case <-ticker.C:
				onUpdate(p.advance())
			}
		}
	}()

	p.logger.Debug("simulated position watch started",
		slog.Duration("interval", p.interval), slog.Int("track_points", len(p.track)))

	return handle, nil
}

// advance moves the replay forward one point and builds its sample.
func (p *SimulatedProvider) advance() entity.CoordinateSample {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pos < len(p.track)-1 {
		p.pos++
	}

	return p.sampleAtLocked(p.pos)
}

// sampleAtLocked builds a sample for track index idx, deriving heading and
// speed from the preceding point when one exists.
func (p *SimulatedProvider) sampleAtLocked(idx int) entity.CoordinateSample {
	point := p.track[idx]
	sample := entity.CoordinateSample{
		Latitude:       point.Lat(),
		Longitude:      point.Lon(),
		AccuracyMeters: p.accuracy,
		CapturedAt:     time.Now(),
	}

	if idx > 0 {
		prev := p.track[idx-1]
		heading := geo.Bearing(prev, point)
		speed := geo.Distance(prev, point) / p.interval.Seconds()
		sample.HeadingDegrees = &heading
		sample.SpeedMps = &speed
	}

	return sample
}

type simulatedWatch struct {
	once sync.Once
	stop chan struct{}
}

// Stop cancels the watch. Safe to call more than once.
func (w *simulatedWatch) Stop() {
	w.once.Do(func() { close(w.stop) })
}
