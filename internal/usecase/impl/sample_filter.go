package impl

import (
	"campusnav/config"
	"campusnav/internal/domain/entity"
	"campusnav/internal/geo"
)

const (
	// fallback defaults to keep filtering functional when config is missing/invalid
	defaultAccuracyThresholdMeters = 50.0
	defaultSmoothingFactor         = 0.25
	defaultRejectJumpMeters        = 120.0

	// A fix markedly worse than the established one is discarded outright.
	accuracyDegradeAllowanceMeters = 25.0

	// Elapsed time is clamped so bursts of samples do not divide by near-zero.
	minElapsedSeconds = 0.5

	// Displacement spikes only count when they happen this fast.
	spikeWindowSeconds = 3.0
)

// SampleFilter rejects low-quality or implausible positioning samples and
// smooths accepted ones with an exponential moving average.
type SampleFilter struct {
	accuracyThresholdMeters float64
	smoothingFactor         float64
	rejectJumpMeters        float64
}

// NewSampleFilter creates a new geo-sample filter instance
func NewSampleFilter(cfg *config.Config) *SampleFilter {
	// If Geolocation is not configured, provide a default configuration
	if cfg.Geolocation == nil {
		cfg.Geolocation = &config.GeolocationConfig{
			AccuracyThresholdMeters: defaultAccuracyThresholdMeters,
			SmoothingFactor:         defaultSmoothingFactor,
			RejectJumpMeters:        defaultRejectJumpMeters,
		}
	}

	accuracyThreshold := cfg.Geolocation.AccuracyThresholdMeters
	if accuracyThreshold <= 0 {
		accuracyThreshold = defaultAccuracyThresholdMeters
	}

	smoothing := cfg.Geolocation.SmoothingFactor
	if smoothing <= 0 || smoothing > 1 {
		smoothing = defaultSmoothingFactor
	}

	rejectJump := cfg.Geolocation.RejectJumpMeters
	if rejectJump <= 0 {
		rejectJump = defaultRejectJumpMeters
	}

	return &SampleFilter{
		accuracyThresholdMeters: accuracyThreshold,
		smoothingFactor:         smoothing,
		rejectJumpMeters:        rejectJump,
	}
}

// Apply evaluates next against the previously accepted sample. It returns the
// accepted (possibly smoothed) sample and true, or a zero sample and false
// when next is rejected. With no previous sample, next is accepted unchanged.
func (f *SampleFilter) Apply(next entity.CoordinateSample, previous *entity.CoordinateSample) (entity.CoordinateSample, bool) {
	if previous == nil {
		return next, true
	}

	// A fix much worse than the established accuracy is discarded outright.
	degradeLimit := f.accuracyThresholdMeters
	if allowed := previous.AccuracyMeters + accuracyDegradeAllowanceMeters; allowed > degradeLimit {
		degradeLimit = allowed
	}
	if next.AccuracyMeters > degradeLimit {
		return entity.CoordinateSample{}, false
	}

	// Too far, too fast: treat as a GPS spike.
	elapsed := next.CapturedAt.Sub(previous.CapturedAt).Seconds()
	if elapsed < minElapsedSeconds {
		elapsed = minElapsedSeconds
	}
	displacement := geo.Distance(previous.Point(), next.Point())
	if displacement > f.rejectJumpMeters+next.AccuracyMeters && elapsed < spikeWindowSeconds {
		return entity.CoordinateSample{}, false
	}

	return f.smooth(next, previous), true
}

// smooth blends next into previous with the configured EMA weight.
func (f *SampleFilter) smooth(next entity.CoordinateSample, previous *entity.CoordinateSample) entity.CoordinateSample {
	alpha := f.smoothingFactor

	smoothed := entity.CoordinateSample{
		Latitude:       previous.Latitude*(1-alpha) + next.Latitude*alpha,
		Longitude:      previous.Longitude*(1-alpha) + next.Longitude*alpha,
		AccuracyMeters: next.AccuracyMeters,
		HeadingDegrees: next.HeadingDegrees,
		SpeedMps:       next.SpeedMps,
		CapturedAt:     next.CapturedAt,
	}

	if previous.AccuracyMeters < smoothed.AccuracyMeters {
		smoothed.AccuracyMeters = previous.AccuracyMeters
	}
	if smoothed.HeadingDegrees == nil {
		smoothed.HeadingDegrees = previous.HeadingDegrees
	}
	if smoothed.SpeedMps == nil {
		smoothed.SpeedMps = previous.SpeedMps
	}

	return smoothed
}
