package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campusnav/config"
	"campusnav/internal/domain/entity"
	"campusnav/internal/domain/service"
	"campusnav/internal/errors"
	"campusnav/internal/geo"
	"campusnav/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

const (
	// fallback defaults to keep navigation functional when config is missing/invalid
	defaultOffRouteThresholdMeters = 25.0
	defaultStepAdvanceMeters       = 20.0
	defaultArrivalRadiusMeters     = 10.0
	defaultWalkingSpeedMps         = 1.4
	defaultLocationCacheMaxAge     = 10 * time.Second
	defaultStartFixTimeout         = 20 * time.Second
)

// ErrLocationUnavailable is returned when no usable starting location can be
// obtained for a new navigation session.
var ErrLocationUnavailable = errors.New("unable to determine current location")

// navigationSession is the single active session, exclusively owned and
// mutated by the navigation service under its lock.
type navigationSession struct {
	// generation tags recalculation requests so results arriving after the
	// session ended (or was replaced) are discarded instead of resurrecting
	// stale state.
	generation uuid.UUID

	destination             orb.Point
	route                   entity.Route
	currentStepIndex        int
	totalSteps              int
	remainingDistanceMeters float64
	remainingTimeSeconds    float64
	nextInstruction         string
	currentLocation         *entity.CoordinateSample
	isOffRoute              bool
	isRecalculating         bool

	// lastAnnouncedStep suppresses duplicate step announcements from rapid
	// successive updates.
	lastAnnouncedStep int
}

func (sess *navigationSession) snapshot() *entity.NavigationSnapshot {
	snap := &entity.NavigationSnapshot{
		IsNavigating:            true,
		CurrentStepIndex:        sess.currentStepIndex,
		TotalSteps:              sess.totalSteps,
		RemainingDistanceMeters: sess.remainingDistanceMeters,
		RemainingTimeSeconds:    sess.remainingTimeSeconds,
		NextInstruction:         sess.nextInstruction,
		Destination:             sess.destination,
		Route:                   sess.route,
		IsOffRoute:              sess.isOffRoute,
		IsRecalculating:         sess.isRecalculating,
	}
	if sess.currentLocation != nil {
		location := *sess.currentLocation
		snap.CurrentLocation = &location
	}

	return snap
}

type navigationService struct {
	positions usecase.PositionUsecase
	routes    service.RouteProvider
	voice     usecase.VoiceUsecase
	logger    *slog.Logger

	offRouteThresholdMeters float64
	stepAdvanceMeters       float64
	arrivalRadiusMeters     float64
	walkingSpeedMps         float64
	locationCacheMaxAge     time.Duration
	startFixTimeout         time.Duration

	mu                sync.Mutex
	session           *navigationSession
	subscribers       map[uuid.UUID]func(*entity.NavigationSnapshot)
	unsubscribeUpdate func()
	unsubscribeError  func()
}

// NewNavigationService creates a new navigation engine instance
func NewNavigationService(
	positions usecase.PositionUsecase,
	routes service.RouteProvider,
	voice usecase.VoiceUsecase,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.NavigationUsecase {
	// If Navigation is not configured, provide a default configuration
	if cfg.Navigation == nil {
		cfg.Navigation = &config.NavigationConfig{
			OffRouteThresholdMeters: defaultOffRouteThresholdMeters,
			StepAdvanceMeters:       defaultStepAdvanceMeters,
			ArrivalRadiusMeters:     defaultArrivalRadiusMeters,
			WalkingSpeedMps:         defaultWalkingSpeedMps,
			LocationCacheMaxAge:     defaultLocationCacheMaxAge,
			StartFixTimeout:         defaultStartFixTimeout,
		}
	}

	svc := &navigationService{
		positions:               positions,
		routes:                  routes,
		voice:                   voice,
		logger:                  logger,
		offRouteThresholdMeters: cfg.Navigation.OffRouteThresholdMeters,
		stepAdvanceMeters:       cfg.Navigation.StepAdvanceMeters,
		arrivalRadiusMeters:     cfg.Navigation.ArrivalRadiusMeters,
		walkingSpeedMps:         cfg.Navigation.WalkingSpeedMps,
		locationCacheMaxAge:     cfg.Navigation.LocationCacheMaxAge,
		startFixTimeout:         cfg.Navigation.StartFixTimeout,
		subscribers:             make(map[uuid.UUID]func(*entity.NavigationSnapshot)),
	}

	if svc.offRouteThresholdMeters <= 0 {
		svc.offRouteThresholdMeters = defaultOffRouteThresholdMeters
	}
	if svc.stepAdvanceMeters <= 0 {
		svc.stepAdvanceMeters = defaultStepAdvanceMeters
	}
	if svc.arrivalRadiusMeters <= 0 {
		svc.arrivalRadiusMeters = defaultArrivalRadiusMeters
	}
	if svc.walkingSpeedMps <= 0 {
		svc.walkingSpeedMps = defaultWalkingSpeedMps
	}
	if svc.locationCacheMaxAge <= 0 {
		svc.locationCacheMaxAge = defaultLocationCacheMaxAge
	}
	if svc.startFixTimeout <= 0 {
		svc.startFixTimeout = defaultStartFixTimeout
	}

	return svc
}

// StartNavigation begins a session toward the destination. A previous session
// is discarded implicitly without announcements.
func (s *navigationService) StartNavigation(ctx context.Context, input *usecase.StartNavigationInput) error {
	start, err := s.resolveStartLocation(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()

	// Starting a new session replaces any previous one.
	if s.session != nil {
		s.detachHandlersLocked()
		s.session = nil
	}

	route := input.InitialRoute
	sess := &navigationSession{
		generation:        uuid.New(),
		destination:       input.Destination,
		route:             route,
		totalSteps:        len(route.Instructions),
		currentLocation:   &start,
		lastAnnouncedStep: -1,
	}
	if len(route.Instructions) > 0 {
		sess.nextInstruction = route.Instructions[0]
	}
	sess.remainingDistanceMeters = geo.Distance(start.Point(), sess.destination)
	sess.remainingTimeSeconds = sess.remainingDistanceMeters / s.walkingSpeedMps
	s.session = sess

	// Share an already-running watch; start one only if none is active.
	if !s.positions.IsWatching() {
		if err := s.positions.StartWatching(service.PositionOptions{
			EnableHighAccuracy: true,
			Timeout:            s.startFixTimeout,
		}); err != nil {
			s.logger.Warn("failed to start continuous watch", slog.Any("error", err))
		}
	}

	s.unsubscribeUpdate = s.positions.OnLocationUpdate(s.handleLocationUpdate)
	s.unsubscribeError = s.positions.OnLocationError(s.handleLocationError)

	announcement := "Navigation started."
	if sess.nextInstruction != "" {
		announcement = "Navigation started. " + sess.nextInstruction
	}
	snapshot := sess.snapshot()
	s.mu.Unlock()

	s.voice.Announce(announcement)
	s.broadcast(snapshot)

	return nil
}

// StopNavigation ends the active session. No-op when idle.
func (s *navigationService) StopNavigation() {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()

		return
	}

	s.detachHandlersLocked()
	s.session = nil
	s.mu.Unlock()

	s.positions.StopWatching()
	s.voice.Announce("Navigation stopped")
	s.broadcast(nil)
}

// State returns a snapshot of the active session, or nil when idle.
func (s *navigationService) State() *entity.NavigationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}

	return s.session.snapshot()
}

// OnStateChange registers a state subscriber.
func (s *navigationService) OnStateChange(fn func(*entity.NavigationSnapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// resolveStartLocation prefers a fresh cached sample and otherwise performs a
// high-accuracy single-shot fetch.
func (s *navigationService) resolveStartLocation(ctx context.Context) (entity.CoordinateSample, error) {
	if sample, ok := s.positions.LastKnownLocation(); ok {
		if at, ok := s.positions.LastUpdateTime(); ok && time.Since(at) < s.locationCacheMaxAge {
			return sample, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.startFixTimeout)
	defer cancel()

	sample, err := s.positions.CurrentPosition(fetchCtx, service.PositionOptions{
		EnableHighAccuracy: true,
		Timeout:            s.startFixTimeout,
	})
	if err != nil {
		return entity.CoordinateSample{}, errors.Wrap(ErrLocationUnavailable, err.Error())
	}

	return sample, nil
}

// handleLocationUpdate runs the per-update cycle: off-route check, progress
// update, step completion, then a full snapshot broadcast.
func (s *navigationService) handleLocationUpdate(sample entity.CoordinateSample) {
	s.mu.Lock()
	sess := s.session
	if sess == nil {
		s.mu.Unlock()

		return
	}

	sess.currentLocation = &sample
	var announcements []string

	// (a) Off-route detection, edge-triggered: one announcement and one
	// recalculation per deviation event.
	if len(sess.route.Coordinates) > 0 {
		minDist := geo.ClosestVertexDistance(sample.Point(), sess.route.Coordinates)
		if minDist > s.offRouteThresholdMeters && !sess.isOffRoute {
			sess.isOffRoute = true
			announcements = append(announcements, "Off route. Recalculating...")
			s.beginRecalculationLocked(sess)
		}
	}

	// (b) Progress toward the fixed destination.
	sess.remainingDistanceMeters = geo.Distance(sample.Point(), sess.destination)
	sess.remainingTimeSeconds = sess.remainingDistanceMeters / s.walkingSpeedMps
	arrived := sess.remainingDistanceMeters < s.arrivalRadiusMeters

	// (c) Step completion, at most one advance per update.
	if !arrived && sess.currentStepIndex < sess.totalSteps-1 && len(sess.route.Coordinates) > 0 {
		targetIdx := sess.currentStepIndex + 1
		if last := len(sess.route.Coordinates) - 1; targetIdx > last {
			targetIdx = last
		}
		if geo.Distance(sample.Point(), sess.route.Coordinates[targetIdx]) < s.stepAdvanceMeters {
			sess.currentStepIndex++
			if sess.currentStepIndex < len(sess.route.Instructions) {
				sess.nextInstruction = sess.route.Instructions[sess.currentStepIndex]
			}
			if sess.lastAnnouncedStep != sess.currentStepIndex && sess.nextInstruction != "" {
				sess.lastAnnouncedStep = sess.currentStepIndex
				announcements = append(announcements, sess.nextInstruction)
			}
		}
	}

	snapshot := sess.snapshot()
	s.mu.Unlock()

	for _, text := range announcements {
		s.voice.Announce(text)
	}
	s.broadcast(snapshot)

	if arrived {
		s.voice.Announce("You have arrived at your destination")
		s.StopNavigation()
	}
}

// handleLocationError logs watch failures; retry policy is left to the host.
func (s *navigationService) handleLocationError(err error) {
	s.logger.Warn("positioning error while navigating", slog.Any("error", err))
}

// beginRecalculationLocked flags the session and requests a replacement route
// off the update path. Caller holds the lock.
func (s *navigationService) beginRecalculationLocked(sess *navigationSession) {
	sess.isRecalculating = true

	gen := sess.generation
	origin := sess.currentLocation.Point()
	destination := sess.destination

	go s.recalculateRoute(gen, origin, destination)
}

// recalculateRoute fetches a replacement route and applies it if the session
// generation still matches. A failed fetch keeps the stale route in place and
// announces a degraded-continue message.
func (s *navigationService) recalculateRoute(gen uuid.UUID, origin, destination orb.Point) {
	ctx, cancel := context.WithTimeout(context.Background(), s.startFixTimeout)
	defer cancel()

	route, err := s.routes.FetchWalkingRoute(ctx, origin, destination)

	s.mu.Lock()
	sess := s.session
	if sess == nil || sess.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding stale recalculation result")

		return
	}

	var announcement string
	if err != nil || route == nil {
		s.logger.Warn("route recalculation failed", slog.Any("error", err))
		announcement = "Unable to recalculate route. Continue to destination."
	} else {
		sess.route = *route
		sess.currentStepIndex = 0
		sess.totalSteps = len(route.Instructions)
		sess.nextInstruction = ""
		if len(route.Instructions) > 0 {
			sess.nextInstruction = route.Instructions[0]
		}
		sess.remainingDistanceMeters = route.DistanceMeters
		sess.remainingTimeSeconds = route.DistanceMeters / s.walkingSpeedMps
		sess.isOffRoute = false
		sess.lastAnnouncedStep = -1

		announcement = "Route recalculated."
		if sess.nextInstruction != "" {
			announcement = "Route recalculated. " + sess.nextInstruction
		}
	}

	sess.isRecalculating = false
	snapshot := sess.snapshot()
	s.mu.Unlock()

	s.voice.Announce(announcement)
	s.broadcast(snapshot)
}

// detachHandlersLocked removes the engine's own position subscriptions.
func (s *navigationService) detachHandlersLocked() {
	if s.unsubscribeUpdate != nil {
		s.unsubscribeUpdate()
		s.unsubscribeUpdate = nil
	}
	if s.unsubscribeError != nil {
		s.unsubscribeError()
		s.unsubscribeError = nil
	}
}

// broadcast delivers a snapshot to every subscriber, isolating per-subscriber
// panics.
func (s *navigationService) broadcast(snapshot *entity.NavigationSnapshot) {
	s.mu.Lock()
	subs := make([]func(*entity.NavigationSnapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		s.notifySubscriber(fn, snapshot)
	}
}

func (s *navigationService) notifySubscriber(fn func(*entity.NavigationSnapshot), snapshot *entity.NavigationSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("state change subscriber panicked", slog.Any("panic", r))
		}
	}()

	fn(snapshot)
}
