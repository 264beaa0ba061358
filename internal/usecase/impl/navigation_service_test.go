package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"campusnav/config"
	"campusnav/internal/domain/entity"
	"campusnav/internal/domain/service"
	"campusnav/internal/usecase"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test geometry: a short walk across campus. Adjacent vertices are roughly
// 60m apart; the destination is the last route vertex.
var (
	testStart       = orb.Point{75.5648, 26.8425}
	testMidpoint    = orb.Point{75.5644, 26.8430}
	testDestination = orb.Point{75.5642, 26.8433}
	testFarAway     = orb.Point{75.5700, 26.8460}
)

func testRoute() entity.Route {
	return entity.Route{
		Coordinates:     []orb.Point{testStart, testMidpoint, testDestination},
		DistanceMeters:  110,
		DurationSeconds: 79,
		Instructions: []string{
			"Head north along the mall",
			"Turn left at the library lawn",
			"Arrive at your destination",
		},
		IsRealRoute: true,
	}
}

// fakeNavPositions is a scriptable position source for the engine.
type fakeNavPositions struct {
	mu sync.Mutex

	lastKnown  *entity.CoordinateSample
	lastAt     time.Time
	current    entity.CoordinateSample
	currentErr error

	watching     bool
	startCalls   int
	stopCalls    int
	currentCalls int

	nextID    int
	updateFns map[int]func(entity.CoordinateSample)
	errorFns  map[int]func(error)
}

func newFakeNavPositions() *fakeNavPositions {
	return &fakeNavPositions{
		updateFns: make(map[int]func(entity.CoordinateSample)),
		errorFns:  make(map[int]func(error)),
	}
}

func (f *fakeNavPositions) CurrentPosition(ctx context.Context, opts service.PositionOptions) (entity.CoordinateSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.currentCalls++
	if f.currentErr != nil {
		return entity.CoordinateSample{}, f.currentErr
	}

	return f.current, nil
}

func (f *fakeNavPositions) StartWatching(opts service.PositionOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.startCalls++
	f.watching = true

	return nil
}

func (f *fakeNavPositions) StopWatching() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopCalls++
	f.watching = false
}

func (f *fakeNavPositions) IsWatching() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.watching
}

func (f *fakeNavPositions) OnLocationUpdate(fn func(entity.CoordinateSample)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.updateFns[id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.updateFns, id)
	}
}

func (f *fakeNavPositions) OnLocationError(fn func(error)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.errorFns[id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.errorFns, id)
	}
}

func (f *fakeNavPositions) LastKnownLocation() (entity.CoordinateSample, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lastKnown == nil {
		return entity.CoordinateSample{}, false
	}

	return *f.lastKnown, true
}

func (f *fakeNavPositions) LastUpdateTime() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lastKnown == nil {
		return time.Time{}, false
	}

	return f.lastAt, true
}

// push delivers one filtered sample to every registered update subscriber.
func (f *fakeNavPositions) push(sample entity.CoordinateSample) {
	f.mu.Lock()
	fns := make([]func(entity.CoordinateSample), 0, len(f.updateFns))
	for _, fn := range f.updateFns {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(sample)
	}
}

func (f *fakeNavPositions) updateSubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.updateFns)
}

// seedFreshFix makes the cached location usable as a starting fix.
func (f *fakeNavPositions) seedFreshFix(p orb.Point) {
	sample := sampleAt(p.Lat(), p.Lon(), 8, time.Now())
	f.mu.Lock()
	f.lastKnown = &sample
	f.lastAt = time.Now()
	f.mu.Unlock()
}

// fakeNavRoutes is a scriptable route provider. When gate is set, fetches
// block until the gate channel is closed.
type fakeNavRoutes struct {
	mu        sync.Mutex
	route     *entity.Route
	err       error
	gate      chan struct{}
	calls     int
	completed int
}

func (f *fakeNavRoutes) FetchWalkingRoute(ctx context.Context, origin, destination orb.Point) (*entity.Route, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	route, err := f.route, f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	f.completed++
	f.mu.Unlock()

	return route, err
}

func (f *fakeNavRoutes) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func (f *fakeNavRoutes) completedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.completed
}

// fakeVoice records announcements in order.
type fakeVoice struct {
	mu        sync.Mutex
	announced []string
}

func (v *fakeVoice) Announce(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.announced = append(v.announced, text)
}

func (v *fakeVoice) TestVoice(message string) { v.Announce(message) }

func (v *fakeVoice) Settings() entity.VoiceSettings { return entity.VoiceSettings{Enabled: true} }

func (v *fakeVoice) UpdateSettings(*usecase.UpdateVoiceSettingsInput) entity.VoiceSettings {
	return v.Settings()
}

func (v *fakeVoice) AvailableVoices() []service.VoiceDescriptor { return nil }

func (v *fakeVoice) messages() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]string, len(v.announced))
	copy(out, v.announced)

	return out
}

func (v *fakeVoice) contains(text string) bool {
	for _, m := range v.messages() {
		if m == text {
			return true
		}
	}

	return false
}

func newTestNavigationService(positions *fakeNavPositions, routes *fakeNavRoutes, voice *fakeVoice) usecase.NavigationUsecase {
	return NewNavigationService(positions, routes, voice, &config.Config{}, discardLogger())
}

func startTestSession(t *testing.T, svc usecase.NavigationUsecase) {
	t.Helper()

	err := svc.StartNavigation(context.Background(), &usecase.StartNavigationInput{
		Destination:  testDestination,
		InitialRoute: testRoute(),
	})
	require.NoError(t, err)
}

func TestNavigationService_StartUsesFreshCachedLocation(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)
	routes := &fakeNavRoutes{}
	voice := &fakeVoice{}
	svc := newTestNavigationService(positions, routes, voice)

	var snapshots []*entity.NavigationSnapshot
	svc.OnStateChange(func(s *entity.NavigationSnapshot) {
		snapshots = append(snapshots, s)
	})

	startTestSession(t, svc)

	// Fresh cache means no single-shot fetch
	assert.Equal(t, 0, positions.currentCalls)
	assert.Equal(t, 1, positions.startCalls)

	state := svc.State()
	require.NotNil(t, state)
	assert.True(t, state.IsNavigating)
	assert.Equal(t, 0, state.CurrentStepIndex)
	assert.Equal(t, 3, state.TotalSteps)
	assert.Equal(t, "Head north along the mall", state.NextInstruction)
	assert.InDelta(t, 107, state.RemainingDistanceMeters, 5)
	assert.InDelta(t, state.RemainingDistanceMeters/1.4, state.RemainingTimeSeconds, 0.1)

	assert.True(t, voice.contains("Navigation started. Head north along the mall"))
	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].IsNavigating)
}

func TestNavigationService_StartFetchesFixWhenCacheStale(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)
	positions.lastAt = time.Now().Add(-30 * time.Second)
	positions.current = sampleAt(testStart.Lat(), testStart.Lon(), 8, time.Now())
	routes := &fakeNavRoutes{}
	svc := newTestNavigationService(positions, routes, &fakeVoice{})

	startTestSession(t, svc)

	assert.Equal(t, 1, positions.currentCalls)
	assert.NotNil(t, svc.State())
}

func TestNavigationService_StartFailsWithoutLocation(t *testing.T) {
	positions := newFakeNavPositions()
	positions.currentErr = errors.New("no fix available")
	routes := &fakeNavRoutes{}
	voice := &fakeVoice{}
	svc := newTestNavigationService(positions, routes, voice)

	err := svc.StartNavigation(context.Background(), &usecase.StartNavigationInput{
		Destination:  testDestination,
		InitialRoute: testRoute(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocationUnavailable)
	assert.Nil(t, svc.State())
	assert.Empty(t, voice.messages())
}

func TestNavigationService_StepAdvance(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)
	voice := &fakeVoice{}
	svc := newTestNavigationService(positions, &fakeNavRoutes{}, voice)

	startTestSession(t, svc)

	// Reaching the next route vertex completes the current step
	positions.push(sampleAt(testMidpoint.Lat(), testMidpoint.Lon(), 8, time.Now()))

	state := svc.State()
	require.NotNil(t, state)
	assert.Equal(t, 1, state.CurrentStepIndex)
	assert.Equal(t, "Turn left at the library lawn", state.NextInstruction)
	assert.False(t, state.IsOffRoute)
	assert.True(t, voice.contains("Turn left at the library lawn"))

	// The same position again must not re-advance or re-announce
	positions.push(sampleAt(testMidpoint.Lat(), testMidpoint.Lon(), 8, time.Now()))

	state = svc.State()
	require.NotNil(t, state)
	assert.Equal(t, 1, state.CurrentStepIndex)

	announced := 0
	for _, m := range voice.messages() {
		if m == "Turn left at the library lawn" {
			announced++
		}
	}
	assert.Equal(t, 1, announced)
}

func TestNavigationService_OffRouteTriggersSingleRecalculation(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)

	recalculated := testRoute()
	recalculated.DistanceMeters = 50
	recalculated.Instructions = []string{"Head back toward the mall"}
	routes := &fakeNavRoutes{route: &recalculated, gate: make(chan struct{})}
	voice := &fakeVoice{}
	svc := newTestNavigationService(positions, routes, voice)

	startTestSession(t, svc)

	positions.push(sampleAt(testFarAway.Lat(), testFarAway.Lon(), 8, time.Now()))

	// The recalculation request is issued from a goroutine; wait for it to start.
	require.Eventually(t, func() bool {
		return routes.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	state := svc.State()
	require.NotNil(t, state)
	assert.True(t, state.IsOffRoute)
	assert.True(t, state.IsRecalculating)
	assert.True(t, voice.contains("Off route. Recalculating..."))

	// Still off route on the next update: edge-triggered, no second request
	positions.push(sampleAt(testFarAway.Lat(), testFarAway.Lon(), 8, time.Now().Add(2*time.Second)))
	assert.Equal(t, 1, routes.callCount())

	close(routes.gate)

	require.Eventually(t, func() bool {
		s := svc.State()

		return s != nil && !s.IsRecalculating
	}, time.Second, 5*time.Millisecond)

	state = svc.State()
	require.NotNil(t, state)
	assert.False(t, state.IsOffRoute)
	assert.Equal(t, 0, state.CurrentStepIndex)
	assert.Equal(t, 1, state.TotalSteps)
	assert.Equal(t, "Head back toward the mall", state.NextInstruction)
	assert.True(t, voice.contains("Route recalculated. Head back toward the mall"))
}

func TestNavigationService_RecalculationFailureKeepsStaleRoute(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)
	routes := &fakeNavRoutes{err: errors.New("routing api down")}
	voice := &fakeVoice{}
	svc := newTestNavigationService(positions, routes, voice)

	startTestSession(t, svc)

	positions.push(sampleAt(testFarAway.Lat(), testFarAway.Lon(), 8, time.Now()))

	require.Eventually(t, func() bool {
		s := svc.State()

		return s != nil && !s.IsRecalculating
	}, time.Second, 5*time.Millisecond)

	state := svc.State()
	require.NotNil(t, state)
	// Guidance degrades but the stale route stays in place
	assert.True(t, state.IsOffRoute)
	assert.Equal(t, 3, state.TotalSteps)
	assert.True(t, voice.contains("Unable to recalculate route. Continue to destination."))
}

func TestNavigationService_Arrival(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)
	voice := &fakeVoice{}
	svc := newTestNavigationService(positions, &fakeNavRoutes{}, voice)

	var snapshots []*entity.NavigationSnapshot
	svc.OnStateChange(func(s *entity.NavigationSnapshot) {
		snapshots = append(snapshots, s)
	})

	startTestSession(t, svc)

	positions.push(sampleAt(testDestination.Lat(), testDestination.Lon(), 8, time.Now()))

	assert.Nil(t, svc.State())
	assert.Equal(t, 1, positions.stopCalls)

	messages := voice.messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "You have arrived at your destination", messages[1])
	assert.Equal(t, "Navigation stopped", messages[2])

	// Final-progress snapshot first, then the nil end-of-session broadcast
	require.GreaterOrEqual(t, len(snapshots), 3)
	last := snapshots[len(snapshots)-1]
	beforeLast := snapshots[len(snapshots)-2]
	assert.Nil(t, last)
	require.NotNil(t, beforeLast)
	assert.True(t, beforeLast.IsNavigating)
	assert.Less(t, beforeLast.RemainingDistanceMeters, 10.0)
}

func TestNavigationService_StopIsIdempotent(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)
	voice := &fakeVoice{}
	svc := newTestNavigationService(positions, &fakeNavRoutes{}, voice)

	startTestSession(t, svc)

	svc.StopNavigation()
	svc.StopNavigation()

	assert.Nil(t, svc.State())
	assert.Equal(t, 1, positions.stopCalls)
	assert.Equal(t, 0, positions.updateSubscriberCount())

	stopped := 0
	for _, m := range voice.messages() {
		if m == "Navigation stopped" {
			stopped++
		}
	}
	assert.Equal(t, 1, stopped)
}

func TestNavigationService_StaleRecalculationDiscarded(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)

	recalculated := testRoute()
	recalculated.Instructions = []string{"Head back toward the mall"}
	routes := &fakeNavRoutes{route: &recalculated, gate: make(chan struct{})}
	voice := &fakeVoice{}
	svc := newTestNavigationService(positions, routes, voice)

	startTestSession(t, svc)

	positions.push(sampleAt(testFarAway.Lat(), testFarAway.Lon(), 8, time.Now()))

	// The recalculation request is issued from a goroutine; wait for it to start.
	require.Eventually(t, func() bool {
		return routes.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	// The session ends while the recalculation is still in flight
	svc.StopNavigation()
	close(routes.gate)

	require.Eventually(t, func() bool {
		return routes.completedCount() == 1
	}, time.Second, 5*time.Millisecond)

	assert.Nil(t, svc.State())
	assert.False(t, voice.contains("Route recalculated. Head back toward the mall"))
}

func TestNavigationService_StartReplacesExistingSession(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)
	voice := &fakeVoice{}
	svc := newTestNavigationService(positions, &fakeNavRoutes{}, voice)

	startTestSession(t, svc)

	second := testRoute()
	second.Instructions = []string{"Head to the sports complex"}
	newDestination := orb.Point{75.5633, 26.8441}

	err := svc.StartNavigation(context.Background(), &usecase.StartNavigationInput{
		Destination:  newDestination,
		InitialRoute: second,
	})
	require.NoError(t, err)

	state := svc.State()
	require.NotNil(t, state)
	assert.Equal(t, newDestination, state.Destination)
	assert.Equal(t, "Head to the sports complex", state.NextInstruction)

	// The watch is shared, and the old session's subscription is detached
	assert.Equal(t, 1, positions.startCalls)
	assert.Equal(t, 1, positions.updateSubscriberCount())
	assert.False(t, voice.contains("Navigation stopped"))
}

func TestNavigationService_SubscriberPanicIsolated(t *testing.T) {
	positions := newFakeNavPositions()
	positions.seedFreshFix(testStart)
	svc := newTestNavigationService(positions, &fakeNavRoutes{}, &fakeVoice{})

	svc.OnStateChange(func(*entity.NavigationSnapshot) {
		panic("misbehaving subscriber")
	})
	received := 0
	svc.OnStateChange(func(*entity.NavigationSnapshot) {
		received++
	})

	assert.NotPanics(t, func() {
		startTestSession(t, svc)
	})
	assert.Equal(t, 1, received)
}
