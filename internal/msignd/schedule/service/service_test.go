package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) Save(ctx context.Context, s *schedule.Schedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Schedule), args.Error(1)
}

func (m *mockScheduleRepo) ListActive(ctx context.Context, organizationID uuid.UUID) ([]*schedule.Schedule, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedule.Schedule), args.Error(1)
}

func (m *mockScheduleRepo) List(ctx context.Context, organizationID uuid.UUID) ([]*schedule.Schedule, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedule.Schedule), args.Error(1)
}

func (m *mockScheduleRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockScreenRepo struct {
	mock.Mock
}

func (m *mockScreenRepo) Save(ctx context.Context, screen *device.Screen) error {
	args := m.Called(ctx, screen)
	return args.Error(0)
}

func (m *mockScreenRepo) FindByID(ctx context.Context, id uuid.UUID) (*device.Screen, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*device.Screen), args.Error(1)
}

func (m *mockScreenRepo) FindByDeviceID(ctx context.Context, deviceID string) (*device.Screen, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*device.Screen), args.Error(1)
}

func (m *mockScreenRepo) List(ctx context.Context, filter device.Filter) ([]*device.Screen, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*device.Screen), args.Error(1)
}

func (m *mockScreenRepo) UpdateHeartbeat(ctx context.Context, id uuid.UUID, status device.Status, seenAt time.Time) error {
	args := m.Called(ctx, id, status, seenAt)
	return args.Error(0)
}

func (m *mockScreenRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status device.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockScreenRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testSchedule(name string, priority int, start, end schedule.TimeOfDay, orgID uuid.UUID) *schedule.Schedule {
	return &schedule.Schedule{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		PlaylistID:     uuid.New(),
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		StartTime:      start,
		EndTime:        end,
		Weekdays:       schedule.AllWeek,
		Priority:       priority,
		Active:         true,
	}
}

func TestResolve_PriorityWins(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01", OrganizationID: orgID}

	low := testSchedule("ambient", 5, 9*60, 12*60, orgID)
	high := testSchedule("promo", 10, 10*60, 11*60, orgID)

	screens := new(mockScreenRepo)
	screens.On("FindByDeviceID", ctx, "lobby-01").Return(screen, nil)

	repo := new(mockScheduleRepo)
	repo.On("ListActive", ctx, orgID).Return([]*schedule.Schedule{low, high}, nil)

	svc := New(repo, screens, testLogger)

	// 10:30 on a Wednesday, inside both windows.
	at := time.Date(2026, 9, 2, 10, 30, 0, 0, time.UTC)
	res, err := svc.Resolve(ctx, "lobby-01", at)
	require.NoError(t, err)

	require.Len(t, res.Active, 2)
	assert.Equal(t, high.ID, res.Winner.ID)
	assert.Equal(t, high.ID, res.Active[0].ID)
	assert.Equal(t, low.ID, res.Active[1].ID)
}

func TestResolve_NothingScheduled(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01", OrganizationID: orgID}

	screens := new(mockScreenRepo)
	screens.On("FindByDeviceID", ctx, "lobby-01").Return(screen, nil)

	repo := new(mockScheduleRepo)
	repo.On("ListActive", ctx, orgID).Return([]*schedule.Schedule{}, nil)

	svc := New(repo, screens, testLogger)

	res, err := svc.Resolve(ctx, "lobby-01", time.Now())
	require.NoError(t, err)
	assert.Nil(t, res.Winner)
	assert.Empty(t, res.Active)
}

func TestResolve_UnknownDevice(t *testing.T) {
	ctx := context.Background()

	screens := new(mockScreenRepo)
	screens.On("FindByDeviceID", ctx, "ghost").Return(nil, errors.ErrNotFound)

	svc := New(new(mockScheduleRepo), screens, testLogger)

	_, err := svc.Resolve(ctx, "ghost", time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestResolve_FiltersTargetingAndWindow(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	screen := &device.Screen{
		ID:             uuid.New(),
		DeviceID:       "lobby-01",
		OrganizationID: orgID,
		DeviceType:     "raspberry-pi",
	}

	matching := testSchedule("matching", 1, 9*60, 17*60, orgID)

	wrongType := testSchedule("androids only", 9, 9*60, 17*60, orgID)
	wrongType.TargetDeviceTypes = []string{"android"}

	outsideWindow := testSchedule("evening", 9, 18*60, 22*60, orgID)

	wrongWeekday := testSchedule("weekend", 9, 9*60, 17*60, orgID)
	wrongWeekday.Weekdays = schedule.NewWeekdaySet(time.Saturday, time.Sunday)

	screens := new(mockScreenRepo)
	screens.On("FindByDeviceID", ctx, "lobby-01").Return(screen, nil)

	repo := new(mockScheduleRepo)
	repo.On("ListActive", ctx, orgID).Return(
		[]*schedule.Schedule{matching, wrongType, outsideWindow, wrongWeekday}, nil)

	svc := New(repo, screens, testLogger)

	// Wednesday noon.
	at := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	res, err := svc.Resolve(ctx, "lobby-01", at)
	require.NoError(t, err)

	require.Len(t, res.Active, 1)
	assert.Equal(t, matching.ID, res.Winner.ID)
}

func TestResolve_DeterministicTieBreak(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01", OrganizationID: orgID}

	a := testSchedule("a", 5, 9*60, 17*60, orgID)
	b := testSchedule("b", 5, 9*60, 17*60, orgID)

	screens := new(mockScreenRepo)
	screens.On("FindByDeviceID", ctx, "lobby-01").Return(screen, nil)

	svc := New(nil, screens, testLogger)
	at := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

	// Same priority and window: the smaller id wins regardless of the
	// order the repository returned the rows in.
	var winners []uuid.UUID
	for _, listing := range [][]*schedule.Schedule{{a, b}, {b, a}} {
		repo := new(mockScheduleRepo)
		repo.On("ListActive", ctx, orgID).Return(listing, nil)
		svc.repo = repo

		res, err := svc.Resolve(ctx, "lobby-01", at)
		require.NoError(t, err)
		winners = append(winners, res.Winner.ID)
	}
	assert.Equal(t, winners[0], winners[1])
}

func TestFindConflicts_TargetedCandidate(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01", OrganizationID: orgID}

	existing := testSchedule("existing", 5, 9*60, 17*60, orgID)

	candidate := testSchedule("candidate", 7, 10*60, 12*60, orgID)
	deviceID := "lobby-01"
	candidate.TargetDeviceID = &deviceID

	screens := new(mockScreenRepo)
	screens.On("FindByDeviceID", ctx, "lobby-01").Return(screen, nil)

	repo := new(mockScheduleRepo)
	repo.On("ListActive", ctx, orgID).Return([]*schedule.Schedule{existing}, nil)

	svc := New(repo, screens, testLogger)

	report, err := svc.FindConflicts(ctx, candidate, nil)
	require.NoError(t, err)

	assert.True(t, report.HasConflicts)
	require.Len(t, report.Screens, 1)
	assert.Equal(t, "lobby-01", report.Screens[0].Screen.DeviceID)
	require.Len(t, report.Screens[0].Conflicts, 1)
	assert.Equal(t, existing.ID, report.Screens[0].Conflicts[0].ID)
	assert.Empty(t, report.Global)
}

func TestFindConflicts_GlobalCandidate(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	globalOther := testSchedule("global other", 5, 9*60, 17*60, orgID)

	targeted := testSchedule("targeted", 5, 9*60, 17*60, orgID)
	deviceID := "lobby-01"
	targeted.TargetDeviceID = &deviceID

	candidate := testSchedule("candidate", 7, 10*60, 12*60, orgID)

	screens := new(mockScreenRepo)
	screens.On("List", ctx, device.Filter{OrganizationID: orgID}).Return([]*device.Screen{}, nil)

	repo := new(mockScheduleRepo)
	repo.On("ListActive", ctx, orgID).Return([]*schedule.Schedule{globalOther, targeted}, nil)

	svc := New(repo, screens, testLogger)

	report, err := svc.FindConflicts(ctx, candidate, nil)
	require.NoError(t, err)

	// No screens registered yet, but the two untargeted schedules still
	// compete organization-wide.
	assert.True(t, report.HasConflicts)
	assert.Empty(t, report.Screens)
	require.Len(t, report.Global, 1)
	assert.Equal(t, globalOther.ID, report.Global[0].ID)
}

func TestFindConflicts_NoOverlap(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	morning := testSchedule("morning", 5, 6*60, 9*60, orgID)
	candidate := testSchedule("evening", 5, 18*60, 22*60, orgID)

	repo := new(mockScheduleRepo)
	repo.On("ListActive", ctx, orgID).Return([]*schedule.Schedule{morning}, nil)

	svc := New(repo, new(mockScreenRepo), testLogger)

	report, err := svc.FindConflicts(ctx, candidate, nil)
	require.NoError(t, err)
	assert.False(t, report.HasConflicts)
}

func TestFindConflicts_IgnoresOwnRow(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	candidate := testSchedule("edited", 5, 9*60, 17*60, orgID)
	saved := *candidate

	repo := new(mockScheduleRepo)
	repo.On("ListActive", ctx, orgID).Return([]*schedule.Schedule{&saved}, nil)

	svc := New(repo, new(mockScreenRepo), testLogger)

	report, err := svc.FindConflicts(ctx, candidate, nil)
	require.NoError(t, err)
	assert.False(t, report.HasConflicts)
}

func TestCreate_RejectsInvalid(t *testing.T) {
	svc := New(new(mockScheduleRepo), new(mockScreenRepo), testLogger)

	bad := testSchedule("bad", 0, 17*60, 9*60, uuid.New())
	err := svc.Create(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}
