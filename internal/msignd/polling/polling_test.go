package polling

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) ListForOrganization(ctx context.Context, organizationID uuid.UUID) ([]*Period, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Period), args.Error(1)
}

func (m *mockRepo) Save(ctx context.Context, period *Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestIntervalFor_MatchingPeriod(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	repo := new(mockRepo)
	repo.On("ListForOrganization", ctx, orgID).Return([]*Period{
		{Name: "overnight", StartTime: 0, EndTime: 6 * 60, IntervalSeconds: 1800},
		{Name: "business hours", StartTime: 8 * 60, EndTime: 18 * 60, IntervalSeconds: 60},
	}, nil)

	svc := NewService(repo, 900, testLogger)

	res := svc.IntervalFor(ctx, orgID, time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, 60, res.IntervalSeconds)
	assert.Equal(t, "business hours", res.PeriodName)
	assert.False(t, res.Emergency)
}

func TestIntervalFor_GapFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	repo := new(mockRepo)
	repo.On("ListForOrganization", ctx, orgID).Return([]*Period{
		{Name: "business hours", StartTime: 8 * 60, EndTime: 18 * 60, IntervalSeconds: 60},
	}, nil)

	svc := NewService(repo, 900, testLogger)

	res := svc.IntervalFor(ctx, orgID, time.Date(2026, 9, 2, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, 900, res.IntervalSeconds)
	assert.Equal(t, "default", res.PeriodName)
}

func TestIntervalFor_FirstContainingPeriodWins(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	repo := new(mockRepo)
	repo.On("ListForOrganization", ctx, orgID).Return([]*Period{
		{Name: "incident", StartTime: 0, EndTime: 24 * 60, IntervalSeconds: 15, Emergency: true},
		{Name: "business hours", StartTime: 8 * 60, EndTime: 18 * 60, IntervalSeconds: 60},
	}, nil)

	svc := NewService(repo, 900, testLogger)

	res := svc.IntervalFor(ctx, orgID, time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, 15, res.IntervalSeconds)
	assert.True(t, res.Emergency)
	assert.Equal(t, "incident", res.PeriodName)
}

func TestIntervalFor_StorageFailureDegradesToDefault(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	repo := new(mockRepo)
	repo.On("ListForOrganization", ctx, orgID).Return(nil, fmt.Errorf("connection refused"))

	svc := NewService(repo, 900, testLogger)

	res := svc.IntervalFor(ctx, orgID, time.Now())
	assert.Equal(t, 900, res.IntervalSeconds)
	assert.Equal(t, "default", res.PeriodName)
	assert.False(t, res.Emergency)
}

func TestNewService_DefaultInterval(t *testing.T) {
	svc := NewService(new(mockRepo), 0, testLogger)
	assert.Equal(t, DefaultIntervalSeconds, svc.defaultInterval)
}

func TestPeriodContains(t *testing.T) {
	p := &Period{StartTime: 8 * 60, EndTime: 18 * 60}

	assert.True(t, p.Contains(time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2026, 9, 2, 17, 59, 0, 0, time.UTC)))
	// End is exclusive.
	assert.False(t, p.Contains(time.Date(2026, 9, 2, 18, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, 9, 2, 7, 59, 0, 0, time.UTC)))
}
