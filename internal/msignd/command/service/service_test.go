package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mesophy/mesophy-signage/internal/msignd/command"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
)

// fakeRepo is an in-memory command.Repository with the same claim
// exclusivity the SQL implementation guarantees.
type fakeRepo struct {
	mu       sync.Mutex
	commands map[uuid.UUID]*command.Command
	events   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{commands: make(map[uuid.UUID]*command.Command)}
}

func (r *fakeRepo) Create(ctx context.Context, cmd *command.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *cmd
	r.commands[cmd.ID] = &clone
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*command.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	clone := *cmd
	return &clone, nil
}

func (r *fakeRepo) ListForScreen(ctx context.Context, screenID uuid.UUID, limit int) ([]*command.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*command.Command
	for _, cmd := range r.commands {
		if cmd.ScreenID == screenID {
			clone := *cmd
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) ClaimPending(ctx context.Context, screenID uuid.UUID, limit int, now time.Time) ([]*command.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*command.Command
	for _, cmd := range r.commands {
		if cmd.ScreenID == screenID && cmd.Status == command.StatusPending && !cmd.ScheduledFor.After(now) {
			due = append(due, cmd)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].Priority != due[j].Priority {
			return due[i].Priority > due[j].Priority
		}
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	claimed := make([]*command.Command, 0, len(due))
	for _, cmd := range due {
		started := now
		cmd.Status = command.StatusExecuting
		cmd.StartedAt = &started
		clone := *cmd
		claimed = append(claimed, &clone)
	}
	return claimed, nil
}

func (r *fakeRepo) Finish(ctx context.Context, id uuid.UUID, status command.Status, result map[string]interface{}, errorMessage *string, at time.Time) (*command.Command, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[id]
	if !ok {
		return nil, false, errors.ErrNotFound
	}
	if cmd.Status.IsTerminal() {
		return nil, false, nil
	}
	cmd.Status = status
	cmd.CompletedAt = &at
	cmd.Result = result
	cmd.ErrorMessage = errorMessage
	clone := *cmd
	return &clone, true, nil
}

func (r *fakeRepo) CancelPending(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[id]
	if !ok {
		return false, errors.ErrNotFound
	}
	if cmd.Status != command.StatusPending {
		return false, nil
	}
	cmd.Status = command.StatusCancelled
	return true, nil
}

func (r *fakeRepo) CancelAllPending(ctx context.Context, screenID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, cmd := range r.commands {
		if cmd.ScreenID == screenID && cmd.Status == command.StatusPending {
			cmd.Status = command.StatusCancelled
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) ListStale(ctx context.Context, now time.Time) ([]*command.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*command.Command
	for _, cmd := range r.commands {
		if cmd.Stale(now) {
			clone := *cmd
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepo) FailStale(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, cmd := range r.commands {
		if cmd.Stale(now) {
			cmd.Status = command.StatusFailed
			cmd.CompletedAt = &now
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) AppendEvent(ctx context.Context, screenID, commandID uuid.UUID, event string, detail map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events++
	return nil
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

func testService(repo command.Repository, screen *device.Screen) *Service {
	screens := new(mockScreenRepo)
	if screen != nil {
		screens.On("FindByDeviceID", mock.Anything, screen.DeviceID).Return(screen, nil)
	}
	return New(repo, screens, testLogger)
}

func TestEnqueueAndPoll(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	repo := newFakeRepo()
	svc := testService(repo, screen)

	cmd, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{
		Type:      command.TypeRestart,
		CreatedBy: "operator",
	})
	require.NoError(t, err)
	assert.Equal(t, command.StatusPending, cmd.Status)
	assert.Equal(t, command.DefaultPriority, cmd.Priority)
	assert.Equal(t, command.DefaultTimeoutSeconds, cmd.TimeoutSeconds)

	claimed, err := svc.Poll(ctx, screen.ID, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, cmd.ID, claimed[0].ID)
	assert.Equal(t, command.StatusExecuting, claimed[0].Status)
	require.NotNil(t, claimed[0].StartedAt)

	// A second poll sees the claimed command as executing and skips it.
	again, err := svc.Poll(ctx, screen.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestEnqueueValidation(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	svc := testService(newFakeRepo(), screen)

	_, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{Type: "self_destruct"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{
		Type:     command.TypeRestart,
		Priority: 11,
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{
		Type:           command.TypeRestart,
		TimeoutSeconds: -5,
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestEnqueue_UnknownDevice(t *testing.T) {
	ctx := context.Background()
	screens := new(mockScreenRepo)
	screens.On("FindByDeviceID", mock.Anything, "ghost").Return(nil, errors.ErrNotFound)
	svc := New(newFakeRepo(), screens, testLogger)

	_, err := svc.Enqueue(ctx, "ghost", command.EnqueueRequest{Type: command.TypeRestart})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestPoll_PriorityOrderAndScheduling(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	repo := newFakeRepo()
	svc := testService(repo, screen)

	low, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{
		Type:     command.TypeSyncContent,
		Priority: 2,
	})
	require.NoError(t, err)

	high, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{
		Type:     command.TypeReboot,
		Priority: 9,
	})
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	_, err = svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{
		Type:         command.TypeClearCache,
		ScheduledFor: &future,
	})
	require.NoError(t, err)

	claimed, err := svc.Poll(ctx, screen.ID, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 2, "the future-scheduled command must not be claimed")
	assert.Equal(t, high.ID, claimed[0].ID)
	assert.Equal(t, low.ID, claimed[1].ID)
}

func TestPoll_ConcurrentClaimsNeverShare(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	repo := newFakeRepo()
	svc := testService(repo, screen)

	const total = 20
	for i := 0; i < total; i++ {
		_, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{Type: command.TypeHealthCheck})
		require.NoError(t, err)
	}

	results := make(chan []*command.Command, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := svc.Poll(ctx, screen.ID, total)
			assert.NoError(t, err)
			results <- claimed
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[uuid.UUID]int)
	claimedTotal := 0
	for batch := range results {
		claimedTotal += len(batch)
		for _, cmd := range batch {
			seen[cmd.ID]++
		}
	}
	assert.Equal(t, total, claimedTotal)
	for id, count := range seen {
		assert.Equal(t, 1, count, "command %s claimed twice", id)
	}
}

func TestReport_Lifecycle(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	repo := newFakeRepo()
	svc := testService(repo, screen)

	cmd, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{Type: command.TypeRestart})
	require.NoError(t, err)

	claimed, err := svc.Poll(ctx, screen.ID, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	done, err := svc.Report(ctx, screen.ID, cmd.ID, command.ReportRequest{
		Status: command.StatusCompleted,
		Result: map[string]interface{}{"restarted": true},
	})
	require.NoError(t, err)
	assert.Equal(t, command.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	// A device retry of the same report is a benign no-op.
	repeat, err := svc.Report(ctx, screen.ID, cmd.ID, command.ReportRequest{
		Status: command.StatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, command.StatusCompleted, repeat.Status)
}

func TestReport_Rejections(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	repo := newFakeRepo()
	svc := testService(repo, screen)

	cmd, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{Type: command.TypeRestart})
	require.NoError(t, err)

	t.Run("non-terminal status", func(t *testing.T) {
		_, err := svc.Report(ctx, screen.ID, cmd.ID, command.ReportRequest{
			Status: command.StatusExecuting,
		})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("wrong screen", func(t *testing.T) {
		_, err := svc.Report(ctx, uuid.New(), cmd.ID, command.ReportRequest{
			Status: command.StatusCompleted,
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbidden(err))
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := svc.Report(ctx, screen.ID, uuid.New(), command.ReportRequest{
			Status: command.StatusCompleted,
		})
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	repo := newFakeRepo()
	svc := testService(repo, screen)

	pending, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{Type: command.TypeRestart})
	require.NoError(t, err)

	count, err := svc.Cancel(ctx, "lobby-01", pending.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := svc.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, command.StatusCancelled, stored.Status)

	// Cancelling again is a counted no-op, not an error.
	count, err = svc.Cancel(ctx, "lobby-01", pending.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCancel_ExecutingIsNotCancellable(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	repo := newFakeRepo()
	svc := testService(repo, screen)

	cmd, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{Type: command.TypeRestart})
	require.NoError(t, err)

	_, err = svc.Poll(ctx, screen.ID, 0)
	require.NoError(t, err)

	count, err := svc.Cancel(ctx, "lobby-01", cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	stored, err := svc.Get(ctx, cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, command.StatusExecuting, stored.Status)
}

func TestCancelAll(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	repo := newFakeRepo()
	svc := testService(repo, screen)

	for i := 0; i < 3; i++ {
		_, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{Type: command.TypeRestart})
		require.NoError(t, err)
	}
	claimedFirst, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{
		Type:     command.TypeReboot,
		Priority: 10,
	})
	require.NoError(t, err)
	claimed, err := svc.Poll(ctx, screen.ID, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, claimedFirst.ID, claimed[0].ID)

	count, err := svc.CancelAll(ctx, "lobby-01")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "the executing command must survive a cancel-all")
}

func TestExpireStale(t *testing.T) {
	ctx := context.Background()
	screen := &device.Screen{ID: uuid.New(), DeviceID: "lobby-01"}
	repo := newFakeRepo()
	svc := testService(repo, screen)

	cmd, err := svc.Enqueue(ctx, "lobby-01", command.EnqueueRequest{
		Type:           command.TypeRestart,
		TimeoutSeconds: 60,
	})
	require.NoError(t, err)

	_, err = svc.Poll(ctx, screen.ID, 0)
	require.NoError(t, err)

	// Move the service clock past the timeout.
	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	count, err := svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := svc.Get(ctx, cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, command.StatusFailed, stored.Status)
}
