package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
	"github.com/mesophy/mesophy-signage/internal/msignd/auth"
	"github.com/mesophy/mesophy-signage/internal/msignd/command"
	"github.com/mesophy/mesophy-signage/internal/msignd/command/service"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/ratelimit"
)

// In-memory backing stores so the full handler -> service -> repository path
// runs without a database.

type memCommandRepo struct {
	mu       sync.Mutex
	commands map[uuid.UUID]*command.Command
}

func newMemCommandRepo() *memCommandRepo {
	return &memCommandRepo{commands: make(map[uuid.UUID]*command.Command)}
}

func (r *memCommandRepo) Create(ctx context.Context, cmd *command.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *cmd
	r.commands[cmd.ID] = &clone
	return nil
}

func (r *memCommandRepo) FindByID(ctx context.Context, id uuid.UUID) (*command.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	clone := *cmd
	return &clone, nil
}

func (r *memCommandRepo) ListForScreen(ctx context.Context, screenID uuid.UUID, limit int) ([]*command.Command, error) {
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

func (r *memCommandRepo) ClaimPending(ctx context.Context, screenID uuid.UUID, limit int, now time.Time) ([]*command.Command, error) {
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

func (r *memCommandRepo) Finish(ctx context.Context, id uuid.UUID, status command.Status, result map[string]interface{}, errorMessage *string, at time.Time) (*command.Command, bool, error) {
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

func (r *memCommandRepo) CancelPending(ctx context.Context, id uuid.UUID) (bool, error) {
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

func (r *memCommandRepo) CancelAllPending(ctx context.Context, screenID uuid.UUID) (int, error) {
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

func (r *memCommandRepo) ListStale(ctx context.Context, now time.Time) ([]*command.Command, error) {
	return nil, nil
}

func (r *memCommandRepo) FailStale(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func (r *memCommandRepo) AppendEvent(ctx context.Context, screenID, commandID uuid.UUID, event string, detail map[string]interface{}) error {
	return nil
}

type memScreenRepo struct {
	screen *device.Screen
}

func (r *memScreenRepo) Save(ctx context.Context, screen *device.Screen) error { return nil }

func (r *memScreenRepo) FindByID(ctx context.Context, id uuid.UUID) (*device.Screen, error) {
	if r.screen != nil && r.screen.ID == id {
		return r.screen, nil
	}
	return nil, errors.ErrNotFound
}

func (r *memScreenRepo) FindByDeviceID(ctx context.Context, deviceID string) (*device.Screen, error) {
	if r.screen != nil && r.screen.DeviceID == deviceID {
		return r.screen, nil
	}
	return nil, errors.ErrNotFound
}

func (r *memScreenRepo) List(ctx context.Context, filter device.Filter) ([]*device.Screen, error) {
	if r.screen == nil {
		return nil, nil
	}
	return []*device.Screen{r.screen}, nil
}

func (r *memScreenRepo) UpdateHeartbeat(ctx context.Context, id uuid.UUID, status device.Status, seenAt time.Time) error {
	return nil
}

func (r *memScreenRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status device.Status) error {
	return nil
}

func (r *memScreenRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

// stubAuth resolves known tokens to screen ids.
type stubAuth struct {
	tokens map[string]uuid.UUID
}

func (a *stubAuth) IssueToken(ctx context.Context, screenID uuid.UUID) (*auth.Token, error) {
	return nil, errors.ErrUnavailable
}

func (a *stubAuth) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	if screenID, ok := a.tokens[token]; ok {
		return screenID, nil
	}
	return uuid.Nil, errors.ErrNotRegistered
}

func (a *stubAuth) RevokeTokens(ctx context.Context, screenID uuid.UUID) error { return nil }

func (a *stubAuth) RequestCode(ctx context.Context, deviceInfo map[string]interface{}) (*auth.PairingCode, error) {
	return nil, errors.ErrUnavailable
}

func (a *stubAuth) ActivateCode(ctx context.Context, code string, screenID uuid.UUID) error {
	return errors.ErrUnavailable
}

func (a *stubAuth) ExchangeCode(ctx context.Context, code string) (string, uuid.UUID, error) {
	return "", uuid.Nil, errors.ErrUnavailable
}

// openLimiter never throttles.
type openLimiter struct{}

func (openLimiter) Allow(ctx context.Context, key ratelimit.LimitKey) error { return nil }
func (openLimiter) GetLimit(limitType string) ratelimit.Limit               { return ratelimit.Limit{} }
func (openLimiter) Reset(ctx context.Context, key ratelimit.LimitKey) error { return nil }

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testEnv struct {
	server   *httptest.Server
	screen   *device.Screen
	deviceID string
	token    string
}

// newTestEnv stands up the device and management routers the same way the
// daemon composes them.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	screen := &device.Screen{
		ID:             uuid.New(),
		DeviceID:       "lobby-01",
		OrganizationID: uuid.New(),
		Name:           "Lobby North",
		Status:         device.StatusOnline,
	}

	svc := service.New(newMemCommandRepo(), &memScreenRepo{screen: screen}, testLogger)
	authSvc := &stubAuth{tokens: map[string]uuid.UUID{
		"device-token": screen.ID,
		"other-token":  uuid.New(),
	}}
	handler := NewHandler(svc, authSvc, openLimiter{}, testLogger)

	root := chi.NewRouter()
	root.Mount("/device/commands", handler.DeviceRouter())
	root.Route("/devices", func(r chi.Router) {
		r.Mount("/{deviceID}/commands", handler.ManagementRouter())
	})

	server := httptest.NewServer(root)
	t.Cleanup(server.Close)

	return &testEnv{
		server:   server,
		screen:   screen,
		deviceID: screen.DeviceID,
		token:    "device-token",
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCommandLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	// Operator enqueues a command.
	resp := env.do(t, http.MethodPost, "/devices/lobby-01/commands", "", v1.CommandEnqueueRequest{
		Type:      "restart",
		Priority:  8,
		CreatedBy: "operator",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created v1.Command
	decode(t, resp, &created)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 8, created.Priority)

	// Device polls and claims it.
	resp = env.do(t, http.MethodPost, "/device/commands/poll", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var poll v1.CommandPollResponse
	decode(t, resp, &poll)
	require.Len(t, poll.Commands, 1)
	assert.Equal(t, created.ID, poll.Commands[0].ID)
	assert.Equal(t, "executing", poll.Commands[0].Status)

	// A second poll comes back empty: the claim is exclusive.
	resp = env.do(t, http.MethodPost, "/device/commands/poll", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &poll)
	assert.Empty(t, poll.Commands)

	// Device reports completion.
	resp = env.do(t, http.MethodPost, "/device/commands/"+created.ID+"/report", env.token,
		v1.CommandReportRequest{
			Status: "completed",
			Result: map[string]interface{}{"restarted": true},
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var done v1.Command
	decode(t, resp, &done)
	assert.Equal(t, "completed", done.Status)
	require.NotNil(t, done.CompletedAt)

	// The operator's listing shows the terminal state.
	resp = env.do(t, http.MethodGet, "/devices/lobby-01/commands", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing []v1.Command
	decode(t, resp, &listing)
	require.Len(t, listing, 1)
	assert.Equal(t, "completed", listing[0].Status)
}

func TestPollRequiresDeviceToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/device/commands/poll", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "missing_token", body["error"])

	resp = env.do(t, http.MethodPost, "/device/commands/poll", "stolen-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	decode(t, resp, &body)
	assert.Equal(t, "not_registered", body["error"])
}

func TestEnqueueRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/devices/lobby-01/commands", "", v1.CommandEnqueueRequest{
		Type: "self_destruct",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnqueueUnknownDevice(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/devices/ghost/commands", "", v1.CommandEnqueueRequest{
		Type: "restart",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/devices/lobby-01/commands", "", v1.CommandEnqueueRequest{
		Type: "clear_cache",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created v1.Command
	decode(t, resp, &created)

	resp = env.do(t, http.MethodDelete, "/devices/lobby-01/commands/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cancel v1.CommandCancelResponse
	decode(t, resp, &cancel)
	assert.Equal(t, 1, cancel.Cancelled)

	// Cancelling again affects nothing.
	resp = env.do(t, http.MethodDelete, "/devices/lobby-01/commands/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &cancel)
	assert.Equal(t, 0, cancel.Cancelled)
}

func TestCancelAllOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		resp := env.do(t, http.MethodPost, "/devices/lobby-01/commands", "", v1.CommandEnqueueRequest{
			Type: "sync_content",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := env.do(t, http.MethodDelete, "/devices/lobby-01/commands", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cancel v1.CommandCancelResponse
	decode(t, resp, &cancel)
	assert.Equal(t, 3, cancel.Cancelled)
}

func TestReportForeignCommandForbidden(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/devices/lobby-01/commands", "", v1.CommandEnqueueRequest{
		Type: "restart",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created v1.Command
	decode(t, resp, &created)

	// A token belonging to a different screen must not be able to report
	// this command.
	resp = env.do(t, http.MethodPost, "/device/commands/"+created.ID+"/report", "other-token",
		v1.CommandReportRequest{Status: "completed"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
