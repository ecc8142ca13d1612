package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/metrics"
)

// DefaultSuppressionWindow bounds how often the same (screen, type) pair can
// alert. A sweep that runs every few minutes against a persistently-broken
// device must not produce an alert storm.
const DefaultSuppressionWindow = 30 * time.Minute

// Service implements the Dispatcher interface
type Service struct {
	repo        Repository
	suppression time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates an alert dispatcher. A non-positive suppression window
// falls back to the default.
func NewService(repo Repository, suppression time.Duration, logger *slog.Logger) *Service {
	if suppression <= 0 {
		suppression = DefaultSuppressionWindow
	}
	return &Service{
		repo:        repo,
		suppression: suppression,
		logger:      logger,
		now:         time.Now,
	}
}

// Dispatch records the alert unless a duplicate exists inside the
// suppression window
func (s *Service) Dispatch(ctx context.Context, a *Alert) (bool, error) {
	const op = "AlertService.Dispatch"

	latest, err := s.repo.LatestByScreenAndType(ctx, a.ScreenID, a.Type)
	if err != nil && !errors.IsNotFound(err) {
		return false, errors.NewError("LOOKUP_FAILED", "failed to check prior alerts", op, err)
	}

	now := s.now()
	if latest != nil && now.Sub(latest.CreatedAt) < s.suppression {
		metrics.AlertsDispatched.WithLabelValues(string(a.Type), "suppressed").Inc()
		s.logger.Debug("alert suppressed",
			"screenID", a.ScreenID,
			"type", a.Type,
			"priorAlertAge", now.Sub(latest.CreatedAt),
		)
		return false, nil
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = now

	if err := s.repo.Create(ctx, a); err != nil {
		return false, errors.NewError("SAVE_FAILED", "failed to create alert", op, err)
	}

	metrics.AlertsDispatched.WithLabelValues(string(a.Type), "created").Inc()
	s.logger.Info("alert created",
		"alertID", a.ID,
		"screenID", a.ScreenID,
		"type", a.Type,
		"severity", a.Severity,
		"message", a.Message,
	)
	return true, nil
}
