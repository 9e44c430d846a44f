package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/landscaper/internal/analytics"
	"github.com/mamadbah2/landscaper/internal/domain/models"
)

// HourlyRateKey is the settings key holding the labor cost per crew-member-hour.
const HourlyRateKey = "hourly_rate"

// ErrInvalidClientID is returned when a caller asks for a non-positive client id.
var ErrInvalidClientID = errors.New("client id must be positive")

// ErrSnapshotsDisabled is returned when no snapshot repository is configured.
var ErrSnapshotsDisabled = errors.New("profitability snapshots are not configured")

// Options are the business parameters the service projects with.
type Options struct {
	ThresholdPercent  float64
	Method            analytics.Method
	DefaultHourlyRate float64
}

// Service loads rows from the store and runs them through the analytics.
type Service struct {
	store     Store
	snapshots SnapshotRepository
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new reporting service instance. snapshots may be nil.
func NewService(store Store, snapshots SnapshotRepository, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ThresholdPercent <= 0 {
		opts.ThresholdPercent = analytics.DefaultThresholdPercent
	}
	if opts.Method == "" {
		opts.Method = analytics.MethodWeekly
	}
	if opts.DefaultHourlyRate <= 0 {
		opts.DefaultHourlyRate = analytics.DefaultHourlyRate
	}
	return &Service{
		store:     store,
		snapshots: snapshots,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// ThresholdPercent is the configured anomaly threshold.
func (s *Service) ThresholdPercent() float64 {
	return s.opts.ThresholdPercent
}

// HourlyRate reads the hourly_rate setting, falling back to the configured default when it
// is missing or not a non-negative number.
func (s *Service) HourlyRate(ctx context.Context) (float64, error) {
	raw, err := s.store.Setting(ctx, HourlyRateKey, "")
	if err != nil {
		return 0, fmt.Errorf("load hourly rate: %w", err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.opts.DefaultHourlyRate, nil
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		s.logger.Debug("ignoring invalid hourly rate setting", zap.String("value", raw), zap.Error(err))
		return s.opts.DefaultHourlyRate, nil
	}

	return rate.InexactFloat64(), nil
}

func (s *Service) params(ctx context.Context) (analytics.Params, error) {
	rate, err := s.HourlyRate(ctx)
	if err != nil {
		return analytics.Params{}, err
	}
	return analytics.Params{
		HourlyRate: rate,
		Method:     s.opts.Method,
		Now:        s.now(),
	}, nil
}

// ClientStatistics projects one client. It returns nil without error when the client does
// not exist.
func (s *Service) ClientStatistics(ctx context.Context, clientID int64) (*models.ClientStatistics, error) {
	history, err := s.clientHistory(ctx, clientID)
	if err != nil || history == nil {
		return nil, err
	}

	params, err := s.params(ctx)
	if err != nil {
		return nil, err
	}

	stats := analytics.Project(*history, params)
	return &stats, nil
}

// AllClientStatistics projects every (active) client from a single batch fetch, ordered by
// client name.
func (s *Service) AllClientStatistics(ctx context.Context, activeOnly bool) ([]models.ClientStatistics, error) {
	dataset, err := s.store.Snapshot(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("load client snapshot: %w", err)
	}

	params, err := s.params(ctx)
	if err != nil {
		return nil, err
	}

	return analytics.ProjectAll(dataset.Histories, params), nil
}

// AnomalousVisits flags visits whose duration is at least thresholdPercent of their
// client's average. A non-positive threshold uses the configured one. Without a clientID
// every active client is scanned; a positive clientID scans that client even if inactive.
func (s *Service) AnomalousVisits(ctx context.Context, thresholdPercent float64, clientID int64) ([]models.AnomalousVisit, error) {
	if thresholdPercent <= 0 {
		thresholdPercent = s.opts.ThresholdPercent
	}

	dataset, err := s.store.Snapshot(ctx, clientID <= 0)
	if err != nil {
		return nil, fmt.Errorf("load client snapshot: %w", err)
	}

	names := make(map[int64]string, len(dataset.Histories))
	var visits []models.Visit
	for _, h := range dataset.Histories {
		if clientID > 0 && h.Client.ID != clientID {
			continue
		}
		names[h.Client.ID] = h.Client.Name
		visits = append(visits, h.Visits...)
	}

	flagged := analytics.DetectAnomalies(visits, thresholdPercent)
	for i := range flagged {
		flagged[i].ClientName = names[flagged[i].ClientID]
	}

	s.logger.Debug("anomaly scan finished",
		zap.Int("visits", len(visits)),
		zap.Int("flagged", len(flagged)),
		zap.Float64("threshold_percent", thresholdPercent))

	return flagged, nil
}

// MonthlyTrend averages a client's visit time or cost per month of the given year. It
// returns nil without error when the client does not exist.
func (s *Service) MonthlyTrend(ctx context.Context, clientID int64, year int, mode analytics.TrendMode) ([]models.MonthlyAverage, error) {
	history, err := s.clientHistory(ctx, clientID)
	if err != nil || history == nil {
		return nil, err
	}

	rate, err := s.HourlyRate(ctx)
	if err != nil {
		return nil, err
	}

	if year == 0 {
		year = s.now().Year()
	}

	return analytics.MonthlyAverages(history.Visits, history.VisitMaterials, year, mode, rate), nil
}

// CaptureSnapshot projects every active client and persists the result as one run.
func (s *Service) CaptureSnapshot(ctx context.Context) (string, int, error) {
	if s.snapshots == nil {
		return "", 0, ErrSnapshotsDisabled
	}

	stats, err := s.AllClientStatistics(ctx, true)
	if err != nil {
		return "", 0, err
	}

	runID := uuid.NewString()
	takenAt := s.now().UTC()
	snapshots := make([]models.ProfitabilitySnapshot, 0, len(stats))
	for _, st := range stats {
		snapshots = append(snapshots, models.ProfitabilitySnapshot{
			RunID:      runID,
			TakenAt:    takenAt,
			ClientID:   st.ClientID,
			Statistics: st,
		})
	}

	if err := s.snapshots.SaveSnapshots(ctx, snapshots); err != nil {
		return "", 0, fmt.Errorf("save snapshots: %w", err)
	}

	s.logger.Info("profitability snapshot saved", zap.String("run_id", runID), zap.Int("clients", len(snapshots)))
	return runID, len(snapshots), nil
}

func (s *Service) clientHistory(ctx context.Context, clientID int64) (*models.ClientHistory, error) {
	if clientID <= 0 {
		return nil, ErrInvalidClientID
	}

	if hs, ok := s.store.(HistoryStore); ok {
		history, err := hs.ClientHistory(ctx, clientID)
		if err != nil {
			return nil, fmt.Errorf("load history for client %d: %w", clientID, err)
		}
		return history, nil
	}

	client, err := s.store.Client(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client %d: %w", clientID, err)
	}
	if client == nil {
		return nil, nil
	}

	visits, err := s.store.ClientVisits(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load visits for client %d: %w", clientID, err)
	}

	materials, err := s.store.ClientMaterials(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load materials for client %d: %w", clientID, err)
	}

	logged, err := s.store.VisitMaterialsForClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load visit materials for client %d: %w", clientID, err)
	}

	return &models.ClientHistory{
		Client:          *client,
		Visits:          visits,
		VisitMaterials:  logged,
		ClientMaterials: materials,
	}, nil
}
