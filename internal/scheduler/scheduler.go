package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/landscaper/internal/config"
	"github.com/mamadbah2/landscaper/internal/domain/models"
	"github.com/mamadbah2/landscaper/internal/service/reporting"
	"github.com/mamadbah2/landscaper/internal/service/whatsapp"
)

const jobTimeout = 2 * time.Minute

// Reporter is the part of the reporting service the weekly job needs.
type Reporter interface {
	GenerateWeeklyReport(ctx context.Context, now time.Time) (string, error)
	CaptureSnapshot(ctx context.Context) (string, int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	schedule     string
	location     *time.Location
	reporter     Reporter
	messagingSvc whatsapp.MessagingService
	ownerNumber  string
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. messagingSvc may be nil, in which case
// only snapshots are captured.
func NewScheduler(cfg config.Config, reporter Reporter, messagingSvc whatsapp.MessagingService, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
	}

	if _, err := cron.ParseStandard(cfg.Reporting.CronSchedule); err != nil {
		return nil, fmt.Errorf("parse cron schedule %q: %w", cfg.Reporting.CronSchedule, err)
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		schedule:     cfg.Reporting.CronSchedule,
		location:     loc,
		reporter:     reporter,
		messagingSvc: messagingSvc,
		ownerNumber:  cfg.WhatsApp.OwnerNumber,
		logger:       logger,
	}, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.runWeekly); err != nil {
		return fmt.Errorf("schedule weekly job: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runWeekly() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunWeekly(ctx); err != nil {
		s.logger.Error("weekly job failed", zap.Error(err))
	}
}

// RunWeekly captures a profitability snapshot and sends the digest to the owner. Both
// steps run even if the first one fails.
func (s *Scheduler) RunWeekly(ctx context.Context) error {
	var errs []error

	runID, count, err := s.reporter.CaptureSnapshot(ctx)
	switch {
	case errors.Is(err, reporting.ErrSnapshotsDisabled):
		s.logger.Debug("snapshot storage not configured, skipping capture")
	case err != nil:
		errs = append(errs, fmt.Errorf("capture snapshot: %w", err))
	default:
		s.logger.Info("snapshot captured", zap.String("run_id", runID), zap.Int("clients", count))
	}

	if err := s.sendWeeklyReport(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *Scheduler) sendWeeklyReport(ctx context.Context) error {
	if s.messagingSvc == nil || s.ownerNumber == "" {
		s.logger.Debug("no owner number configured, skipping weekly report")
		return nil
	}

	s.logger.Info("generating weekly report")
	report, err := s.reporter.GenerateWeeklyReport(ctx, time.Now().In(s.location))
	if err != nil {
		return fmt.Errorf("generate weekly report: %w", err)
	}

	req := models.OutboundMessageRequest{
		To:      s.ownerNumber,
		Message: report,
	}

	if err := s.messagingSvc.SendOutbound(ctx, req); err != nil {
		return fmt.Errorf("send weekly report: %w", err)
	}

	s.logger.Info("weekly report sent successfully")
	return nil
}
