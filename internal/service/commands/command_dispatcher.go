package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/landscaper/internal/domain/models"
	"github.com/mamadbah2/landscaper/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// ErrClientNotFound indicates the /stats argument matched no client.
var ErrClientNotFound = errors.New("client not found")

const maxListedItems = 10

// HelpText lists the chat commands understood by the dispatcher.
const HelpText = `Commands:
/stats - profitability overview of active clients
/stats <id or name> - projection for one client
/losing - clients charged less than the proposed rate
/anomalies [threshold%] - visits far longer than the client's average
/todo - visits and clients that need attention
/rate - current hourly labor rate`

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	ClientStatistics(ctx context.Context, clientID int64) (*models.ClientStatistics, error)
	AllClientStatistics(ctx context.Context, activeOnly bool) ([]models.ClientStatistics, error)
	AnomalousVisits(ctx context.Context, thresholdPercent float64, clientID int64) ([]models.AnomalousVisit, error)
	TodoList(ctx context.Context) (*models.TodoList, error)
	HourlyRate(ctx context.Context) (float64, error)
	ThresholdPercent() float64
}

// Dispatcher executes parsed commands and renders the chat reply.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	reporting ReportingAdapter
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reporting: reporting,
		logger:    logger,
	}
}

// HandleCommand runs the read-only report the command asks for.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandStats:
		if len(cmd.Args) == 0 {
			return s.overview(ctx)
		}
		return s.clientStats(ctx, strings.Join(cmd.Args, " "))
	case models.CommandLosing:
		return s.losing(ctx)
	case models.CommandAnomalies:
		threshold, err := parseThreshold(cmd.Args)
		if err != nil {
			return "", err
		}
		return s.anomalies(ctx, threshold)
	case models.CommandTodo:
		return s.todo(ctx)
	case models.CommandRate:
		rate, err := s.reporting.HourlyRate(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Hourly rate: $%.2f per crew member (crew of 2).", rate), nil
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) overview(ctx context.Context) (string, error) {
	stats, err := s.reporting.AllClientStatistics(ctx, true)
	if err != nil {
		return "", err
	}
	if len(stats) == 0 {
		return "No active clients yet.", nil
	}

	profitable := 0
	var charged, proposed float64
	for _, st := range stats {
		if st.IsProfitable {
			profitable++
		}
		charged += st.ActualMonthlyCharge
		proposed += st.ProposedMonthlyRate
	}

	return fmt.Sprintf("Active clients: %d (%d profitable, %d losing money)\nMonthly billed: $%.2f\nMonthly proposed: $%.2f",
		len(stats), profitable, len(stats)-profitable, charged, proposed), nil
}

func (s *Service) clientStats(ctx context.Context, query string) (string, error) {
	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		if id <= 0 {
			return "", ErrInvalidArguments
		}
		st, err := s.reporting.ClientStatistics(ctx, id)
		if err != nil {
			return "", err
		}
		if st == nil {
			return "", ErrClientNotFound
		}
		return reporting.FormatClientSummary(*st), nil
	}

	stats, err := s.reporting.AllClientStatistics(ctx, false)
	if err != nil {
		return "", err
	}
	for _, st := range stats {
		if strings.HasPrefix(strings.ToLower(st.ClientName), query) {
			return reporting.FormatClientSummary(st), nil
		}
	}
	return "", ErrClientNotFound
}

func (s *Service) losing(ctx context.Context) (string, error) {
	stats, err := s.reporting.AllClientStatistics(ctx, true)
	if err != nil {
		return "", err
	}

	var losing []models.ClientStatistics
	for _, st := range stats {
		if !st.IsProfitable {
			losing = append(losing, st)
		}
	}
	if len(losing) == 0 {
		return "Every active client covers its projected cost.", nil
	}

	sort.SliceStable(losing, func(i, j int) bool {
		return losing[i].MonthlyProfitLoss < losing[j].MonthlyProfitLoss
	})

	lines := []string{fmt.Sprintf("%d clients losing money:", len(losing))}
	for i, st := range losing {
		if i == maxListedItems {
			lines = append(lines, fmt.Sprintf("...and %d more", len(losing)-maxListedItems))
			break
		}
		lines = append(lines, fmt.Sprintf("- %s: $%.2f/mo short (charged $%.2f, proposed $%.2f)",
			st.ClientName, -st.MonthlyProfitLoss, st.ActualMonthlyCharge, st.ProposedMonthlyRate))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) anomalies(ctx context.Context, threshold float64) (string, error) {
	flagged, err := s.reporting.AnomalousVisits(ctx, threshold, 0)
	if err != nil {
		return "", err
	}
	if threshold <= 0 {
		threshold = s.reporting.ThresholdPercent()
	}
	if len(flagged) == 0 {
		return fmt.Sprintf("No visits at or above %.0f%% of their client's average.", threshold), nil
	}

	lines := []string{fmt.Sprintf("%d visits at or above %.0f%% of average:", len(flagged), threshold)}
	for i, a := range flagged {
		if i == maxListedItems {
			lines = append(lines, fmt.Sprintf("...and %d more", len(flagged)-maxListedItems))
			break
		}
		lines = append(lines, "- "+reporting.FormatAnomaly(a))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) todo(ctx context.Context) (string, error) {
	todo, err := s.reporting.TodoList(ctx)
	if err != nil {
		return "", err
	}

	lines := []string{
		"To do:",
		fmt.Sprintf("- %d visits flagged for review", len(todo.VisitsNeedingReview)),
		fmt.Sprintf("- %d visits with unusual durations", len(todo.AnomalousVisits)),
		fmt.Sprintf("- %d clients without materials or services", len(todo.ClientsMissingServices)),
		fmt.Sprintf("- %d clients missing contact details", len(todo.ClientsMissingContact)),
	}
	return strings.Join(lines, "\n"), nil
}

func parseThreshold(args []string) (float64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	threshold, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
	if err != nil || threshold <= 0 {
		return 0, ErrInvalidArguments
	}
	return threshold, nil
}
