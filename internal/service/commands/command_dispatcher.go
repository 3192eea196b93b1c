package commands

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// HelpText lists the commands a manager can send.
const HelpText = "Commands: stock, alerts, revenue, hours"

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	StockSummary(ctx context.Context) (string, error)
	AlertsSummary(ctx context.Context) (string, error)
	RevenueSummaryText(ctx context.Context) (string, error)
	HoursSummaryText(ctx context.Context) (string, error)
}

// Dispatcher answers parsed manager commands.
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

// HandleCommand renders the reply for a read-only manager command.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	var (
		reply string
		err   error
	)
	switch cmd.Type {
	case models.CommandStock:
		reply, err = s.reporting.StockSummary(ctx)
	case models.CommandAlerts:
		reply, err = s.reporting.AlertsSummary(ctx)
	case models.CommandRevenue:
		reply, err = s.reporting.RevenueSummaryText(ctx)
	case models.CommandHours:
		reply, err = s.reporting.HoursSummaryText(ctx)
	default:
		return "", ErrUnsupportedCommand
	}
	if err != nil {
		s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
