package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type StatsService struct {
	expenses domain.ExpenseRepository
	settings domain.SettingsRepository
	location *time.Location
	now      func() time.Time
	logger   *logrus.Logger
}

func NewStatsService(expenses domain.ExpenseRepository, settings domain.SettingsRepository, location *time.Location, logger *logrus.Logger) *StatsService {
	if location == nil {
		location = time.Local
	}
	return &StatsService{
		expenses: expenses,
		settings: settings,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the wall clock, used by tests.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// ReferenceInstant is noon of asOf in the service location, or now when asOf is nil.
func (s *StatsService) ReferenceInstant(asOf *time.Time) time.Time {
	if asOf != nil {
		return time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 12, 0, 0, 0, s.location)
	}
	return s.now().In(s.location)
}

func (s *StatsService) GetStats(ctx context.Context, userID string, asOf *time.Time) (domain.StatsSummary, error) {
	ref := s.ReferenceInstant(asOf)
	earliest := domain.WindowsFor(ref).Earliest()
	from := time.Date(earliest.Year(), earliest.Month(), earliest.Day(), 0, 0, 0, 0, time.UTC)

	var (
		expenses []domain.Expense
		settings *domain.Settings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.FindByUser(gctx, userID, domain.ExpenseFilter{From: &from})
		if err != nil {
			return fmt.Errorf("failed to load expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = s.settings.Get(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load income: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.StatsSummary{}, err
	}

	summary, err := domain.ComputeStatsForIncome(expenses, ref, settings.Income)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Stored expenses failed validation")
		return domain.StatsSummary{}, err
	}
	return summary, nil
}
