package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"usina-backend/internal/metrics"
	"usina-backend/internal/models"
	"usina-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// Assignment kinds accepted by the allocator
const (
	KindLead       = "lead"
	KindConversion = "conversion"
)

// GoalLister provides the active goals ordered by priority
type GoalLister interface {
	ListActiveOrdered(ctx context.Context) ([]*models.DistributionGoal, error)
}

// PhonePool provides phone rotation within a franchise
type PhonePool interface {
	Get(ctx context.Context, id int) (*models.FranchisePhone, error)
	NextAvailable(ctx context.Context, franchiseID int, date time.Time) (*models.FranchisePhone, error)
}

// Ledger is the atomic daily counter store
type Ledger interface {
	Increment(ctx context.Context, date time.Time, serverID *int, franchiseID, phoneID, convDelta, leadDelta int) (int, error)
	FranchiseTotal(ctx context.Context, date time.Time, franchiseID int) (int, error)
	FranchiseTotals(ctx context.Context, date time.Time) (map[int]int, error)
	ListByDate(ctx context.Context, date time.Time) ([]*models.DailyDistribution, error)
}

// SettingsReader provides the versioned active-franchise record
type SettingsReader interface {
	Get(ctx context.Context) (*models.DistributionSettings, error)
}

// DistributionService is the allocator: it decides which franchise and phone
// receive each lead or conversion and bumps the daily ledger. All counter
// mutations go through Ledger.Increment, which is an atomic upsert, so
// concurrent assignments never lose updates.
type DistributionService struct {
	goals    GoalLister
	phones   PhonePool
	ledger   Ledger
	settings SettingsReader
}

func NewDistributionService(goals GoalLister, phones PhonePool, ledger Ledger, settings SettingsReader) *DistributionService {
	return &DistributionService{
		goals:    goals,
		phones:   phones,
		ledger:   ledger,
		settings: settings,
	}
}

// AssignAuto routes count units to a franchise chosen by the distribution
// rules: the active-franchise override wins when set, otherwise the first
// under-goal franchise in priority order, overflowing onto the top-priority
// one when every goal is met. The settings snapshot is taken once at the
// start; a concurrent switch does not retarget an assignment in flight.
func (s *DistributionService) AssignAuto(ctx context.Context, kind string, count int, serverID *int) (*models.AssignmentResult, error) {
	if err := validateAssignInput(kind, count); err != nil {
		return nil, err
	}
	date := timeutil.Today()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read distribution settings: %w", err)
	}

	if settings.ActiveFranchiseID != nil {
		result, err := s.assign(ctx, kind, count, *settings.ActiveFranchiseID, serverID, date)
		if err != nil {
			return nil, err
		}
		result.SettingsVersion = settings.Version
		return result, nil
	}

	franchiseID, overflow, err := s.selectByGoals(ctx, date)
	if err != nil {
		return nil, err
	}

	result, err := s.assign(ctx, kind, count, franchiseID, serverID, date)
	if err != nil {
		return nil, err
	}
	result.SelectedByGoal = true
	result.OverflowFallback = overflow
	return result, nil
}

// AssignToFranchise routes count units to a known franchise, picking the
// phone by rotation. Used by the webhook path when the bot names the agency.
func (s *DistributionService) AssignToFranchise(ctx context.Context, kind string, count, franchiseID int, serverID *int) (*models.AssignmentResult, error) {
	if err := validateAssignInput(kind, count); err != nil {
		return nil, err
	}
	return s.assign(ctx, kind, count, franchiseID, serverID, timeutil.Today())
}

// AssignToPhone routes count units to an explicit phone after checking it
// belongs to the franchise and is active. Backs the admin manual override
// and the cashier-phone exact match.
func (s *DistributionService) AssignToPhone(ctx context.Context, kind string, count, franchiseID, phoneID int, serverID *int) (*models.AssignmentResult, error) {
	if err := validateAssignInput(kind, count); err != nil {
		return nil, err
	}

	phone, err := s.phones.Get(ctx, phoneID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: phone %d", ErrNotFound, phoneID)
		}
		return nil, fmt.Errorf("load phone %d: %w", phoneID, err)
	}
	if phone.FranchiseID != franchiseID || !phone.IsActive {
		return nil, ErrPhoneMismatch
	}

	return s.increment(ctx, kind, count, franchiseID, phone, serverID, timeutil.Today())
}

// AssignManual is the admin override endpoint behind AssignToPhone
func (s *DistributionService) AssignManual(ctx context.Context, req *models.ManualAssignRequest) (*models.AssignmentResult, error) {
	kind := req.Kind
	if kind == "" {
		kind = KindConversion
	}
	return s.AssignToPhone(ctx, kind, req.Count, req.FranchiseID, req.PhoneID, nil)
}

// SelectTarget returns the franchise an automatic assignment would route to
// right now, without mutating anything. The webhook conversion path uses it
// to know which franchise's phones to match the cashier number against.
func (s *DistributionService) SelectTarget(ctx context.Context) (int, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("read distribution settings: %w", err)
	}
	if settings.ActiveFranchiseID != nil {
		return *settings.ActiveFranchiseID, nil
	}
	franchiseID, _, err := s.selectByGoals(ctx, timeutil.Today())
	return franchiseID, err
}

// Progress returns per-franchise goal progress for a date, ordered by
// goal priority. ProgressPct is capped at 100 even when overflow pushed
// the count past the goal.
func (s *DistributionService) Progress(ctx context.Context, date time.Time) ([]*models.FranchiseProgress, error) {
	goals, err := s.goals.ListActiveOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active goals: %w", err)
	}
	totals, err := s.ledger.FranchiseTotals(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load daily totals: %w", err)
	}

	progress := make([]*models.FranchiseProgress, 0, len(goals))
	for _, g := range goals {
		progress = append(progress, &models.FranchiseProgress{
			FranchiseID:   g.FranchiseID,
			FranchiseName: g.FranchiseName,
			Date:          timeutil.DateString(date),
			Current:       totals[g.FranchiseID],
			Goal:          g.DailyGoal,
			ProgressPct:   ProgressPct(totals[g.FranchiseID], g.DailyGoal),
		})
	}
	return progress, nil
}

// ListByDate exposes the raw ledger rows for the dashboard table
func (s *DistributionService) ListByDate(ctx context.Context, date time.Time) ([]*models.DailyDistribution, error) {
	return s.ledger.ListByDate(ctx, date)
}

// selectByGoals picks the first franchise whose daily count is below its
// goal, walking active goals in priority order (priority ASC, id ASC). When
// every franchise met its goal the top-priority one absorbs the overflow.
func (s *DistributionService) selectByGoals(ctx context.Context, date time.Time) (franchiseID int, overflow bool, err error) {
	goals, err := s.goals.ListActiveOrdered(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("list active goals: %w", err)
	}
	if len(goals) == 0 {
		metrics.AssignmentFailuresTotal.WithLabelValues("no_target").Inc()
		return 0, false, ErrNoDistributionTarget
	}

	totals, err := s.ledger.FranchiseTotals(ctx, date)
	if err != nil {
		return 0, false, fmt.Errorf("load daily totals: %w", err)
	}

	for _, g := range goals {
		if totals[g.FranchiseID] < g.DailyGoal {
			return g.FranchiseID, false, nil
		}
	}
	return goals[0].FranchiseID, true, nil
}

func (s *DistributionService) assign(ctx context.Context, kind string, count, franchiseID int, serverID *int, date time.Time) (*models.AssignmentResult, error) {
	phone, err := s.phones.NextAvailable(ctx, franchiseID, date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.AssignmentFailuresTotal.WithLabelValues("no_phones").Inc()
			return nil, fmt.Errorf("%w: franchise %d", ErrNoActivePhones, franchiseID)
		}
		return nil, fmt.Errorf("pick phone for franchise %d: %w", franchiseID, err)
	}
	return s.increment(ctx, kind, count, franchiseID, phone, serverID, date)
}

func (s *DistributionService) increment(ctx context.Context, kind string, count, franchiseID int, phone *models.FranchisePhone, serverID *int, date time.Time) (*models.AssignmentResult, error) {
	convDelta, leadDelta := 0, 0
	if kind == KindLead {
		leadDelta = count
	} else {
		convDelta = count
	}

	newCount, err := s.ledger.Increment(ctx, date, serverID, franchiseID, phone.ID, convDelta, leadDelta)
	if err != nil {
		metrics.AssignmentFailuresTotal.WithLabelValues("ledger").Inc()
		return nil, fmt.Errorf("increment ledger: %w", err)
	}

	metrics.AssignmentsTotal.WithLabelValues(strconv.Itoa(franchiseID), kind).Add(float64(count))
	log.Printf("[Distribution] assigned %d %s unit(s) to franchise %d phone %s", count, kind, franchiseID, phone.PhoneNumber)

	return &models.AssignmentResult{
		FranchiseID: franchiseID,
		PhoneID:     phone.ID,
		PhoneNumber: phone.PhoneNumber,
		NewCount:    newCount,
	}, nil
}

// ProgressPct computes goal completion as a percentage, capped at 100
func ProgressPct(current, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	pct := float64(current) / float64(goal) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

func validateAssignInput(kind string, count int) error {
	if kind != KindLead && kind != KindConversion {
		return fmt.Errorf("%w: kind must be %q or %q", ErrValidation, KindLead, KindConversion)
	}
	if count < 1 {
		return fmt.Errorf("%w: count must be at least 1", ErrValidation)
	}
	return nil
}
