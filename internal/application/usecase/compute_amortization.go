package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
)

// Scheduler computes schedules through an optional cache. Cache failures are
// logged and never fail the computation.
type Scheduler struct {
	cache    port.ScheduleCache
	logger   *slog.Logger
	computed metric.Int64Counter
}

// NewScheduler wires dependencies. cache may be nil to disable caching.
func NewScheduler(cache port.ScheduleCache, logger *slog.Logger, meter metric.Meter) *Scheduler {
	counter, err := meter.Int64Counter("lending.schedules.computed",
		metric.WithDescription("Amortization schedules served, by cache outcome"),
	)
	if err != nil {
		logger.Warn("create schedules counter", "error", err)
		counter = noop.Int64Counter{}
	}
	return &Scheduler{cache: cache, logger: logger, computed: counter}
}

// Schedule returns the schedule for in, consulting the cache first.
func (s *Scheduler) Schedule(ctx context.Context, in model.AmortizationInput) (model.AmortizationSchedule, error) {
	if err := in.Validate(); err != nil {
		return model.AmortizationSchedule{}, err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, in)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "schedule cache read failed", "error", err)
		case ok:
			s.computed.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", "hit")))
			return cached, nil
		}
	}

	schedule, err := model.ComputeSchedule(in)
	if err != nil {
		return model.AmortizationSchedule{}, err
	}
	s.computed.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", "miss")))

	if s.cache != nil {
		if err := s.cache.Set(ctx, in, schedule); err != nil {
			s.logger.WarnContext(ctx, "schedule cache write failed", "error", err)
		}
	}
	return schedule, nil
}

// ComputeAmortizationUseCase computes a schedule for ad-hoc terms.
type ComputeAmortizationUseCase struct {
	scheduler *Scheduler
}

// NewComputeAmortizationUseCase wires dependencies.
func NewComputeAmortizationUseCase(scheduler *Scheduler) *ComputeAmortizationUseCase {
	return &ComputeAmortizationUseCase{scheduler: scheduler}
}

// Execute validates the terms and returns the schedule.
func (uc *ComputeAmortizationUseCase) Execute(
	ctx context.Context,
	req dto.AmortizationRequest,
) (dto.AmortizationScheduleResponse, error) {
	ctx, span := tracer.Start(ctx, "ComputeAmortization")
	defer span.End()

	in := model.AmortizationInput{
		Principal:  req.Principal,
		AnnualRate: req.AnnualInterestRate,
		TermMonths: req.TermMonths,
		StartDate:  req.StartDate.Time,
	}
	if err := in.Validate(); err != nil {
		return dto.AmortizationScheduleResponse{}, err
	}
	if in.StartDate.IsZero() {
		return dto.AmortizationScheduleResponse{}, &model.InvalidInputError{Field: "start_date", Reason: "is required"}
	}

	schedule, err := uc.scheduler.Schedule(ctx, in)
	if err != nil {
		return dto.AmortizationScheduleResponse{}, err
	}
	return ToScheduleResponse(schedule), nil
}

// GetLoanAmortizationUseCase computes the schedule of a stored loan.
type GetLoanAmortizationUseCase struct {
	loanRepo  port.LoanRepository
	scheduler *Scheduler
}

// NewGetLoanAmortizationUseCase wires dependencies.
func NewGetLoanAmortizationUseCase(loanRepo port.LoanRepository, scheduler *Scheduler) *GetLoanAmortizationUseCase {
	return &GetLoanAmortizationUseCase{loanRepo: loanRepo, scheduler: scheduler}
}

// Execute returns the schedule or model.ErrLoanNotFound.
func (uc *GetLoanAmortizationUseCase) Execute(ctx context.Context, loanID uuid.UUID) (dto.AmortizationScheduleResponse, error) {
	ctx, span := tracer.Start(ctx, "GetLoanAmortization")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID.String()))

	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.AmortizationScheduleResponse{}, fmt.Errorf("find loan: %w", err)
	}

	schedule, err := uc.scheduler.Schedule(ctx, loan.Terms())
	if err != nil {
		return dto.AmortizationScheduleResponse{}, fmt.Errorf("compute schedule: %w", err)
	}
	return ToScheduleResponse(schedule), nil
}
