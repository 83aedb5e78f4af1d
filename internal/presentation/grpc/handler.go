package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/application/usecase"
	"github.com/greystone/lending-api/internal/domain/model"
)

// AmortizationHandler is the gRPC handler for amortization schedules.
type AmortizationHandler struct {
	UnimplementedAmortizationServiceServer

	compute *usecase.ComputeAmortizationUseCase
	forLoan *usecase.GetLoanAmortizationUseCase
	logger  *slog.Logger
}

// NewAmortizationHandler creates a new handler with its use-case dependencies.
func NewAmortizationHandler(
	compute *usecase.ComputeAmortizationUseCase,
	forLoan *usecase.GetLoanAmortizationUseCase,
	logger *slog.Logger,
) *AmortizationHandler {
	return &AmortizationHandler{compute: compute, forLoan: forLoan, logger: logger}
}

// ComputeAmortization computes a schedule for ad-hoc terms.
func (h *AmortizationHandler) ComputeAmortization(ctx context.Context, req *ComputeAmortizationRequest) (*AmortizationScheduleReply, error) {
	principal, err := parseDecimal("principal", req.Principal)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	rate, err := parseDecimal("annual_interest_rate", req.AnnualInterestRate)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	var start dto.Date
	if req.StartDate != "" {
		if start, err = dto.ParseDate(req.StartDate); err != nil {
			return nil, h.toStatus(ctx, &model.InvalidInputError{Field: "start_date", Reason: "must be a YYYY-MM-DD date"})
		}
	}

	resp, err := h.compute.Execute(ctx, dto.AmortizationRequest{
		Principal:          principal,
		AnnualInterestRate: rate,
		TermMonths:         int(req.TermMonths),
		StartDate:          start,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toReply(resp), nil
}

// GetLoanAmortization computes the schedule of a stored loan.
func (h *AmortizationHandler) GetLoanAmortization(ctx context.Context, req *GetLoanAmortizationRequest) (*AmortizationScheduleReply, error) {
	id, err := uuid.Parse(req.LoanID)
	if err != nil {
		return nil, h.toStatus(ctx, &model.InvalidInputError{Field: "loan_id", Reason: "must be a valid UUID"})
	}

	resp, err := h.forLoan.Execute(ctx, id)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toReply(resp), nil
}

// toStatus maps domain errors onto gRPC status codes.
func (h *AmortizationHandler) toStatus(ctx context.Context, err error) error {
	var invalid *model.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		return status.Error(codes.InvalidArgument, invalid.Error())
	case errors.Is(err, model.ErrLoanNotFound), errors.Is(err, model.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		h.logger.ErrorContext(ctx, "amortization rpc failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &model.InvalidInputError{Field: field, Reason: "must be a decimal number"}
	}
	return d, nil
}

func toReply(resp dto.AmortizationScheduleResponse) *AmortizationScheduleReply {
	entries := make([]ScheduleEntry, len(resp.Schedule))
	for i, e := range resp.Schedule {
		entries[i] = ScheduleEntry{
			Period:    int32(e.Period),
			Date:      e.Date.String(),
			Payment:   e.Payment,
			Principal: e.Principal,
			Interest:  e.Interest,
			Balance:   e.Balance,
		}
	}
	return &AmortizationScheduleReply{
		MonthlyPayment: resp.MonthlyPayment,
		TotalInterest:  resp.TotalInterest,
		TotalPaid:      resp.TotalPaid,
		Schedule:       entries,
	}
}
