package usecase

import (
	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
	"github.com/greystone/lending-api/pkg/money"
)

// Listing defaults.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

func toPage(req dto.ListRequest) (port.Page, error) {
	if req.Skip < 0 {
		return port.Page{}, &model.InvalidInputError{Field: "skip", Reason: "must be greater than or equal to 0"}
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return port.Page{}, &model.InvalidInputError{Field: "limit", Reason: "must be between 1 and 1000"}
	}
	return port.Page{Skip: req.Skip, Limit: limit}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toUserResponse(u model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID().String(),
		Email:     u.Email().String(),
		FullName:  optional(u.FullName()),
		IsActive:  u.IsActive(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

func toUserResponses(users []model.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toLoanResponse(l model.Loan) dto.LoanResponse {
	return dto.LoanResponse{
		ID:                 l.ID().String(),
		UserID:             l.UserID().String(),
		Principal:          money.Format(l.Principal()),
		AnnualInterestRate: money.FormatRate(l.AnnualRate()),
		TermMonths:         l.TermMonths(),
		StartDate:          dto.NewDate(l.StartDate()),
		Name:               optional(l.Name()),
		CreatedAt:          l.CreatedAt(),
		UpdatedAt:          l.UpdatedAt(),
	}
}

func toLoanResponses(loans []model.Loan) []dto.LoanResponse {
	out := make([]dto.LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l))
	}
	return out
}

// ToScheduleResponse renders a schedule with fixed two-digit amounts.
func ToScheduleResponse(s model.AmortizationSchedule) dto.AmortizationScheduleResponse {
	entries := make([]dto.AmortizationEntryResponse, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = dto.AmortizationEntryResponse{
			Period:    e.Period,
			Date:      dto.NewDate(e.PaymentDate),
			Payment:   money.Format(e.Payment),
			Principal: money.Format(e.Principal),
			Interest:  money.Format(e.Interest),
			Balance:   money.Format(e.Balance),
		}
	}
	return dto.AmortizationScheduleResponse{
		MonthlyPayment: money.Format(s.MonthlyPayment),
		TotalInterest:  money.Format(s.TotalInterest),
		TotalPaid:      money.Format(s.TotalPaid),
		Schedule:       entries,
	}
}
