package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
)

// UpdateLoanUseCase applies a partial update to a loan.
type UpdateLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewUpdateLoanUseCase wires dependencies.
func NewUpdateLoanUseCase(loanRepo port.LoanRepository) *UpdateLoanUseCase {
	return &UpdateLoanUseCase{loanRepo: loanRepo}
}

// Execute updates the given fields and re-validates the resulting terms.
func (uc *UpdateLoanUseCase) Execute(ctx context.Context, req dto.UpdateLoanRequest) (dto.LoanResponse, error) {
	ctx, span := tracer.Start(ctx, "UpdateLoan")
	defer span.End()

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	upd := model.LoanUpdate{
		Principal:  req.Principal,
		AnnualRate: req.AnnualInterestRate,
		TermMonths: req.TermMonths,
		Name:       req.Name,
	}
	if req.StartDate != nil {
		upd.StartDate = &req.StartDate.Time
	}

	updated, err := loan.Apply(upd, time.Now().UTC())
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("update loan: %w", err)
	}
	if len(updated.DomainEvents()) == 0 {
		return toLoanResponse(updated), nil
	}

	if err := uc.loanRepo.Save(ctx, updated); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}
	return toLoanResponse(updated), nil
}
