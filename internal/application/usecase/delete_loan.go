package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greystone/lending-api/internal/domain/port"
)

// DeleteLoanUseCase removes a loan.
type DeleteLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewDeleteLoanUseCase wires dependencies.
func NewDeleteLoanUseCase(loanRepo port.LoanRepository) *DeleteLoanUseCase {
	return &DeleteLoanUseCase{loanRepo: loanRepo}
}

// Execute deletes the loan or returns model.ErrLoanNotFound.
func (uc *DeleteLoanUseCase) Execute(ctx context.Context, id uuid.UUID) error {
	loan, err := uc.loanRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find loan: %w", err)
	}
	if err := uc.loanRepo.Delete(ctx, loan.MarkDeleted(time.Now().UTC())); err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	return nil
}
