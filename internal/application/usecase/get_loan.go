package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/domain/port"
)

// GetLoanUseCase retrieves a loan by ID.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

// Execute returns the loan or model.ErrLoanNotFound.
func (uc *GetLoanUseCase) Execute(ctx context.Context, id uuid.UUID) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, id)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan), nil
}

// ListLoansUseCase pages through all loans.
type ListLoansUseCase struct {
	loanRepo port.LoanRepository
}

// NewListLoansUseCase wires dependencies.
func NewListLoansUseCase(loanRepo port.LoanRepository) *ListLoansUseCase {
	return &ListLoansUseCase{loanRepo: loanRepo}
}

// Execute returns one page of loans.
func (uc *ListLoansUseCase) Execute(ctx context.Context, req dto.ListRequest) ([]dto.LoanResponse, error) {
	page, err := toPage(req)
	if err != nil {
		return nil, err
	}
	loans, err := uc.loanRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return toLoanResponses(loans), nil
}

// ListUserLoansUseCase returns every loan owned by one user.
type ListUserLoansUseCase struct {
	userRepo port.UserRepository
	loanRepo port.LoanRepository
}

// NewListUserLoansUseCase wires dependencies.
func NewListUserLoansUseCase(userRepo port.UserRepository, loanRepo port.LoanRepository) *ListUserLoansUseCase {
	return &ListUserLoansUseCase{userRepo: userRepo, loanRepo: loanRepo}
}

// Execute returns the user's loans or model.ErrUserNotFound.
func (uc *ListUserLoansUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]dto.LoanResponse, error) {
	if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	loans, err := uc.loanRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans for user: %w", err)
	}
	return toLoanResponses(loans), nil
}
