package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
)

// CreateLoanUseCase opens a loan for an existing user.
type CreateLoanUseCase struct {
	userRepo port.UserRepository
	loanRepo port.LoanRepository
}

// NewCreateLoanUseCase wires dependencies.
func NewCreateLoanUseCase(userRepo port.UserRepository, loanRepo port.LoanRepository) *CreateLoanUseCase {
	return &CreateLoanUseCase{userRepo: userRepo, loanRepo: loanRepo}
}

// Execute validates the terms, checks the owner exists and stores the loan.
func (uc *CreateLoanUseCase) Execute(ctx context.Context, req dto.CreateLoanRequest) (dto.LoanResponse, error) {
	ctx, span := tracer.Start(ctx, "CreateLoan")
	defer span.End()

	if req.UserID == uuid.Nil {
		return dto.LoanResponse{}, &model.InvalidInputError{Field: "user_id", Reason: "is required"}
	}
	terms := model.AmortizationInput{
		Principal:  req.Principal,
		AnnualRate: req.AnnualInterestRate,
		TermMonths: req.TermMonths,
		StartDate:  req.StartDate.Time,
	}
	if err := model.ValidateTerms(terms); err != nil {
		return dto.LoanResponse{}, err
	}

	if _, err := uc.userRepo.FindByID(ctx, req.UserID); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find user: %w", err)
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	loan, err := model.NewLoan(req.UserID, terms, name, time.Now().UTC())
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}
	return toLoanResponse(loan), nil
}
