package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/application/usecase"
	"github.com/greystone/lending-api/internal/domain/model"
)

func adHocRequest(t *testing.T) dto.AmortizationRequest {
	return dto.AmortizationRequest{
		Principal:          decimal.RequireFromString("12000.00"),
		AnnualInterestRate: decimal.Zero,
		TermMonths:         12,
		StartDate:          mustDate(t, "2025-01-01"),
	}
}

func TestComputeAmortizationUseCase_Execute(t *testing.T) {
	t.Run("renders fixed two-digit amounts", func(t *testing.T) {
		uc := usecase.NewComputeAmortizationUseCase(newScheduler(nil))

		resp, err := uc.Execute(context.Background(), adHocRequest(t))

		require.NoError(t, err)
		assert.Equal(t, "1000.00", resp.MonthlyPayment)
		assert.Equal(t, "0.00", resp.TotalInterest)
		assert.Equal(t, "12000.00", resp.TotalPaid)
		require.Len(t, resp.Schedule, 12)
		assert.Equal(t, "2025-12-01", resp.Schedule[11].Date.String())
		assert.Equal(t, "0.00", resp.Schedule[11].Balance)
	})

	t.Run("invalid terms", func(t *testing.T) {
		uc := usecase.NewComputeAmortizationUseCase(newScheduler(nil))

		req := adHocRequest(t)
		req.TermMonths = 0
		_, err := uc.Execute(context.Background(), req)
		var invalid *model.InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "term_months", invalid.Field)

		req = adHocRequest(t)
		req.StartDate = dto.Date{}
		_, err = uc.Execute(context.Background(), req)
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "start_date", invalid.Field)
	})

	t.Run("second call is served from the cache", func(t *testing.T) {
		cache := newMockScheduleCache()
		uc := usecase.NewComputeAmortizationUseCase(newScheduler(cache))

		first, err := uc.Execute(context.Background(), adHocRequest(t))
		require.NoError(t, err)
		second, err := uc.Execute(context.Background(), adHocRequest(t))
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 2, cache.gets)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("cache failures fall back to computing", func(t *testing.T) {
		cache := newMockScheduleCache()
		cache.getErr = errors.New("redis: connection refused")
		cache.setErr = errors.New("redis: connection refused")
		uc := usecase.NewComputeAmortizationUseCase(newScheduler(cache))

		resp, err := uc.Execute(context.Background(), adHocRequest(t))
		require.NoError(t, err)
		assert.Equal(t, "1000.00", resp.MonthlyPayment)
	})
}

func TestGetLoanAmortizationUseCase_Execute(t *testing.T) {
	t.Run("uses the stored terms", func(t *testing.T) {
		loan := existingLoan(uuid.New())
		repo := &mockLoanRepository{
			findByIDFunc: func(context.Context, uuid.UUID) (model.Loan, error) { return loan, nil },
		}
		uc := usecase.NewGetLoanAmortizationUseCase(repo, newScheduler(nil))

		resp, err := uc.Execute(context.Background(), loan.ID())

		require.NoError(t, err)
		assert.Equal(t, "8606.64", resp.MonthlyPayment)
		assert.Equal(t, "3279.73", resp.TotalInterest)
		assert.Equal(t, "103279.73", resp.TotalPaid)
		require.Len(t, resp.Schedule, 12)
		assert.Equal(t, "2024-02-29", resp.Schedule[1].Date.String())
		assert.Equal(t, "8606.69", resp.Schedule[11].Payment)
		assert.Equal(t, "0.00", resp.Schedule[11].Balance)
	})

	t.Run("not found", func(t *testing.T) {
		uc := usecase.NewGetLoanAmortizationUseCase(&mockLoanRepository{}, newScheduler(nil))

		_, err := uc.Execute(context.Background(), uuid.New())
		require.ErrorIs(t, err, model.ErrLoanNotFound)
	})
}
