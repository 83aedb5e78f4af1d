package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greystone/lending-api/internal/domain/port"
)

// DeleteUserUseCase removes a user together with the user's loans.
type DeleteUserUseCase struct {
	userRepo port.UserRepository
}

// NewDeleteUserUseCase wires dependencies.
func NewDeleteUserUseCase(userRepo port.UserRepository) *DeleteUserUseCase {
	return &DeleteUserUseCase{userRepo: userRepo}
}

// Execute deletes the user or returns model.ErrUserNotFound.
func (uc *DeleteUserUseCase) Execute(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "DeleteUser")
	defer span.End()

	user, err := uc.userRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if err := uc.userRepo.Delete(ctx, user.MarkDeleted(time.Now().UTC())); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
