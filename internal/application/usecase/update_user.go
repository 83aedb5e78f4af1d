package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
)

// UpdateUserUseCase applies a partial update to a user.
type UpdateUserUseCase struct {
	userRepo port.UserRepository
	hasher   port.PasswordHasher
}

// NewUpdateUserUseCase wires dependencies.
func NewUpdateUserUseCase(userRepo port.UserRepository, hasher port.PasswordHasher) *UpdateUserUseCase {
	return &UpdateUserUseCase{userRepo: userRepo, hasher: hasher}
}

// Execute updates the given fields. A new password is re-hashed.
func (uc *UpdateUserUseCase) Execute(ctx context.Context, req dto.UpdateUserRequest) (dto.UserResponse, error) {
	ctx, span := tracer.Start(ctx, "UpdateUser")
	defer span.End()

	user, err := uc.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("find user: %w", err)
	}

	upd := model.UserUpdate{FullName: req.FullName, IsActive: req.IsActive}
	if req.Password != nil {
		if err := model.ValidatePassword(*req.Password); err != nil {
			return dto.UserResponse{}, err
		}
		hash, err := uc.hasher.Hash(*req.Password)
		if err != nil {
			return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
		}
		upd.HashedPassword = &hash
	}

	updated, err := user.Apply(upd, time.Now().UTC())
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("update user: %w", err)
	}
	if len(updated.DomainEvents()) == 0 {
		return toUserResponse(updated), nil
	}

	if err := uc.userRepo.Save(ctx, updated); err != nil {
		return dto.UserResponse{}, fmt.Errorf("save user: %w", err)
	}
	return toUserResponse(updated), nil
}
