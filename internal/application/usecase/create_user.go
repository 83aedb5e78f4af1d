package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
	"github.com/greystone/lending-api/internal/domain/valueobject"
)

// CreateUserUseCase registers a user with a hashed password.
type CreateUserUseCase struct {
	userRepo port.UserRepository
	hasher   port.PasswordHasher
}

// NewCreateUserUseCase wires dependencies.
func NewCreateUserUseCase(userRepo port.UserRepository, hasher port.PasswordHasher) *CreateUserUseCase {
	return &CreateUserUseCase{userRepo: userRepo, hasher: hasher}
}

// Execute validates the request, rejects a duplicate email and stores the user.
func (uc *CreateUserUseCase) Execute(ctx context.Context, req dto.CreateUserRequest) (dto.UserResponse, error) {
	ctx, span := tracer.Start(ctx, "CreateUser")
	defer span.End()

	email, err := valueobject.NewEmail(req.Email)
	if err != nil {
		return dto.UserResponse{}, &model.InvalidInputError{Field: "email", Reason: "is not a valid email address"}
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		return dto.UserResponse{}, err
	}

	_, err = uc.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return dto.UserResponse{}, model.ErrEmailAlreadyRegistered
	case !errors.Is(err, model.ErrUserNotFound):
		return dto.UserResponse{}, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	fullName := ""
	if req.FullName != nil {
		fullName = *req.FullName
	}

	user, err := model.NewUser(email, fullName, hash, isActive, time.Now().UTC())
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("create user: %w", err)
	}

	if err := uc.userRepo.Save(ctx, user); err != nil {
		return dto.UserResponse{}, fmt.Errorf("save user: %w", err)
	}

	return toUserResponse(user), nil
}
