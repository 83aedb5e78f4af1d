package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/domain/port"
)

// GetUserUseCase retrieves a user by ID.
type GetUserUseCase struct {
	userRepo port.UserRepository
}

// NewGetUserUseCase wires dependencies.
func NewGetUserUseCase(userRepo port.UserRepository) *GetUserUseCase {
	return &GetUserUseCase{userRepo: userRepo}
}

// Execute returns the user or model.ErrUserNotFound.
func (uc *GetUserUseCase) Execute(ctx context.Context, id uuid.UUID) (dto.UserResponse, error) {
	user, err := uc.userRepo.FindByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("find user: %w", err)
	}
	return toUserResponse(user), nil
}

// ListUsersUseCase pages through users in creation order.
type ListUsersUseCase struct {
	userRepo port.UserRepository
}

// NewListUsersUseCase wires dependencies.
func NewListUsersUseCase(userRepo port.UserRepository) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo}
}

// Execute returns one page of users.
func (uc *ListUsersUseCase) Execute(ctx context.Context, req dto.ListRequest) ([]dto.UserResponse, error) {
	page, err := toPage(req)
	if err != nil {
		return nil, err
	}
	users, err := uc.userRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return toUserResponses(users), nil
}
