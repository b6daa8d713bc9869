package user

import (
	domain "user-directory-service/internal/domain/user"
)

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name   string  `json:"name" validate:"required,min=2"`
	Email  string  `json:"email" validate:"required,email"`
	Phone  *string `json:"phone"`
	Role   string  `json:"role" validate:"required,user_role"`
	Status string  `json:"status" validate:"required,user_status"`
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	User User
}

// UpdateUserRequest represents the request payload for updating an existing user.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	ID     string  `json:"id" validate:"required"`
	Name   *string `json:"name" validate:"omitnil,min=2"`
	Email  *string `json:"email" validate:"omitnil,email"`
	Phone  *string `json:"phone"`
	Role   *string `json:"role" validate:"omitnil,user_role"`
	Status *string `json:"status" validate:"omitnil,user_status"`
}

// UpdateUserResponse represents the response payload after updating a user.
type UpdateUserResponse struct {
	User User
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string `json:"id" validate:"required"`
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string `json:"id" validate:"required"`
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User User
}

// ListUsersRequest represents the request payload for listing users.
// It supports pagination and search functionality.
type ListUsersRequest struct {
	Search string
	Page   int64
	Limit  int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *Pagination
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	CurrentPage int64
	TotalPages  int64
	Total       int64
	Limit       int64
	HasNext     bool
	HasPrev     bool
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID       string
	Name     string
	Email    string
	Phone    *string
	Role     string
	Status   string
	JoinDate string
	Avatar   *string
}

func toDTO(u domain.User) User {
	return User{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     string(u.Role),
		Status:   string(u.Status),
		JoinDate: u.JoinDate.Format(domain.DateLayout),
		Avatar:   u.Avatar,
	}
}

func toPaginationDTO(p *domain.Pagination) *Pagination {
	return &Pagination{
		CurrentPage: p.Page,
		TotalPages:  p.TotalPages,
		Total:       p.Total,
		Limit:       p.Limit,
		HasNext:     p.HasNext,
		HasPrev:     p.HasPrevious,
	}
}
