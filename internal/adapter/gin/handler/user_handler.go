package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory-service/internal/usecase/user"
	"user-directory-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user
type CreateUserRequest struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Phone  *string `json:"phone"`
	Role   string  `json:"role"`
	Status string  `json:"status"`
}

// UpdateUserRequest represents the HTTP request body for updating a user.
// Absent fields keep their stored values.
type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

// UserResponse represents the HTTP representation of a user
type UserResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"`
	Status   string  `json:"status"`
	JoinDate string  `json:"joinDate"`
	Avatar   *string `json:"avatar"`
}

// UserData wraps a single user in the response data
type UserData struct {
	User UserResponse `json:"user"`
}

// ListUsersResponse represents the HTTP response data for listing users
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalUsers  int64 `json:"totalUsers"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
	Limit       int64 `json:"limit"`
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Status:   u.Status,
		JoinDate: u.JoinDate,
		Avatar:   u.Avatar,
	}
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	// Unparsable values fall back to the usecase defaults
	page, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		Error(c, h.log, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toUserResponse(u)
	}

	OK(c, http.StatusOK, "", ListUsersResponse{
		Users: users,
		Pagination: Pagination{
			CurrentPage: resp.Pagination.CurrentPage,
			TotalPages:  resp.Pagination.TotalPages,
			TotalUsers:  resp.Pagination.Total,
			HasNext:     resp.Pagination.HasNext,
			HasPrev:     resp.Pagination.HasPrev,
			Limit:       resp.Pagination.Limit,
		},
	})
}

// GetUser handles GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: c.Param("id")})
	if err != nil {
		Error(c, h.log, err)
		return
	}

	OK(c, http.StatusOK, "", UserData{User: toUserResponse(resp.User)})
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid create user body", zap.Error(err))
		Fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		Error(c, h.log, err)
		return
	}

	OK(c, http.StatusCreated, "User created successfully", UserData{User: toUserResponse(resp.User)})
}

// UpdateUser handles PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid update user body", zap.Error(err))
		Fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:     c.Param("id"),
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		Error(c, h.log, err)
		return
	}

	OK(c, http.StatusOK, "User updated successfully", UserData{User: toUserResponse(resp.User)})
}

// DeleteUser handles DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if _, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: c.Param("id")}); err != nil {
		Error(c, h.log, err)
		return
	}

	OK(c, http.StatusOK, "User deleted successfully", nil)
}
