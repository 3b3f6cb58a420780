package rest

import (
	"context"
	"net/http"
	"time"

	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, user *domain.User) (domain.User, error)
	Login(ctx context.Context, email, password string) (string, domain.User, error)
	VerifyEmail(ctx context.Context, code string) error
	GetUserByID(ctx context.Context, id uint) (domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id uint, updateData *domain.User) (domain.User, error)
}

// GuestCartMerger moves a guest session cart onto the user at login.
type GuestCartMerger interface {
	MergeGuestCart(ctx context.Context, sessionKey string, userID uint) (domain.CartView, error)
}

type UserHandler struct {
	userService UserService
	carts       GuestCartMerger
	validator   *validator.Validate
	timeout     time.Duration
}

func NewUserHandler(userService UserService, carts GuestCartMerger, timeout time.Duration) *UserHandler {
	return &UserHandler{
		userService: userService,
		carts:       carts,
		validator:   validator.New(),
		timeout:     timeout,
	}
}

type UserRegisterRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserUpdateRequest struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var reqUser UserRegisterRequest

	if err := bindRequest(c, h.validator, &reqUser); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	newUser, err := h.userService.Register(ctx, &domain.User{
		FullName: reqUser.FullName,
		Email:    reqUser.Email,
		Password: reqUser.Password,
	})
	if err != nil {
		return respondError(c, err, "Failed to register user")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Registration successful. Please check your email to verify your account.",
		"user":    newUser,
	})
}

func (h *UserHandler) Login(c echo.Context) error {
	var reqUser UserLoginRequest

	if err := bindRequest(c, h.validator, &reqUser); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	token, loggedIn, err := h.userService.Login(ctx, reqUser.Email, reqUser.Password)
	if err != nil {
		return respondError(c, err, "Failed to login")
	}

	response := map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    loggedIn,
	}

	if sessionKey := c.Request().Header.Get(CartSessionHeader); sessionKey != "" && h.carts != nil {
		cart, err := h.carts.MergeGuestCart(ctx, sessionKey, loggedIn.ID)
		if err != nil {
			logger.Warn("Failed to merge guest cart", "user_id", loggedIn.ID, "error", err)
		} else {
			response["cart"] = cart
		}
	}

	return c.JSON(http.StatusOK, response)
}

func (h *UserHandler) VerifyEmail(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		code = c.Param("code")
	}
	if code == "" {
		return badRequest(c, "missing verification code")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.VerifyEmail(ctx, code); err != nil {
		return respondError(c, err, "Failed to verify email")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Email verified, you can now log in"})
}

func (h *UserHandler) GetUserByID(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid user ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	found, err := h.userService.GetUserByID(ctx, uint(userID))
	if err != nil {
		return respondError(c, err, "Failed to get user")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User retrieved successfully",
		"user":    found,
	})
}

func (h *UserHandler) GetAllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	users, err := h.userService.GetAllUsers(ctx)
	if err != nil {
		return respondError(c, err, "Failed to get all users")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Users retrieved successfully",
		"users":   users,
	})
}

// UpdateUser patches profile fields; empty fields are left unchanged.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid user ID")
	}

	var reqUpdate UserUpdateRequest
	if err := bindRequest(c, h.validator, &reqUpdate); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updatedUser, err := h.userService.UpdateUser(ctx, uint(userID), &domain.User{
		FullName: reqUpdate.FullName,
		Email:    reqUpdate.Email,
		Password: reqUpdate.Password,
	})
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    updatedUser,
	})
}
