package rest

import (
	"context"
	"net/http"
	"time"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, fullName, email, password string) (domain.User, error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, domain.User, error)
	Logout(ctx context.Context, userID uuid.UUID, token string) error
	Me(ctx context.Context, userID uuid.UUID) (domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, fullName string) (domain.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	ListUsers(ctx context.Context, page domain.PageRequest) (domain.Page[domain.User], error)
	BlockUser(ctx context.Context, adminID, userID uuid.UUID, reason string) error
	UnblockUser(ctx context.Context, userID uuid.UUID) error
}

type UserHandler struct {
	userService UserService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   newValidator(),
		timeout:     defaultTimeout,
	}
}

type UserRegisterRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type BlockUserRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req UserRegisterRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.userService.Register(ctx, req.FullName, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(user))
}

func (h *UserHandler) Login(c echo.Context) error {
	var req UserLoginRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	token, user, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		logger.Debug("Login rejected", "email", req.Email, "ip", c.RealIP())
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(LoginResponse{Token: token, User: user}))
}

func (h *UserHandler) VerifyEmail(c echo.Context) error {
	var req VerifyEmailRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.VerifyEmail(ctx, req.Email, req.Code); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Email verified successfully"))
}

func (h *UserHandler) ResendVerification(c echo.Context) error {
	var req ResendVerificationRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.ResendVerification(ctx, req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Verification code sent"))
}

// Logout revokes the token used for this request.
func (h *UserHandler) Logout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.Logout(ctx, userID, currentToken(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Logout successful"))
}

func (h *UserHandler) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.userService.Me(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(user))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.userService.UpdateProfile(ctx, userID, req.FullName)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(user))
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Password changed, please log in again"))
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	users, err := h.userService.ListUsers(ctx, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(users))
}

func (h *UserHandler) BlockUser(c echo.Context) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return err
	}

	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req BlockUserRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.BlockUser(ctx, adminID, userID, req.Reason); err != nil {
		return err
	}

	logger.Info("User blocked", "user_id", userID, "admin_id", adminID)
	return c.JSON(http.StatusOK, fres.Response.StatusOK("User blocked"))
}

func (h *UserHandler) UnblockUser(c echo.Context) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.UnblockUser(ctx, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("User unblocked"))
}
