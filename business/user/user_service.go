package user

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/logger"
	"toutaunclicla/pkg/utils"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error
	SetVerificationCode(ctx context.Context, id uuid.UUID, encrypted string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	RecordLoginFailure(ctx context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error
	ResetLoginFailures(ctx context.Context, id uuid.UUID) error
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool, reason string) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendVerification(ctx context.Context, name, email, code string) error
	SendWelcome(ctx context.Context, name, email string) error
}

type TokenRepository interface {
	StoreToken(ctx context.Context, token string, session domain.Session, ttl time.Duration) error
	DeleteToken(ctx context.Context, userID, token string) error
	DeleteUserTokens(ctx context.Context, userID string) error
}

type TokenIssuer interface {
	GenerateJWT(userID, role string) (string, error)
	TTL() time.Duration
}

type Config struct {
	EmailVerificationKey string
	VerificationCodeTTL  time.Duration
	MaxFailedLogins      int
	LockoutDuration      time.Duration
}

type userService struct {
	userRepo  UserRepository
	validate  *validator.Validate
	notifRepo NotificationRepository
	tokenRepo TokenRepository
	jwt       TokenIssuer
	cfg       Config
	now       func() time.Time
}

const verificationCodeDigits = 6

func NewUserService(
	userRepo UserRepository,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	tokenRepo TokenRepository,
	jwt TokenIssuer,
	cfg Config,
) *userService {
	if cfg.VerificationCodeTTL == 0 {
		cfg.VerificationCodeTTL = 15 * time.Minute
	}
	if cfg.MaxFailedLogins == 0 {
		cfg.MaxFailedLogins = 5
	}
	if cfg.LockoutDuration == 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}

	return &userService{
		userRepo:  userRepo,
		validate:  validate,
		notifRepo: notifRepo,
		tokenRepo: tokenRepo,
		jwt:       jwt,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *userService) Register(ctx context.Context, fullName, email, password string) (domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	details := map[string]any{}
	if err := s.validate.Var(fullName, "required,max=100"); err != nil {
		details["full_name"] = "full name is required"
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		details["email"] = "invalid email format"
	}
	if err := s.validate.Var(password, "required,min=8,max=72"); err != nil {
		details["password"] = "password must be between 8 and 72 characters"
	}
	if len(details) > 0 {
		return domain.User{}, domain.NewValidationError("invalid registration data", details)
	}

	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.User{}, domain.NewConflictError("email already exists")
	case !errors.Is(err, domain.ErrNotFound):
		return domain.User{}, errors.Wrap(err, "check email")
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.Wrap(err, "hash password")
	}

	code, encrypted, err := s.newVerificationCode()
	if err != nil {
		return domain.User{}, err
	}
	expiresAt := s.now().Add(s.cfg.VerificationCodeTTL)

	newUser := domain.User{
		ID:                    uuid.New(),
		FullName:              fullName,
		Email:                 email,
		Password:              passwordHash,
		Role:                  domain.RoleCustomer,
		VerificationCode:      encrypted,
		VerificationExpiresAt: &expiresAt,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	if err := s.notifRepo.SendVerification(ctx, newUser.FullName, newUser.Email, code); err != nil {
		logger.Warn("Failed to send verification email", err, "user_id", newUser.ID)
	}

	return newUser, nil
}

func (s *userService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return domain.NewValidationError("email already verified", nil)
	}

	if user.VerificationCode == "" || user.VerificationExpiresAt == nil || s.now().After(*user.VerificationExpiresAt) {
		return domain.NewValidationError("verification code is invalid or expired", nil)
	}

	stored, err := s.decryptCode(user.VerificationCode)
	if err != nil {
		logger.Error("Verifying email error", err, "user_id", user.ID)
		return domain.NewValidationError("verification code is invalid or expired", nil)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		return domain.NewValidationError("verification code is invalid or expired", nil)
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return err
	}

	if err := s.notifRepo.SendWelcome(ctx, user.FullName, user.Email); err != nil {
		logger.Warn("Failed to send welcome email", err, "user_id", user.ID)
	}

	return nil
}

func (s *userService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return domain.NewValidationError("email already verified", nil)
	}

	code, encrypted, err := s.newVerificationCode()
	if err != nil {
		return err
	}

	if err := s.userRepo.SetVerificationCode(ctx, user.ID, encrypted, s.now().Add(s.cfg.VerificationCodeTTL)); err != nil {
		return err
	}

	if err := s.notifRepo.SendVerification(ctx, user.FullName, user.Email, code); err != nil {
		logger.Warn("Failed to send verification email", err, "user_id", user.ID)
	}

	return nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.User{}, domain.NewUnauthorizedError("invalid email or password")
		}
		return "", domain.User{}, err
	}

	now := s.now()

	if user.IsBlocked {
		return "", domain.User{}, &domain.Error{
			Kind:    domain.KindForbidden,
			Message: "account is blocked",
			Details: map[string]any{"reason": user.BlockReason},
		}
	}

	if user.IsLocked(now) {
		return "", domain.User{}, lockedError(*user.LockedUntil)
	}

	if !utils.CheckPassword(password, user.Password) {
		return "", domain.User{}, s.recordFailure(ctx, user, now)
	}

	if !user.IsVerified {
		return "", domain.User{}, domain.NewForbiddenError("email address has not been verified")
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.userRepo.ResetLoginFailures(ctx, user.ID); err != nil {
			logger.Warn("Failed to reset login failures", err, "user_id", user.ID)
		}
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
	}

	token, err := s.jwt.GenerateJWT(user.ID.String(), user.Role)
	if err != nil {
		logger.Error("Failed to generated token", err)
		return "", domain.User{}, errors.Wrap(err, "generate token")
	}

	session := domain.Session{
		UserID:    user.ID.String(),
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
	}
	if err := s.tokenRepo.StoreToken(ctx, token, session, s.jwt.TTL()); err != nil {
		logger.Error("Failed to store session", err, "user_id", user.ID)
		return "", domain.User{}, errors.Wrap(err, "store session")
	}

	return token, user, nil
}

// recordFailure bumps the failed attempt counter and locks the account once
// it reaches MaxFailedLogins.
func (s *userService) recordFailure(ctx context.Context, user domain.User, now time.Time) error {
	attempts := user.FailedLoginAttempts + 1

	var lockedUntil *time.Time
	if attempts >= s.cfg.MaxFailedLogins {
		until := now.Add(s.cfg.LockoutDuration)
		lockedUntil = &until
		attempts = 0
	}

	if err := s.userRepo.RecordLoginFailure(ctx, user.ID, attempts, lockedUntil); err != nil {
		logger.Error("Failed to record login failure", err, "user_id", user.ID)
	}

	if lockedUntil != nil {
		logger.Warn("Account locked after failed logins", "user_id", user.ID)
		return lockedError(*lockedUntil)
	}

	return domain.NewUnauthorizedError("invalid email or password")
}

func lockedError(until time.Time) error {
	return &domain.Error{
		Kind:    domain.KindForbidden,
		Message: "account temporarily locked after too many failed logins",
		Details: map[string]any{"locked_until": until.UTC().Format(time.RFC3339)},
	}
}

func (s *userService) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.tokenRepo.DeleteToken(ctx, userID.String(), token); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

func (s *userService) Me(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName string) (domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	if err := s.validate.Var(fullName, "required,max=100"); err != nil {
		return domain.User{}, domain.NewValidationError("invalid profile data", map[string]any{"full_name": "full name is required"})
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, fullName); err != nil {
		return domain.User{}, err
	}

	return s.userRepo.FindByID(ctx, userID)
}

// ChangePassword requires the current password and revokes every session.
func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if err := s.validate.Var(newPassword, "required,min=8,max=72"); err != nil {
		return domain.NewValidationError("invalid password", map[string]any{"new_password": "password must be between 8 and 72 characters"})
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(currentPassword, user.Password) {
		return domain.NewUnauthorizedError("current password is incorrect")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash, s.now()); err != nil {
		return err
	}

	if err := s.tokenRepo.DeleteUserTokens(ctx, userID.String()); err != nil {
		logger.Warn("Failed to revoke sessions", err, "user_id", userID)
	}

	return nil
}

func (s *userService) ListUsers(ctx context.Context, page domain.PageRequest) (domain.Page[domain.User], error) {
	users, total, err := s.userRepo.FindAll(ctx, page)
	if err != nil {
		return domain.Page[domain.User]{}, err
	}

	return domain.NewPage(users, page, total), nil
}

func (s *userService) BlockUser(ctx context.Context, adminID, userID uuid.UUID, reason string) error {
	if adminID == userID {
		return domain.NewValidationError("admins cannot block themselves", nil)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.NewValidationError("block reason is required", map[string]any{"reason": "required"})
	}

	if err := s.userRepo.SetBlocked(ctx, userID, true, reason); err != nil {
		return err
	}

	if err := s.tokenRepo.DeleteUserTokens(ctx, userID.String()); err != nil {
		logger.Warn("Failed to revoke sessions", err, "user_id", userID)
	}

	logger.Info("User blocked", "user_id", userID, "admin_id", adminID)
	return nil
}

func (s *userService) UnblockUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.SetBlocked(ctx, userID, false, ""); err != nil {
		return err
	}

	return s.userRepo.ResetLoginFailures(ctx, userID)
}

func (s *userService) newVerificationCode() (code, encrypted string, err error) {
	code, err = utils.GenerateNumericCode(verificationCodeDigits)
	if err != nil {
		return "", "", errors.Wrap(err, "generate verification code")
	}

	enc, err := goshortcute.AESCBCEncrypt([]byte(code), []byte(s.cfg.EmailVerificationKey))
	if err != nil {
		logger.Error("error when encrypt verification code", err)
		return "", "", errors.Wrap(err, "encrypt verification code")
	}

	return code, goshortcute.StringtoBase64Encode(enc), nil
}

func (s *userService) decryptCode(stored string) (string, error) {
	strDecode := goshortcute.StringtoBase64Decode(stored)
	return goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.cfg.EmailVerificationKey))
}
