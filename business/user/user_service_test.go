package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/utils"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef"

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
}

func (f *fakeUserRepo) get(id uuid.UUID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}
	return u, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return domain.User{}, err
	}
	return *u, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return domain.User{}, domain.NewNotFoundError("user")
}

func (f *fakeUserRepo) FindAll(_ context.Context, _ domain.PageRequest) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) mutate(id uuid.UUID, fn func(u *domain.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	fn(u)
	return nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, fullName string) error {
	return f.mutate(id, func(u *domain.User) { u.FullName = fullName })
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string, changedAt time.Time) error {
	return f.mutate(id, func(u *domain.User) { u.Password = hash; u.PasswordChangedAt = &changedAt })
}

func (f *fakeUserRepo) SetVerificationCode(_ context.Context, id uuid.UUID, encrypted string, expiresAt time.Time) error {
	return f.mutate(id, func(u *domain.User) { u.VerificationCode = encrypted; u.VerificationExpiresAt = &expiresAt })
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	return f.mutate(id, func(u *domain.User) { u.IsVerified = true; u.VerificationCode = ""; u.VerificationExpiresAt = nil })
}

func (f *fakeUserRepo) RecordLoginFailure(_ context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error {
	return f.mutate(id, func(u *domain.User) { u.FailedLoginAttempts = attempts; u.LockedUntil = lockedUntil })
}

func (f *fakeUserRepo) ResetLoginFailures(_ context.Context, id uuid.UUID) error {
	return f.mutate(id, func(u *domain.User) { u.FailedLoginAttempts = 0; u.LockedUntil = nil })
}

func (f *fakeUserRepo) SetBlocked(_ context.Context, id uuid.UUID, blocked bool, reason string) error {
	return f.mutate(id, func(u *domain.User) { u.IsBlocked = blocked; u.BlockReason = reason })
}

type fakeNotifier struct {
	codes    []string
	welcomed []string
	err      error
}

func (f *fakeNotifier) SendVerification(_ context.Context, _, _, code string) error {
	f.codes = append(f.codes, code)
	return f.err
}

func (f *fakeNotifier) SendWelcome(_ context.Context, _, email string) error {
	f.welcomed = append(f.welcomed, email)
	return f.err
}

type fakeTokens struct {
	sessions map[string]domain.Session
}

func (f *fakeTokens) StoreToken(_ context.Context, token string, session domain.Session, _ time.Duration) error {
	f.sessions[token] = session
	return nil
}

func (f *fakeTokens) DeleteToken(_ context.Context, _, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeTokens) DeleteUserTokens(_ context.Context, userID string) error {
	for k, v := range f.sessions {
		if v.UserID == userID {
			delete(f.sessions, k)
		}
	}
	return nil
}

type fixture struct {
	svc    *userService
	repo   *fakeUserRepo
	notif  *fakeNotifier
	tokens *fakeTokens
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   newFakeUserRepo(),
		notif:  &fakeNotifier{},
		tokens: &fakeTokens{sessions: map[string]domain.Session{}},
		clock:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewUserService(f.repo, validator.New(), f.notif, f.tokens, utils.NewJWTManager("secret", time.Hour), Config{
		EmailVerificationKey: testKey,
		VerificationCodeTTL:  15 * time.Minute,
		MaxFailedLogins:      3,
		LockoutDuration:      15 * time.Minute,
	})
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) registerVerified(t *testing.T, email, password string) domain.User {
	t.Helper()
	ctx := context.Background()
	u, err := f.svc.Register(ctx, "Ana", email, password)
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyEmail(ctx, email, f.notif.codes[len(f.notif.codes)-1]))
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.Register(context.Background(), "Ana", "Ana@Example.com", "password1")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.False(t, u.IsVerified)
	assert.NotEqual(t, "password1", u.Password)
	require.Len(t, f.notif.codes, 1)
	assert.Regexp(t, `^\d{6}$`, f.notif.codes[0])

	stored, err := f.repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.VerificationCode, f.notif.codes[0])
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), "", "not-an-email", "short")
	require.Error(t, err)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindValidation, de.Kind)
	assert.Contains(t, de.Details, "full_name")
	assert.Contains(t, de.Details, "email")
	assert.Contains(t, de.Details, "password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Ana", "ana@example.com", "password1")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "Ana Bis", "ana@example.com", "password2")
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_NotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.notif.err = errors.New("smtp down")

	_, err := f.svc.Register(context.Background(), "Ana", "ana@example.com", "password1")
	assert.NoError(t, err)
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong code", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, "Ana", "ana@example.com", "password1")
		require.NoError(t, err)

		wrong := "000000"
		if f.notif.codes[0] == wrong {
			wrong = "111111"
		}
		err = f.svc.VerifyEmail(ctx, "ana@example.com", wrong)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("expired code", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, "Ana", "ana@example.com", "password1")
		require.NoError(t, err)

		f.clock = f.clock.Add(16 * time.Minute)
		err = f.svc.VerifyEmail(ctx, "ana@example.com", f.notif.codes[0])
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("valid code then already verified", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, "Ana", "ana@example.com", "password1")
		require.NoError(t, err)

		require.NoError(t, f.svc.VerifyEmail(ctx, "ana@example.com", f.notif.codes[0]))
		assert.Equal(t, []string{"ana@example.com"}, f.notif.welcomed)

		err = f.svc.VerifyEmail(ctx, "ana@example.com", f.notif.codes[0])
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.VerifyEmail(ctx, "nobody@example.com", "123456")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestResendVerification_ReplacesCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Ana", "ana@example.com", "password1")
	require.NoError(t, err)

	f.clock = f.clock.Add(20 * time.Minute)
	require.NoError(t, f.svc.ResendVerification(ctx, "ana@example.com"))
	require.Len(t, f.notif.codes, 2)

	require.NoError(t, f.svc.VerifyEmail(ctx, "ana@example.com", f.notif.codes[1]))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.registerVerified(t, "ana@example.com", "password1")

	token, got, err := f.svc.Login(ctx, "ana@example.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.ID.String(), f.tokens.sessions[token].UserID)

	require.NoError(t, f.svc.Logout(ctx, u.ID, token))
	assert.Empty(t, f.tokens.sessions)
}

func TestLogin_UnknownEmailIsUnauthorized(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Login(context.Background(), "nobody@example.com", "password1")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_Unverified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Ana", "ana@example.com", "password1")
	require.NoError(t, err)

	_, _, err = f.svc.Login(ctx, "ana@example.com", "password1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestLogin_LockoutAfterFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerVerified(t, "ana@example.com", "password1")

	for i := 0; i < 2; i++ {
		_, _, err := f.svc.Login(ctx, "ana@example.com", "wrong-password")
		assert.True(t, errors.Is(err, domain.ErrUnauthorized), "attempt %d", i+1)
	}

	_, _, err := f.svc.Login(ctx, "ana@example.com", "wrong-password")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	// the right password is refused while locked
	_, _, err = f.svc.Login(ctx, "ana@example.com", "password1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	f.clock = f.clock.Add(16 * time.Minute)
	_, _, err = f.svc.Login(ctx, "ana@example.com", "password1")
	require.NoError(t, err)

	stored, err := f.repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestBlockUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.registerVerified(t, "ana@example.com", "password1")

	token, _, err := f.svc.Login(ctx, "ana@example.com", "password1")
	require.NoError(t, err)

	adminID := uuid.New()
	require.NoError(t, f.svc.BlockUser(ctx, adminID, u.ID, "fraud"))
	assert.NotContains(t, f.tokens.sessions, token)

	_, _, err = f.svc.Login(ctx, "ana@example.com", "password1")
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindForbidden, de.Kind)
	assert.Equal(t, "fraud", de.Details["reason"])

	require.NoError(t, f.svc.UnblockUser(ctx, u.ID))
	_, _, err = f.svc.Login(ctx, "ana@example.com", "password1")
	assert.NoError(t, err)

	err = f.svc.BlockUser(ctx, adminID, adminID, "self")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.registerVerified(t, "ana@example.com", "password1")

	err := f.svc.ChangePassword(ctx, u.ID, "not-it", "password2")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, "password1", "password2"))

	stored, err := f.repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordChangedAt)

	_, _, err = f.svc.Login(ctx, "ana@example.com", "password2")
	assert.NoError(t, err)
}
