package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/taskboard-service/internal/config"
	"github.com/spec-kit/taskboard-service/internal/domain"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	creates int
	updates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.byID[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.updates++
	user.UpdatedAt = time.Now()
	r.byID[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byID[id]; ok {
		copied := user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  int
	to    string
	code  string
	fails bool
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	m.to = to
	m.code = code
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:                 "test-secret",
			SessionTTLHours:           168,
			BcryptCost:                bcrypt.MinCost,
			CompareTimeoutSeconds:     10,
			VerificationOTPTTLMinutes: 15,
		},
	}
}

func newTestService(t *testing.T, cfg config.Config, repo *fakeUserRepo, mail *fakeMailer) *AuthService {
	t.Helper()
	svc, err := NewAuthService(cfg, AuthDependencies{
		UserRepo: repo,
		Mailer:   mail,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)
	return svc
}

func TestNewAuthService_EmptySecret(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth.JWTSecret = ""
	_, err := NewAuthService(cfg, AuthDependencies{
		UserRepo: newFakeUserRepo(),
		Mailer:   &fakeMailer{},
		Logger:   zap.NewNop(),
	})
	require.Error(t, err)
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, testConfig(), repo, &fakeMailer{})

	user, token, exp, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))

	require.NotEqual(t, "secret123", user.PasswordHash)
	require.True(t, user.IsAccountVerified, "default configuration bypasses verification")
	require.Empty(t, user.VerifyOTP)
	require.Zero(t, user.VerifyOTPExpireAt)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
}

func TestRegister_DuplicateEmailWritesNothing(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, testConfig(), repo, &fakeMailer{})

	_, _, _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, 1, repo.creates)

	_, _, _, err = svc.Register(context.Background(), "Ann Again", "ann@x.com", "other")
	require.ErrorIs(t, err, ErrEmailTaken)
	require.Equal(t, 1, repo.creates, "duplicate registration must not write")
}

func TestRegister_VerificationRequired(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth.RequireEmailVerification = true
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestService(t, cfg, repo, mail)

	user, _, _, err := svc.Register(context.Background(), "Bob", "bob@x.com", "secret123")
	require.NoError(t, err)

	require.False(t, user.IsAccountVerified)
	require.Len(t, user.VerifyOTP, 6)
	require.Greater(t, user.VerifyOTPExpireAt, time.Now().UnixMilli())
	require.Equal(t, 1, mail.sent)
	require.Equal(t, "bob@x.com", mail.to)
	require.Equal(t, user.VerifyOTP, mail.code, "the mailed code is the stored plaintext code")
}

func TestLogin_Outcomes(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, testConfig(), repo, &fakeMailer{})

	_, _, _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret123")
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "nobody@x.com", "secret123")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, _, _, err = svc.Login(context.Background(), "ann@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	user, token, _, err := svc.Login(context.Background(), "ann@x.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "ann@x.com", user.Email)
}

func TestLogin_TimeoutIsNotAMismatch(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth.BcryptCost = 12
	repo := newFakeUserRepo()
	svc := newTestService(t, cfg, repo, &fakeMailer{})
	// Deadline shorter than any cost-12 bcrypt run.
	svc.compareTimeout = time.Nanosecond

	_, _, _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret123")
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "ann@x.com", "secret123")
	require.ErrorIs(t, err, ErrVerificationTimeout)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmail_OutcomeOrdering(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, testConfig(), repo, &fakeMailer{})

	seed := &domain.User{Name: "Cara", Email: "cara@x.com", PasswordHash: "x"}
	seed.SetVerification("482913", time.Now().Add(10*time.Minute))
	require.NoError(t, repo.Create(context.Background(), seed))

	// Existence before code.
	_, _, _, err := svc.VerifyEmail(context.Background(), "ghost@x.com", "482913")
	require.ErrorIs(t, err, ErrUserNotFound)

	// Code before expiry.
	_, _, _, err = svc.VerifyEmail(context.Background(), "cara@x.com", "111111")
	require.ErrorIs(t, err, ErrCodeMismatch)

	user, token, _, err := svc.VerifyEmail(context.Background(), "cara@x.com", "482913")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, user.IsAccountVerified)
	require.Empty(t, user.VerifyOTP)
	require.Zero(t, user.VerifyOTPExpireAt)

	// Replay: the code was cleared, so the same OTP now mismatches.
	_, _, _, err = svc.VerifyEmail(context.Background(), "cara@x.com", "482913")
	require.ErrorIs(t, err, ErrCodeMismatch)
}

func TestVerifyEmail_Expired(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, testConfig(), repo, &fakeMailer{})

	seed := &domain.User{Name: "Dan", Email: "dan@x.com", PasswordHash: "x"}
	seed.SetVerification("482913", time.Now().Add(-time.Minute))
	require.NoError(t, repo.Create(context.Background(), seed))

	_, _, _, err := svc.VerifyEmail(context.Background(), "dan@x.com", "482913")
	require.ErrorIs(t, err, ErrCodeExpired)

	// A correct-but-expired code must not mark the account verified.
	stored, err := repo.GetByEmail(context.Background(), "dan@x.com")
	require.NoError(t, err)
	require.False(t, stored.IsAccountVerified)
}
