package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-service/internal/auth"
	"github.com/spec-kit/taskboard-service/internal/config"
	"github.com/spec-kit/taskboard-service/internal/domain"
	"github.com/spec-kit/taskboard-service/internal/events"
	"github.com/spec-kit/taskboard-service/internal/mailer"
	"github.com/spec-kit/taskboard-service/internal/repository"
)

// Operation-level outcomes. These are expected results the handler translates
// into the success:false envelope, not exceptional conditions.
var (
	ErrEmailTaken          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("no user found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrVerificationTimeout = errors.New("password verification timed out")
	ErrCodeMismatch        = errors.New("invalid verification code")
	ErrCodeExpired         = errors.New("verification code expired")
)

// AuthService sequences registration, login, and email verification against
// the user store, the hasher, the OTP lifecycle, and the token issuer.
type AuthService struct {
	users          repository.UserRepository
	mail           mailer.Mailer
	dispatcher     events.Dispatcher
	tokenMgr       *auth.TokenManager
	logger         *zap.Logger
	bcryptCost     int
	compareTimeout time.Duration
	otpTTL         time.Duration
	requireVerify  bool
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Mailer     mailer.Mailer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service. A missing signing secret surfaces here,
// before the server accepts traffic.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	tokenMgr, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:          deps.UserRepo,
		mail:           deps.Mailer,
		dispatcher:     deps.Dispatcher,
		tokenMgr:       tokenMgr,
		logger:         deps.Logger,
		bcryptCost:     cfg.Auth.BcryptCost,
		compareTimeout: cfg.Auth.CompareTimeout(),
		otpTTL:         cfg.Auth.OTPTTL(),
		requireVerify:  cfg.Auth.RequireEmailVerification,
	}, nil
}

// Register creates a new account and issues a session token. When email
// verification is required, the account starts unverified with a pending OTP
// and the code is mailed out; otherwise the account is created pre-verified
// and no OTP is issued.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, ErrEmailTaken
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		IsAccountVerified: !s.requireVerify,
	}

	var code string
	if s.requireVerify {
		code = auth.GenerateOTP()
		user.SetVerification(code, time.Now().Add(s.otpTTL))
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	if s.requireVerify {
		if err := s.mail.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
			// The account exists either way; the code can be re-requested.
			s.logger.Error("failed to send verification code", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Email:                user.Email,
		VerificationRequired: s.requireVerify,
	})

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates an account. Password comparison is bounded: past the
// deadline the caller gets ErrVerificationTimeout, which is a degraded-service
// signal and never an authentication verdict. The abandoned bcrypt computation
// finishes in the background without touching shared state.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, ErrUserNotFound
		}
		return nil, "", time.Time{}, err
	}

	if err := auth.ComparePasswordWithTimeout(user.PasswordHash, password, s.compareTimeout); err != nil {
		if errors.Is(err, auth.ErrCompareTimeout) {
			s.logger.Error("password verification timed out", zap.String("user_id", user.ID))
			return nil, "", time.Time{}, ErrVerificationTimeout
		}
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// VerifyEmail checks a submitted OTP against the pending verification state.
// Existence is checked before the code, the code before expiry, so the caller
// always gets the most specific outcome. On success the OTP fields are
// cleared, which is what makes a replayed code fail as a mismatch.
func (s *AuthService) VerifyEmail(ctx context.Context, email, otp string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, ErrUserNotFound
		}
		return nil, "", time.Time{}, err
	}

	if user.VerifyOTP != otp {
		return nil, "", time.Time{}, ErrCodeMismatch
	}

	if user.VerifyOTPExpireAt == 0 || time.Now().UnixMilli() > user.VerifyOTPExpireAt {
		return nil, "", time.Time{}, ErrCodeExpired
	}

	user.ClearVerification()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserVerified, user.ID, nil)

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
