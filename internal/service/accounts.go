package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AccountService struct {
	users   UserRepository
	hasher  PasswordHasher
	tokens  TokenIssuer
	metrics AuthRecorder
	log     *slog.Logger
}

func NewAccountService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, metrics AuthRecorder, log *slog.Logger) *AccountService {
	if log == nil {
		log = slog.Default()
	}
	return &AccountService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		metrics: metrics,
		log:     log,
	}
}

// SignUp registers a user. It does not log them in.
func (s *AccountService) SignUp(ctx context.Context, req user.SignUpRequest) (user.Profile, error) {
	if err := req.Validate(); err != nil {
		s.record("signup", "invalid")
		return user.Profile{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, req.Email, hash, req.Name)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			s.record("signup", "conflict")
			return user.Profile{}, user.ErrEmailTaken
		}
		return user.Profile{}, fmt.Errorf("create user: %w", err)
	}

	s.record("signup", "ok")
	s.log.InfoContext(ctx, "user_signed_up", "user_id", u.ID)

	return u.Profile(), nil
}

// Login returns a session token for valid credentials.
func (s *AccountService) Login(ctx context.Context, req user.LoginRequest) (string, error) {
	if err := req.Validate(); err != nil {
		s.record("login", "invalid")
		return "", err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.hasher.Burn(req.Password)
			s.record("login", "invalid_credentials")
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		s.record("login", "invalid_credentials")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.record("login", "ok")
	return token, nil
}

func (s *AccountService) record(event, result string) {
	if s.metrics != nil {
		s.metrics.AuthEvent(event, result)
	}
}
