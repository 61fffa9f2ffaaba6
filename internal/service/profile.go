package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

var errMissingOwner = errors.New("missing caller identity")

type ProfileService struct {
	users UserRepository
	cache ProfileCache
	log   *slog.Logger
}

// NewProfileService wires the profile reads through cache; a nil cache disables caching.
func NewProfileService(users UserRepository, cache ProfileCache, log *slog.Logger) *ProfileService {
	if log == nil {
		log = slog.Default()
	}
	return &ProfileService{users: users, cache: cache, log: log}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (user.Profile, error) {
	if userID == "" {
		return user.Profile{}, errMissingOwner
	}

	if s.cache != nil {
		p, ok, err := s.cache.GetProfile(ctx, userID)
		if err != nil {
			s.log.WarnContext(ctx, "profile_cache_get_failed", "user_id", userID, "err", err)
		} else if ok {
			return p, nil
		}
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Profile{}, user.ErrNotFound
		}
		return user.Profile{}, fmt.Errorf("get user: %w", err)
	}

	p := u.Profile()
	s.remember(ctx, p)

	return p, nil
}

// Update changes the display name only; email stays fixed.
func (s *ProfileService) Update(ctx context.Context, userID string, req user.UpdateProfileRequest) (user.Profile, error) {
	if userID == "" {
		return user.Profile{}, errMissingOwner
	}
	if err := req.Validate(); err != nil {
		return user.Profile{}, err
	}

	u, err := s.users.UpdateName(ctx, userID, req.Name)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Profile{}, user.ErrNotFound
		}
		return user.Profile{}, fmt.Errorf("update user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteProfile(ctx, userID); err != nil {
			s.log.WarnContext(ctx, "profile_cache_delete_failed", "user_id", userID, "err", err)
		}
	}

	return u.Profile(), nil
}

func (s *ProfileService) remember(ctx context.Context, p user.Profile) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProfile(ctx, p); err != nil {
		s.log.WarnContext(ctx, "profile_cache_set_failed", "user_id", p.ID, "err", err)
	}
}
