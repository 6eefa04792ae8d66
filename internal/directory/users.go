package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pribylovaa/dog-directory/internal/apiclient"
	"github.com/pribylovaa/dog-directory/internal/cache"
	"github.com/pribylovaa/dog-directory/internal/models"
)

const (
	pathUsers  = "/api/users/"
	pathUserMe = "/api/users/me"
)

// Users — ресурс /api/users.
type Users struct {
	s *Service
}

// List — страница пользователей по фильтрам.
func (u *Users) List(ctx context.Context, f models.UserFilters) (*models.Page[models.User], error) {
	const op = "directory.Users.List"

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := apiclient.BuildQuery(f.Values())

	page, err := cache.Fetch(ctx, u.s.cache, cache.Key(prefixUsers, q), u.s.opts.DataTTL, func(ctx context.Context) (*models.Page[models.User], error) {
		var out models.Page[models.User]
		if err := u.s.api.Get(ctx, pathUsers+q, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

// Get — публичный профиль пользователя.
func (u *Users) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "directory.Users.Get"

	user, err := cache.Fetch(ctx, u.s.cache, cache.Key(prefixUsers, id.String()), u.s.opts.DataTTL, func(ctx context.Context) (*models.User, error) {
		var out models.User
		if err := u.s.api.Get(ctx, pathUsers+id.String(), &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Dogs — собаки пользователя.
func (u *Users) Dogs(ctx context.Context, id uuid.UUID) ([]models.Dog, error) {
	const op = "directory.Users.Dogs"

	dogs, err := cache.Fetch(ctx, u.s.cache, cache.Key(prefixUsers, id.String(), "dogs"), u.s.opts.DataTTL, func(ctx context.Context) ([]models.Dog, error) {
		var out []models.Dog
		if err := u.s.api.Get(ctx, pathUsers+id.String()+"/dogs", &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return dogs, nil
}

// UpdateMe — обновление своего профиля.
func (u *Users) UpdateMe(ctx context.Context, in models.UserUpdate) (*models.User, error) {
	const op = "directory.Users.UpdateMe"

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.IsEmpty() {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidInput, ErrNothingToUpdate)
	}

	var out models.User
	if err := u.s.api.Put(ctx, pathUserMe, in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.s.cache.InvalidatePrefix(prefixUsers)
	u.s.cache.Set(cache.Key(prefixUsers, out.ID.String()), &out, u.s.opts.DataTTL)

	return &out, nil
}
