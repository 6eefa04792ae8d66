package directory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/pribylovaa/dog-directory/internal/apiclient"
	"github.com/pribylovaa/dog-directory/internal/cache"
	"github.com/pribylovaa/dog-directory/internal/models"
)

const pathDogs = "/api/dogs/"

// Dogs — ресурс /api/dogs.
type Dogs struct {
	s *Service
}

// List — страница собак по фильтрам.
func (d *Dogs) List(ctx context.Context, f models.DogFilters) (*models.Page[models.Dog], error) {
	const op = "directory.Dogs.List"

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := apiclient.BuildQuery(f.Values())

	page, err := cache.Fetch(ctx, d.s.cache, cache.Key(prefixDogs, q), d.s.opts.DataTTL, func(ctx context.Context) (*models.Page[models.Dog], error) {
		var out models.Page[models.Dog]
		if err := d.s.api.Get(ctx, pathDogs+q, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

// Get — собака по id.
func (d *Dogs) Get(ctx context.Context, id uuid.UUID) (*models.Dog, error) {
	const op = "directory.Dogs.Get"

	dog, err := cache.Fetch(ctx, d.s.cache, cache.Key(prefixDogs, id.String()), d.s.opts.DataTTL, func(ctx context.Context) (*models.Dog, error) {
		var out models.Dog
		if err := d.s.api.Get(ctx, pathDogs+id.String(), &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return dog, nil
}

// Create — новая собака текущего пользователя.
func (d *Dogs) Create(ctx context.Context, in models.DogCreate) (*models.Dog, error) {
	const op = "directory.Dogs.Create"

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out models.Dog
	if err := d.s.api.Post(ctx, pathDogs, in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d.invalidate(out.OwnerID)

	return &out, nil
}

// Update — частичное обновление собаки.
func (d *Dogs) Update(ctx context.Context, id uuid.UUID, in models.DogUpdate) (*models.Dog, error) {
	const op = "directory.Dogs.Update"

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out models.Dog
	if err := d.s.api.Put(ctx, pathDogs+id.String(), in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d.invalidate(out.OwnerID)

	return &out, nil
}

// Delete — удаление собаки; бэкенд отвечает 204.
func (d *Dogs) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "directory.Dogs.Delete"

	// Владелец известен, только если карточка ещё в кэше.
	owner := uuid.Nil
	if v, ok := d.s.cache.Get(cache.Key(prefixDogs, id.String())); ok {
		if dog, ok := v.(*models.Dog); ok {
			owner = dog.OwnerID
		}
	}

	if err := d.s.api.Delete(ctx, pathDogs+id.String(), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	d.invalidate(owner)

	return nil
}

// Pedigree — родословная на generations поколений (1..5).
func (d *Dogs) Pedigree(ctx context.Context, id uuid.UUID, generations int) (*models.PedigreeNode, error) {
	const op = "directory.Dogs.Pedigree"

	if generations < minGenerations || generations > maxGenerations {
		return nil, fmt.Errorf("%s: %w: generations must be between %d and %d",
			op, models.ErrInvalidInput, minGenerations, maxGenerations)
	}

	q := apiclient.BuildQuery(url.Values{"generations": {strconv.Itoa(generations)}})
	key := cache.Key(prefixDogs, id.String(), "pedigree", q)

	node, err := cache.Fetch(ctx, d.s.cache, key, d.s.opts.DataTTL, func(ctx context.Context) (*models.PedigreeNode, error) {
		var out models.PedigreeNode
		if err := d.s.api.Get(ctx, pathDogs+id.String()+"/pedigree"+q, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return node, nil
}

// invalidate — изменения собак делают устаревшими все списки собак
// и список собак владельца (или все пользовательские ключи, если владелец неизвестен).
func (d *Dogs) invalidate(owner uuid.UUID) {
	d.s.cache.InvalidatePrefix(prefixDogs)

	if owner == uuid.Nil {
		d.s.cache.InvalidatePrefix(prefixUsers)
		return
	}

	d.s.cache.InvalidatePrefix(prefixUsers, owner.String(), "dogs")
}
