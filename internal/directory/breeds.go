package directory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pribylovaa/dog-directory/internal/apiclient"
	"github.com/pribylovaa/dog-directory/internal/cache"
	"github.com/pribylovaa/dog-directory/internal/models"
)

const (
	pathBreeds      = "/api/breeds/"
	pathBreedGroups = "/api/breeds/groups"
)

// Breeds — справочник пород /api/breeds; меняется редко, кэшируется на BreedsTTL.
type Breeds struct {
	s *Service
}

func (b *Breeds) List(ctx context.Context, f models.BreedFilters) (*models.Page[models.Breed], error) {
	const op = "directory.Breeds.List"

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := apiclient.BuildQuery(f.Values())

	page, err := cache.Fetch(ctx, b.s.cache, cache.Key(prefixBreeds, q), b.s.opts.BreedsTTL, func(ctx context.Context) (*models.Page[models.Breed], error) {
		var out models.Page[models.Breed]
		if err := b.s.api.Get(ctx, pathBreeds+q, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

func (b *Breeds) Get(ctx context.Context, id int) (*models.Breed, error) {
	const op = "directory.Breeds.Get"

	if id <= 0 {
		return nil, fmt.Errorf("%s: %w: breed id must be positive", op, models.ErrInvalidInput)
	}

	sid := strconv.Itoa(id)

	breed, err := cache.Fetch(ctx, b.s.cache, cache.Key(prefixBreeds, "id", sid), b.s.opts.BreedsTTL, func(ctx context.Context) (*models.Breed, error) {
		var out models.Breed
		if err := b.s.api.Get(ctx, pathBreeds+sid, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return breed, nil
}

// Groups — группы FCI с числом пород.
func (b *Breeds) Groups(ctx context.Context) ([]models.FCIGroup, error) {
	const op = "directory.Breeds.Groups"

	groups, err := cache.Fetch(ctx, b.s.cache, cache.Key(prefixBreeds, "groups"), b.s.opts.BreedsTTL, func(ctx context.Context) ([]models.FCIGroup, error) {
		var out []models.FCIGroup
		if err := b.s.api.Get(ctx, pathBreedGroups, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return groups, nil
}
