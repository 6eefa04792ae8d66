package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dog — профиль собаки.
// Список отдаёт вложенную породу (breed), часть эндпойнтов — только breed_id.
type Dog struct {
	ID                     uuid.UUID  `json:"id"`
	Name                   string     `json:"name"`
	CallName               *string    `json:"call_name"`
	Sex                    Sex        `json:"sex"`
	DateOfBirth            Date       `json:"date_of_birth"`
	Color                  *string    `json:"color"`
	Breed                  *BreedInfo `json:"breed,omitempty"`
	BreedID                int        `json:"breed_id,omitempty"`
	OwnerID                uuid.UUID  `json:"owner_id"`
	RegistrationNumber     *string    `json:"registration_number"`
	MicrochipNumber        *string    `json:"microchip_number,omitempty"`
	SireID                 *uuid.UUID `json:"sire_id,omitempty"`
	DamID                  *uuid.UUID `json:"dam_id,omitempty"`
	HealthTests            *string    `json:"health_tests,omitempty"`
	Titles                 *string    `json:"titles,omitempty"`
	Description            *string    `json:"description,omitempty"`
	IsAvailableForBreeding *bool      `json:"is_available_for_breeding"`
	PhotoURL               *string    `json:"photo_url"`
	IsActive               bool       `json:"is_active,omitempty"`
	CreatedAt              *time.Time `json:"created_at,omitempty"`
}

// DogCreate — новая собака текущего пользователя.
type DogCreate struct {
	Name                   string     `json:"name" validate:"required,max=100"`
	CallName               *string    `json:"call_name,omitempty"`
	Sex                    Sex        `json:"sex" validate:"required,oneof=male female"`
	DateOfBirth            Date       `json:"date_of_birth"`
	BreedID                int        `json:"breed_id" validate:"gt=0"`
	Color                  *string    `json:"color,omitempty"`
	RegistrationNumber     *string    `json:"registration_number,omitempty"`
	MicrochipNumber        *string    `json:"microchip_number,omitempty"`
	SireID                 *uuid.UUID `json:"sire_id,omitempty"`
	DamID                  *uuid.UUID `json:"dam_id,omitempty"`
	HealthTests            *string    `json:"health_tests,omitempty"`
	Titles                 *string    `json:"titles,omitempty"`
	Description            *string    `json:"description,omitempty"`
	IsAvailableForBreeding *bool      `json:"is_available_for_breeding,omitempty"`
	PhotoURL               *string    `json:"photo_url,omitempty"`
}

// Validate — теги + дата рождения (обязательна, не в будущем) + родители не совпадают.
func (d *DogCreate) Validate() error {
	d.Name = strings.TrimSpace(d.Name)

	if err := validateStruct(d); err != nil {
		return err
	}

	if d.DateOfBirth.IsZero() {
		return fmt.Errorf("%w: date_of_birth is required", ErrInvalidInput)
	}

	if d.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("%w: date_of_birth is in the future", ErrInvalidInput)
	}

	if d.SireID != nil && d.DamID != nil && *d.SireID == *d.DamID {
		return fmt.Errorf("%w: sire and dam must differ", ErrInvalidInput)
	}

	return nil
}

// DogUpdate — частичное обновление профиля собаки.
type DogUpdate struct {
	Name                   *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	CallName               *string    `json:"call_name,omitempty"`
	Color                  *string    `json:"color,omitempty"`
	RegistrationNumber     *string    `json:"registration_number,omitempty"`
	MicrochipNumber        *string    `json:"microchip_number,omitempty"`
	SireID                 *uuid.UUID `json:"sire_id,omitempty"`
	DamID                  *uuid.UUID `json:"dam_id,omitempty"`
	HealthTests            *string    `json:"health_tests,omitempty"`
	Titles                 *string    `json:"titles,omitempty"`
	Description            *string    `json:"description,omitempty"`
	IsAvailableForBreeding *bool      `json:"is_available_for_breeding,omitempty"`
	PhotoURL               *string    `json:"photo_url,omitempty"`
}

func (d *DogUpdate) Validate() error { return validateStruct(d) }

// Сортировка списка собак.
const (
	SortNewest = "newest"
	SortName   = "name"
)

// DogFilters — фильтры списка собак.
type DogFilters struct {
	BreedID                int          `validate:"omitempty,gt=0"`
	Sex                    Sex          `validate:"omitempty,oneof=male female"`
	IsAvailableForBreeding *bool
	Name                   string       `validate:"omitempty,max=100"`
	Voivodeship            string
	City                   string
	SizeCategory           SizeCategory `validate:"omitempty,oneof=mini small medium large giant"`
	FCIGroup               int          `validate:"omitempty,min=1,max=10"`
	SortBy                 string       `validate:"omitempty,oneof=newest name"`
	Page                   int          `validate:"omitempty,min=1"`
	Limit                  int          `validate:"omitempty,min=1,max=100"`
}

func (f *DogFilters) Validate() error { return validateStruct(f) }

func (f DogFilters) Values() url.Values {
	v := url.Values{}
	setPositive(v, "breed_id", f.BreedID)
	v.Set("sex", string(f.Sex))
	if f.IsAvailableForBreeding != nil {
		v.Set("is_available_for_breeding", strconv.FormatBool(*f.IsAvailableForBreeding))
	}
	v.Set("name", f.Name)
	v.Set("voivodeship", f.Voivodeship)
	v.Set("city", f.City)
	v.Set("size_category", string(f.SizeCategory))
	setPositive(v, "fci_group", f.FCIGroup)
	v.Set("sort_by", f.SortBy)
	setPositive(v, "page", f.Page)
	setPositive(v, "limit", f.Limit)

	return v
}

// PedigreeNode — узел родословной: собака и её родители (рекурсивно).
type PedigreeNode struct {
	ID                 uuid.UUID     `json:"id"`
	Name               string        `json:"name"`
	Sex                Sex           `json:"sex"`
	DateOfBirth        Date          `json:"date_of_birth"`
	Breed              *BreedInfo    `json:"breed,omitempty"`
	RegistrationNumber *string       `json:"registration_number"`
	PhotoURL           *string       `json:"photo_url"`
	Sire               *PedigreeNode `json:"sire"`
	Dam                *PedigreeNode `json:"dam"`
}

// Depth — число поколений в дереве, включая корень.
func (n *PedigreeNode) Depth() int {
	if n == nil {
		return 0
	}

	return 1 + max(n.Sire.Depth(), n.Dam.Depth())
}
