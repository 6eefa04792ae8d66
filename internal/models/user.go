package models

import (
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// User — публичный профиль пользователя (владельца/hodowcy).
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       *string   `json:"phone"`
	City        *string   `json:"city"`
	Voivodeship *string   `json:"voivodeship"`
	Bio         *string   `json:"bio"`
	KennelName  *string   `json:"kennel_name"`
	IsBreeder   bool      `json:"is_breeder"`
	AvatarURL   *string   `json:"avatar_url"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// FullName — "Imię Nazwisko".
func (u *User) FullName() string { return u.FirstName + " " + u.LastName }

// UserUpdate — частичное обновление своего профиля; nil-поля не отправляются.
type UserUpdate struct {
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,min=1"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,min=1"`
	Phone       *string `json:"phone,omitempty"`
	City        *string `json:"city,omitempty"`
	Voivodeship *string `json:"voivodeship,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	KennelName  *string `json:"kennel_name,omitempty"`
	IsBreeder   *bool   `json:"is_breeder,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

func (u *UserUpdate) Validate() error { return validateStruct(u) }

// IsEmpty — в обновлении нет ни одного поля.
func (u *UserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Phone == nil && u.City == nil &&
		u.Voivodeship == nil && u.Bio == nil && u.KennelName == nil && u.IsBreeder == nil &&
		u.AvatarURL == nil
}

// UserFilters — фильтры списка пользователей.
type UserFilters struct {
	Q           string `validate:"omitempty,max=200"`
	IsBreeder   *bool
	City        string
	Voivodeship string
	Page        int `validate:"omitempty,min=1"`
	Limit       int `validate:"omitempty,min=1,max=100"`
}

func (f *UserFilters) Validate() error { return validateStruct(f) }

// Values — параметры запроса; пустые значения отбрасывает apiclient.BuildQuery.
func (f UserFilters) Values() url.Values {
	v := url.Values{}
	v.Set("q", f.Q)
	if f.IsBreeder != nil {
		v.Set("is_breeder", strconv.FormatBool(*f.IsBreeder))
	}
	v.Set("city", f.City)
	v.Set("voivodeship", f.Voivodeship)
	setPositive(v, "page", f.Page)
	setPositive(v, "limit", f.Limit)

	return v
}

func setPositive(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}
