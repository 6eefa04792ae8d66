// directory — типизированные ресурсы каталога (собаки, пользователи, породы)
// поверх аутентифицированного клиента и кэша запросов.
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/dog-directory/internal/apiclient"
	"github.com/pribylovaa/dog-directory/internal/cache"
)

// API — то, что нужно ресурсам от диспетчера запросов (*apiclient.Client).
type API interface {
	Get(ctx context.Context, path string, out any, opts ...apiclient.CallOption) error
	Post(ctx context.Context, path string, body, out any, opts ...apiclient.CallOption) error
	Put(ctx context.Context, path string, body, out any, opts ...apiclient.CallOption) error
	Delete(ctx context.Context, path string, out any, opts ...apiclient.CallOption) error
}

// Префиксы ключей кэша.
const (
	prefixDogs   = "dogs"
	prefixUsers  = "users"
	prefixBreeds = "breeds"
)

const (
	DefaultBreedsTTL = 10 * time.Minute

	minGenerations = 1
	maxGenerations = 5
)

var ErrNothingToUpdate = errors.New("nothing to update")

// Options — время "свежести" данных.
// DataTTL — для собак и пользователей (0 — всегда перезапрашивать),
// BreedsTTL — для справочника пород.
type Options struct {
	DataTTL   time.Duration
	BreedsTTL time.Duration
}

// Service — точка входа к ресурсам каталога.
type Service struct {
	api   API
	cache *cache.Cache
	opts  Options

	Dogs   *Dogs
	Users  *Users
	Breeds *Breeds
}

// New собирает ресурсы. c может быть nil — тогда кэширование отключено.
func New(api API, c *cache.Cache, opts Options) *Service {
	if opts.BreedsTTL < 0 {
		opts.BreedsTTL = 0
	}

	s := &Service{api: api, cache: c, opts: opts}
	s.Dogs = &Dogs{s: s}
	s.Users = &Users{s: s}
	s.Breeds = &Breeds{s: s}

	return s
}

// Cache — кэш сервиса (может быть nil).
func (s *Service) Cache() *cache.Cache { return s.cache }
