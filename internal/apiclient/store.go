package apiclient

import (
	"context"
	"errors"
	"sync"
)

//go:generate mockgen -destination=mocks/store_mock.go -package=mocks github.com/pribylovaa/dog-directory/internal/apiclient CredentialStore

// ErrPartialPair — попытка сохранить пару, в которой отсутствует один из токенов.
var ErrPartialPair = errors.New("partial token pair")

// TokenPair — пара access/refresh токенов.
// Инвариант: в хранилище либо оба токена, либо ни одного.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IsZero сообщает, что пара пустая.
func (p TokenPair) IsZero() bool { return p.AccessToken == "" && p.RefreshToken == "" }

// Complete сообщает, что присутствуют оба токена.
func (p TokenPair) Complete() bool { return p.AccessToken != "" && p.RefreshToken != "" }

// CredentialStore — единственный владелец сохранённой пары токенов.
//
// Контракт:
//   - Get никогда не возвращает ошибку: сбой чтения трактуется как отсутствие пары;
//   - Set перезаписывает оба значения разом, частичная пара отклоняется (ErrPartialPair);
//   - Clear удаляет оба значения и идемпотентен.
type CredentialStore interface {
	Get(ctx context.Context) (TokenPair, bool)
	Set(ctx context.Context, pair TokenPair) error
	Clear(ctx context.Context) error
}

// MemoryStore — хранилище в памяти процесса.
type MemoryStore struct {
	mu   sync.RWMutex
	pair TokenPair
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pair, s.pair.Complete()
}

func (s *MemoryStore) Set(_ context.Context, pair TokenPair) error {
	if !pair.Complete() {
		return ErrPartialPair
	}

	s.mu.Lock()
	s.pair = pair
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.pair = TokenPair{}
	s.mu.Unlock()

	return nil
}

var _ CredentialStore = (*MemoryStore)(nil)
