// session — сессия пользователя поверх аутентифицированного клиента:
// восстановление при старте, login/register/logout, текущий пользователь.
//
// Manager передаётся явно (без глобального состояния); хранилище токенов
// остаётся единственным источником истины о паре.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/dog-directory/internal/apiclient"
	"github.com/pribylovaa/dog-directory/internal/models"
	"github.com/pribylovaa/dog-directory/internal/pkg/log"
	"github.com/pribylovaa/dog-directory/internal/pkg/redact"
)

var (
	ErrIncompleteTokens = errors.New("incomplete token response")
	ErrNoToken          = errors.New("no access token")
)

// Client — часть *apiclient.Client, нужная сессии.
type Client interface {
	Get(ctx context.Context, path string, out any, opts ...apiclient.CallOption) error
	Post(ctx context.Context, path string, body, out any, opts ...apiclient.CallOption) error
	Store() apiclient.CredentialStore
}

// Manager — сессия одного пользователя.
type Manager struct {
	client Client

	mu   sync.RWMutex
	user *models.User
}

func New(client Client) *Manager {
	return &Manager{client: client}
}

// Restore восстанавливает сессию из хранилища.
// Без access-токена — ни одного сетевого вызова. Любая ошибка /me очищает
// хранилище и возвращает неаутентифицированное состояние; сама ошибка не всплывает.
func (m *Manager) Restore(ctx context.Context) (*models.User, bool) {
	lg := log.From(ctx)
	store := m.client.Store()

	pair, ok := store.Get(ctx)
	if !ok || pair.AccessToken == "" {
		m.setUser(nil)
		return nil, false
	}

	var me models.User
	if err := m.client.Get(ctx, apiclient.PathMe, &me); err != nil {
		lg.Debug("session_restore_failed", slog.String("err", err.Error()))

		if cerr := store.Clear(ctx); cerr != nil {
			lg.Warn("token_clear_failed", slog.String("err", cerr.Error()))
		}

		m.setUser(nil)
		return nil, false
	}

	m.setUser(&me)
	lg.Debug("session_restored", slog.String("user_id", me.ID.String()))

	return &me, true
}

// Login — вход по email и паролю.
func (m *Manager) Login(ctx context.Context, in models.LoginRequest) (*models.User, error) {
	const op = "session.Login"

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := m.authenticate(ctx, apiclient.PathLogin, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("login_succeeded", slog.String("email", redact.Email(in.Email)))

	return user, nil
}

// Register — регистрация и вход.
func (m *Manager) Register(ctx context.Context, in models.RegisterRequest) (*models.User, error) {
	const op = "session.Register"

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := m.authenticate(ctx, apiclient.PathRegister, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("register_succeeded", slog.String("email", redact.Email(in.Email)))

	return user, nil
}

// authenticate — POST учётных данных, сохранение пары, GET /me.
// 401 здесь означает неверные данные, поэтому refresh отключён.
func (m *Manager) authenticate(ctx context.Context, path string, body any) (*models.User, error) {
	var tokens apiclient.TokenResponse
	if err := m.client.Post(ctx, path, body, &tokens, apiclient.NoRefresh()); err != nil {
		return nil, err
	}

	pair := tokens.Pair()
	if !pair.Complete() {
		return nil, ErrIncompleteTokens
	}

	if err := m.client.Store().Set(ctx, pair); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}

	var me models.User
	if err := m.client.Get(ctx, apiclient.PathMe, &me); err != nil {
		return nil, err
	}

	m.setUser(&me)

	return &me, nil
}

// Logout очищает хранилище и текущего пользователя. Без сетевых вызовов.
func (m *Manager) Logout(ctx context.Context) error {
	const op = "session.Logout"

	m.setUser(nil)

	if err := m.client.Store().Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("logout")

	return nil
}

// Current — текущий пользователь или nil.
func (m *Manager) Current() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.user
}

func (m *Manager) Authenticated() bool { return m.Current() != nil }

func (m *Manager) setUser(u *models.User) {
	m.mu.Lock()
	m.user = u
	m.mu.Unlock()
}

// TokenInfo — сведения из claims access-токена (подпись не проверяется).
type TokenInfo struct {
	Subject   string    `json:"subject,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Expired   bool      `json:"expired"`
	TokenTail string    `json:"token"`
}

// Inspect разбирает хранимый access-токен без проверки подписи.
// Только для отображения: решения об авторизации принимает бэкенд.
func (m *Manager) Inspect(ctx context.Context) (TokenInfo, error) {
	const op = "session.Inspect"

	pair, ok := m.client.Store().Get(ctx)
	if !ok || pair.AccessToken == "" {
		return TokenInfo{}, fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(pair.AccessToken, &claims); err != nil {
		return TokenInfo{}, fmt.Errorf("%s: %w", op, err)
	}

	info := TokenInfo{
		Subject:   claims.Subject,
		TokenTail: redact.TokenTail(pair.AccessToken),
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		info.Expired = !info.ExpiresAt.After(time.Now())
	}

	return info, nil
}
