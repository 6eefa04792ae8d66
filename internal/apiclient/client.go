// apiclient — аутентифицированный шлюз к REST API каталога собак.
//
// Три роли:
//   - CredentialStore (store.go, filestore.go, redisstore.go) — хранение пары токенов;
//   - Client (этот файл) — диспетчер запросов: Bearer-заголовок, JSON, разбор ответа,
//     типизированные ошибки;
//   - Refresher (refresh.go) — одна тихая переаутентификация на 401 и один повтор.
//
// Поток: вызов -> Client.Do (токен) -> сеть -> 401 -> Refresher (новая пара в хранилище)
// -> один повтор исходного запроса -> результат или *APIError/*TransportError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/dog-directory/internal/pkg/log"
)

const (
	contentTypeJSON = "application/json"
	// maxAttempts — исходный запрос и не более одного повтора после refresh.
	maxAttempts  = 2
	maxBodyBytes = 8 << 20
)

// CtxKey — тип ключей контекста пакета apiclient.
type CtxKey string

// CtxRequestID — ключ контекста с идентификатором запроса; уходит в X-Request-Id.
const CtxRequestID CtxKey = "request_id"

// WithRequestID кладёт идентификатор запроса в контекст.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxRequestID, id)
}

// Options — параметры клиента.
type Options struct {
	BaseURL   string
	Timeout   time.Duration // таймаут http.Client (если HTTPClient не задан) и refresh
	UserAgent string
	// HTTPClient — необязательный транспорт; по умолчанию &http.Client{Timeout: Timeout}.
	HTTPClient *http.Client
	Metrics    *Metrics
}

// Client — диспетчер запросов к бэкенду.
type Client struct {
	baseURL   string
	http      *http.Client
	store     CredentialStore
	refresher *Refresher
	userAgent string
	metrics   *Metrics
}

// New создаёт клиент поверх хранилища токенов.
func New(store CredentialStore, opts Options) (*Client, error) {
	const op = "apiclient.New"

	if store == nil {
		return nil, fmt.Errorf("%s: nil credential store", op)
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", op, opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      hc,
		store:     store,
		userAgent: opts.UserAgent,
		metrics:   opts.Metrics,
	}
	c.refresher = newRefresher(c, opts.Timeout)

	return c, nil
}

// Store — хранилище токенов клиента.
func (c *Client) Store() CredentialStore { return c.store }

// Refresher — координатор refresh клиента.
func (c *Client) Refresher() *Refresher { return c.refresher }

// CallOption — опции отдельного вызова.
type CallOption func(*callOptions)

type callOptions struct {
	noRefresh bool
}

// NoRefresh отключает refresh-поток для вызова: 401 возвращается как есть
// (detail бэкенда), хранилище не очищается. Нужен login/register, где 401 значит
// "неверные учётные данные", а не "сессия истекла".
func NoRefresh() CallOption {
	return func(o *callOptions) { o.noRefresh = true }
}

type response struct {
	status int
	body   []byte
}

// Do выполняет запрос method path с JSON-телом body и декодирует ответ в out.
//
//   - 2xx: out заполняется, если он не nil и тело не пустое; 204 — успех без результата;
//   - 401 на первой попытке: Refresher; при успехе ровно один повтор с новым токеном;
//   - 401 на повторе или неудачный refresh: хранилище очищается, *APIError{401, "session expired"};
//   - прочие не-2xx: *APIError{status, detail|"unknown error"}, без повторов;
//   - сетевые сбои: *TransportError, без повторов.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...CallOption) error {
	const op = "apiclient.Do"

	var co callOptions
	for _, o := range opts {
		o(&co)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
	}

	rid, _ := ctx.Value(CtxRequestID).(string)
	if rid == "" {
		rid = uuid.NewString()
	}

	lg := log.From(ctx).With(
		slog.String("request_id", rid),
		slog.String("method", method),
		slog.String("path", path),
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		pair, hasToken := c.store.Get(ctx)

		resp, err := c.send(ctx, lg, method, path, payload, rid, pair.AccessToken, hasToken)
		if err != nil {
			return err
		}

		if resp.status != http.StatusUnauthorized || co.noRefresh {
			return decode(op, resp, out)
		}

		if attempt == 1 && c.refresher.attempt(ctx, pair.AccessToken) {
			lg.Debug("api_retry_after_refresh")
			continue
		}

		break
	}

	c.expire(ctx, lg)

	return &APIError{StatusCode: http.StatusUnauthorized, Message: MsgSessionExpired}
}

// expire — терминальный 401: пара больше непригодна.
func (c *Client) expire(ctx context.Context, lg *slog.Logger) {
	if err := c.store.Clear(ctx); err != nil {
		lg.Warn("token_clear_failed", slog.String("err", err.Error()))
	}

	lg.Info("session_expired")
}

func (c *Client) send(ctx context.Context, lg *slog.Logger, method, path string, payload []byte, rid, token string, hasToken bool) (*response, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("X-Request-Id", rid)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if hasToken {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observeRequest(method, 0, time.Since(start))
		lg.Warn("api_transport_failed", slog.String("err", err.Error()))
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.observeRequest(method, 0, time.Since(start))
		lg.Warn("api_body_read_failed", slog.String("err", err.Error()))
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	dur := time.Since(start)
	c.metrics.observeRequest(method, resp.StatusCode, dur)
	lg.Debug("api",
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", dur),
	)

	return &response{status: resp.StatusCode, body: data}, nil
}

func decode(op string, resp *response, out any) error {
	if resp.status < 200 || resp.status > 299 {
		return &APIError{StatusCode: resp.status, Message: detailMessage(resp.body)}
	}

	if resp.status == http.StatusNoContent || out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrDecode, err)
	}

	return nil
}

// Get — GET path, ответ в out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post — POST path с телом body, ответ в out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put — PUT path с телом body, ответ в out.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Delete — DELETE path; обычно 204 и out == nil.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// IsTransport — ошибка сетевого уровня.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }
