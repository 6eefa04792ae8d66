package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/dog-directory/internal/pkg/log"
	"github.com/pribylovaa/dog-directory/internal/pkg/redact"
)

// Состояния координатора.
const (
	stateIdle int32 = iota
	stateRefreshing
)

const refreshFlight = "refresh"

// Refresher — координатор тихой переаутентификации по refresh-токену.
//
// Одновременные 401 от разных вызывающих сводятся к одному запросу
// /api/auth/refresh (singleflight); все ожидающие получают один и тот же исход.
// Сам refresh выполняется на контексте, отвязанном от отмены конкретного вызывающего,
// и ограничен таймаутом клиента.
type Refresher struct {
	baseURL   string
	http      *http.Client
	store     CredentialStore
	userAgent string
	timeout   time.Duration
	metrics   *Metrics

	group singleflight.Group
	state atomic.Int32
}

func newRefresher(c *Client, timeout time.Duration) *Refresher {
	return &Refresher{
		baseURL:   c.baseURL,
		http:      c.http,
		store:     c.store,
		userAgent: c.userAgent,
		timeout:   timeout,
		metrics:   c.metrics,
	}
}

// Refreshing сообщает, идёт ли сейчас refresh.
func (r *Refresher) Refreshing() bool { return r.state.Load() == stateRefreshing }

// Attempt пытается получить новую пару токенов.
//
//   - нет refresh-токена — false без сетевого вызова;
//   - 2xx с полной парой — пара сохраняется, true;
//   - любой сбой (не-2xx, сеть, битое тело, ошибка записи) — false, хранилище не меняется.
func (r *Refresher) Attempt(ctx context.Context) bool {
	return r.attempt(ctx, "")
}

// attempt — вариант для диспетчера: stale — access-токен, на котором получен 401.
// Если в хранилище уже другой access-токен, пару обновил кто-то другой,
// и достаточно повторить запрос.
func (r *Refresher) attempt(ctx context.Context, stale string) bool {
	if stale != "" {
		if cur, ok := r.store.Get(ctx); ok && cur.AccessToken != stale {
			r.metrics.observeRefresh(refreshShared)
			return true
		}
	}

	v, _, _ := r.group.Do(refreshFlight, func() (any, error) {
		r.state.Store(stateRefreshing)
		defer r.state.Store(stateIdle)

		rctx := context.WithoutCancel(ctx)
		if r.timeout > 0 {
			var cancel context.CancelFunc
			rctx, cancel = context.WithTimeout(rctx, r.timeout)
			defer cancel()
		}

		return r.refresh(rctx), nil
	})

	ok, _ := v.(bool)
	return ok
}

func (r *Refresher) refresh(ctx context.Context) bool {
	const op = "apiclient.Refresher.refresh"

	lg := log.From(ctx).With(slog.String("op", op))

	pair, ok := r.store.Get(ctx)
	if !ok || pair.RefreshToken == "" {
		lg.Debug("refresh_skipped_no_token")
		r.metrics.observeRefresh(refreshSkipped)
		return false
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: pair.RefreshToken})
	if err != nil {
		lg.Error("refresh_encode_failed", slog.String("err", err.Error()))
		r.metrics.observeRefresh(refreshFailed)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+PathRefresh, bytes.NewReader(payload))
	if err != nil {
		lg.Error("refresh_request_build_failed", slog.String("err", err.Error()))
		r.metrics.observeRefresh(refreshFailed)
		return false
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	start := time.Now()
	resp, err := r.http.Do(req)
	if err != nil {
		r.metrics.observeRequest(http.MethodPost, 0, time.Since(start))
		r.metrics.observeRefresh(refreshFailed)
		lg.Warn("refresh_transport_failed", slog.String("err", err.Error()))
		return false
	}
	defer resp.Body.Close()

	r.metrics.observeRequest(http.MethodPost, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		r.metrics.observeRefresh(refreshFailed)
		lg.Info("refresh_rejected", slog.Int("status", resp.StatusCode))
		return false
	}

	var tr TokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&tr); err != nil {
		r.metrics.observeRefresh(refreshFailed)
		lg.Warn("refresh_decode_failed", slog.String("err", err.Error()))
		return false
	}

	next := tr.Pair()
	if !next.Complete() {
		r.metrics.observeRefresh(refreshFailed)
		lg.Warn("refresh_partial_pair")
		return false
	}

	if err := r.store.Set(ctx, next); err != nil {
		r.metrics.observeRefresh(refreshFailed)
		lg.Error("refresh_store_failed", slog.String("err", err.Error()))
		return false
	}

	r.metrics.observeRefresh(refreshOK)
	lg.Info("token_refreshed", slog.String("access", redact.TokenTail(next.AccessToken)))

	return true
}
