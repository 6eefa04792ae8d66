package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const (
	oldAccess  = "old-access-token"
	oldRefresh = "old-refresh-token"
	newAccess  = "new-access-token"
	newRefresh = "new-refresh-token"
)

// backend — фейковый REST-бэкенд:
//   - /api/auth/refresh принимает только oldRefresh и выдаёт новую пару
//     (или refreshStatus, если он задан);
//   - /api/dogs/1 отвечает 200 только на Bearer newAccess (или на validAccess);
//   - остальные пути обслуживает extra.
type backend struct {
	refreshStatus int
	refreshDelay  time.Duration
	validAccess   string
	alwaysDeny    bool
	extra         http.HandlerFunc

	refreshCalls  atomic.Int32
	resourceCalls atomic.Int32

	mu    sync.Mutex
	auths []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case PathRefresh:
		b.refreshCalls.Add(1)
		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}

		if b.refreshStatus != 0 {
			w.WriteHeader(b.refreshStatus)
			_, _ = w.Write([]byte(`{"detail":"Nieprawidłowy token"}`))
			return
		}

		var in refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RefreshToken != oldRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"` + newAccess + `","refresh_token":"` + newRefresh + `","token_type":"bearer"}`))
	case "/api/dogs/1":
		b.resourceCalls.Add(1)

		auth := r.Header.Get("Authorization")
		b.mu.Lock()
		b.auths = append(b.auths, auth)
		b.mu.Unlock()

		valid := b.validAccess
		if valid == "" {
			valid = newAccess
		}

		if b.alwaysDeny || auth != "Bearer "+valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","name":"Burek"}`))
	default:
		if b.extra != nil {
			b.extra(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *backend) authHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.auths...)
}

type dog struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, h http.Handler, store CredentialStore) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(store, Options{BaseURL: srv.URL, Timeout: 5 * time.Second, UserAgent: "dogctl-test"})
	require.NoError(t, err)

	return c, srv
}

func storeWith(t *testing.T, access, refresh string) *MemoryStore {
	t.Helper()

	s := NewMemoryStore()
	require.NoError(t, s.Set(context.Background(), TokenPair{AccessToken: access, RefreshToken: refresh}))

	return s
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Options{BaseURL: "http://localhost:8000"})
	require.Error(t, err)

	_, err = New(NewMemoryStore(), Options{BaseURL: "not a url"})
	require.Error(t, err)

	c, err := New(NewMemoryStore(), Options{BaseURL: "http://localhost:8000/"})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", c.baseURL)
}

func TestDo_AttachesBearer_WhenTokenPresent(t *testing.T) {
	t.Parallel()

	b := &backend{validAccess: oldAccess}
	c, _ := newTestClient(t, b, storeWith(t, oldAccess, oldRefresh))

	var out dog
	require.NoError(t, c.Get(context.Background(), "/api/dogs/1", &out))
	require.Equal(t, "Burek", out.Name)
	require.Equal(t, []string{"Bearer " + oldAccess}, b.authHeaders())
	require.EqualValues(t, 0, b.refreshCalls.Load())
}

func TestDo_OmitsAuthorization_WhenNoToken(t *testing.T) {
	t.Parallel()

	var gotAuth, gotCT, gotRID string
	var seen bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, seen = r.Header["Authorization"]
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		gotRID = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`{"items":[],"total":0,"page":1,"limit":20,"pages":0}`))
	})
	c, _ := newTestClient(t, h, NewMemoryStore())

	require.NoError(t, c.Get(context.Background(), "/api/dogs/", nil))
	require.False(t, seen)
	require.Empty(t, gotAuth)
	require.Equal(t, "application/json", gotCT)
	require.NotEmpty(t, gotRID)
}

func TestDo_PropagatesRequestIDFromContext(t *testing.T) {
	t.Parallel()

	var gotRID string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, h, NewMemoryStore())

	ctx := WithRequestID(context.Background(), "rid-123")
	require.NoError(t, c.Delete(ctx, "/api/dogs/1", nil))
	require.Equal(t, "rid-123", gotRID)
}

func TestDo_EncodesBody(t *testing.T) {
	t.Parallel()

	var got map[string]any
	var method string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"42","name":"Reksio"}`))
	})
	c, _ := newTestClient(t, h, NewMemoryStore())

	var out dog
	err := c.Post(context.Background(), "/api/dogs/", map[string]any{"name": "Reksio", "breed_id": 7}, &out)
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "Reksio", got["name"])
	require.EqualValues(t, 7, got["breed_id"])
	require.Equal(t, "42", out.ID)
}

func TestDo_EncodeFailure_NoNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })
	c, _ := newTestClient(t, h, NewMemoryStore())

	err := c.Post(context.Background(), "/api/dogs/", map[string]any{"bad": make(chan int)}, nil)
	require.Error(t, err)
	require.EqualValues(t, 0, calls.Load())
}

func TestDo_NoContent_IsSuccess(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, h, storeWith(t, oldAccess, oldRefresh))

	out := dog{Name: "untouched"}
	require.NoError(t, c.Delete(context.Background(), "/api/dogs/1", &out))
	require.Equal(t, "untouched", out.Name)
}

func TestDo_ErrorStatuses_MapDetail_NoRetry(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"not_found_detail", http.StatusNotFound, `{"detail":"Pies nie istnieje"}`, "Pies nie istnieje"},
		{"forbidden_detail", http.StatusForbidden, `{"detail":"Brak uprawnień"}`, "Brak uprawnień"},
		{"validation_list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","email"],"msg":"invalid email"},{"msg":"too short"}]}`, "invalid email; too short"},
		{"no_detail", http.StatusInternalServerError, `{"error":"boom"}`, msgUnknown},
		{"not_json", http.StatusBadGateway, `<html>bad gateway</html>`, msgUnknown},
		{"empty_detail", http.StatusBadRequest, `{"detail":""}`, msgUnknown},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			store := storeWith(t, oldAccess, oldRefresh)
			c, _ := newTestClient(t, h, store)

			err := c.Get(context.Background(), "/api/dogs/1", nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tc.status, apiErr.StatusCode)
			require.Equal(t, tc.wantMsg, apiErr.Message)
			require.Equal(t, tc.status, StatusCode(err))
			require.EqualValues(t, 1, calls.Load())

			_, ok := store.Get(context.Background())
			require.True(t, ok, "non-401 errors must not touch tokens")
		})
	}
}

func TestDo_DecodeFailure(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	})
	c, _ := newTestClient(t, h, NewMemoryStore())

	var out dog
	err := c.Get(context.Background(), "/api/dogs/1", &out)
	require.ErrorIs(t, err, ErrDecode)
}

func TestDo_Unauthorized_RefreshSucceeds_RetriesOnce(t *testing.T) {
	t.Parallel()

	b := &backend{}
	store := storeWith(t, oldAccess, oldRefresh)
	c, _ := newTestClient(t, b, store)

	var out dog
	require.NoError(t, c.Get(context.Background(), "/api/dogs/1", &out))

	// Результат как у запроса, который никогда не падал.
	require.Equal(t, dog{ID: "1", Name: "Burek"}, out)
	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.EqualValues(t, 2, b.resourceCalls.Load())
	require.Equal(t, []string{"Bearer " + oldAccess, "Bearer " + newAccess}, b.authHeaders())

	pair, ok := store.Get(context.Background())
	require.True(t, ok)
	require.Equal(t, TokenPair{AccessToken: newAccess, RefreshToken: newRefresh}, pair)
}

func TestDo_Unauthorized_RefreshFails_ClearsStore(t *testing.T) {
	t.Parallel()

	b := &backend{refreshStatus: http.StatusUnauthorized}
	store := storeWith(t, oldAccess, oldRefresh)
	c, _ := newTestClient(t, b, store)

	err := c.Get(context.Background(), "/api/dogs/1", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, MsgSessionExpired, apiErr.Message)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.True(t, IsUnauthorized(err))

	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.EqualValues(t, 1, b.resourceCalls.Load())

	_, ok := store.Get(context.Background())
	require.False(t, ok)
}

func TestDo_Unauthorized_OnRetry_IsTerminal(t *testing.T) {
	t.Parallel()

	b := &backend{alwaysDeny: true}
	store := storeWith(t, oldAccess, oldRefresh)
	c, _ := newTestClient(t, b, store)

	err := c.Get(context.Background(), "/api/dogs/1", nil)
	require.ErrorIs(t, err, ErrSessionExpired)

	// Не более одного повтора и одного refresh.
	require.EqualValues(t, 2, b.resourceCalls.Load())
	require.EqualValues(t, 1, b.refreshCalls.Load())

	_, ok := store.Get(context.Background())
	require.False(t, ok)
}

func TestDo_Unauthorized_WithoutTokens(t *testing.T) {
	t.Parallel()

	b := &backend{}
	c, _ := newTestClient(t, b, NewMemoryStore())

	err := c.Get(context.Background(), "/api/dogs/1", nil)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.EqualValues(t, 0, b.refreshCalls.Load())
	require.EqualValues(t, 1, b.resourceCalls.Load())
}

func TestDo_NoRefresh_SurfacesBackendDetail(t *testing.T) {
	t.Parallel()

	b := &backend{extra: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Nieprawidłowy email lub hasło"}`))
	}}
	store := storeWith(t, oldAccess, oldRefresh)
	c, _ := newTestClient(t, b, store)

	err := c.Post(context.Background(), PathLogin, map[string]string{"email": "a@b.pl", "password": "x"}, nil, NoRefresh())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Nieprawidłowy email lub hasło", apiErr.Message)
	require.NotErrorIs(t, err, ErrSessionExpired)
	require.EqualValues(t, 0, b.refreshCalls.Load())

	_, ok := store.Get(context.Background())
	require.True(t, ok)
}

func TestDo_TransportError_IsDistinct_NoRetry(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	store := storeWith(t, oldAccess, oldRefresh)
	c, err := New(store, Options{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)

	err = c.Get(context.Background(), "/api/dogs/1", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTransport)
	require.True(t, IsTransport(err))
	require.Zero(t, StatusCode(err))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.MethodGet, te.Method)

	_, ok := store.Get(context.Background())
	require.True(t, ok)
}

func TestDo_ContextCanceled_IsTransport(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c, _ := newTestClient(t, h, NewMemoryStore())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, "/api/dogs/1", nil)
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_ConcurrentUnauthorized_SingleRefresh(t *testing.T) {
	t.Parallel()

	b := &backend{refreshDelay: 50 * time.Millisecond}
	store := storeWith(t, oldAccess, oldRefresh)
	c, _ := newTestClient(t, b, store)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out dog
			errs <- c.Get(context.Background(), "/api/dogs/1", &out)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.False(t, c.Refresher().Refreshing())

	pair, _ := store.Get(context.Background())
	require.Equal(t, newAccess, pair.AccessToken)
}

func TestDo_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	c, err := New(storeWith(t, oldAccess, oldRefresh), Options{BaseURL: srv.URL, Timeout: time.Second, Metrics: m})
	require.NoError(t, err)

	require.NoError(t, c.Get(context.Background(), "/api/dogs/1", nil))

	require.EqualValues(t, 1, testutil.ToFloat64(m.refresh.WithLabelValues(refreshOK)))
	require.EqualValues(t, 1, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "401")))
	require.EqualValues(t, 1, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "200")))
	require.EqualValues(t, 1, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "200")))
}

func TestErrors_Helpers(t *testing.T) {
	t.Parallel()

	notFound := &APIError{StatusCode: http.StatusNotFound, Message: "x"}
	require.True(t, IsNotFound(notFound))
	require.False(t, IsUnauthorized(notFound))
	require.False(t, errors.Is(notFound, ErrSessionExpired))

	plain401 := &APIError{StatusCode: http.StatusUnauthorized, Message: "bad creds"}
	require.True(t, IsUnauthorized(plain401))
	require.False(t, errors.Is(plain401, ErrSessionExpired))

	require.Zero(t, StatusCode(errors.New("other")))
}
