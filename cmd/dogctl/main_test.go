package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/dog-directory/internal/apiclient"
	"github.com/pribylovaa/dog-directory/internal/models"
)

const (
	goodAccess  = "good-access"
	goodRefresh = "good-refresh"
	dogID       = "8f2a3c1e-0d4b-4a5e-9c7f-1b2d3e4f5a6b"
	userJSON    = `{"id":"1c9e6d2a-7b3f-4e8a-a1d5-0f2e3d4c5b6a","email":"jan@example.pl","first_name":"Jan","last_name":"Kowalski","is_breeder":false,"is_active":true,"created_at":"2024-01-01T00:00:00Z"}`
)

// backend — фейковый REST-бэкенд: логин jan@example.pl/secret123,
// защищённые ресурсы принимают только goodAccess, refresh всегда отклоняется.
type backend struct {
	refreshCalls atomic.Int32
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	authorized := r.Header.Get("Authorization") == "Bearer "+goodAccess

	switch r.URL.Path {
	case apiclient.PathLogin:
		var in models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Nieprawidłowy email lub hasło"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"` + goodAccess + `","refresh_token":"` + goodRefresh + `","token_type":"bearer"}`))
	case apiclient.PathRefresh:
		b.refreshCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	case apiclient.PathMe, "/api/dogs/" + dogID:
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		if r.URL.Path == apiclient.PathMe {
			_, _ = w.Write([]byte(userJSON))
			return
		}
		_, _ = w.Write([]byte(`{"id":"` + dogID + `","name":"Burek","sex":"male","date_of_birth":"2020-05-01","owner_id":"1c9e6d2a-7b3f-4e8a-a1d5-0f2e3d4c5b6a"}`))
	case "/api/breeds/groups":
		_, _ = w.Write([]byte(`[{"fci_group":1,"breed_count":40}]`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	}
}

type env struct {
	configPath string
	tokensPath string
	backend    *backend
}

func newEnv(t *testing.T) *env {
	t.Helper()

	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	tokens := filepath.Join(dir, "tokens.json")
	cfg := "env: local\napi:\n  base_url: \"" + srv.URL + "\"\n  timeout: 2s\nstore:\n  driver: file\n  path: \"" + tokens + "\"\n"

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	return &env{configPath: cfgPath, tokensPath: tokens, backend: b}
}

func (e *env) run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	args = append([]string{"--config", e.configPath}, args...)
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func TestLogin_Whoami_Logout(t *testing.T) {
	e := newEnv(t)

	code, out, errOut := e.run(t, "secret123\n", "login", "--email", "jan@example.pl", "--password-stdin")
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, `"first_name": "Jan"`)

	data, err := os.ReadFile(e.tokensPath)
	require.NoError(t, err)
	require.Contains(t, string(data), goodAccess)

	// Сессия переживает перезапуск.
	code, out, errOut = e.run(t, "", "whoami")
	require.Equal(t, 0, code, errOut)

	var user models.User
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	require.Equal(t, "jan@example.pl", user.Email)

	code, out, _ = e.run(t, "", "logout")
	require.Equal(t, 0, code)
	require.Equal(t, "logged out\n", out)

	_, err = os.Stat(e.tokensPath)
	require.True(t, errors.Is(err, os.ErrNotExist))

	code, _, errOut = e.run(t, "", "whoami")
	require.Equal(t, 1, code)
	require.Equal(t, "error: not logged in\n", errOut)
}

func TestLogin_BadPassword_ShowsBackendDetail(t *testing.T) {
	e := newEnv(t)

	code, out, errOut := e.run(t, "", "login", "--email", "jan@example.pl", "--password", "wrong-password")
	require.Equal(t, 1, code)
	require.Empty(t, out)
	require.Equal(t, "error: Nieprawidłowy email lub hasło (HTTP 401)\n", errOut)
	require.Zero(t, e.backend.refreshCalls.Load())
}

func TestExpiredSession_ClearsStoreAndAsksToLogIn(t *testing.T) {
	e := newEnv(t)

	store, err := apiclient.NewFileStore(e.tokensPath)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), apiclient.TokenPair{AccessToken: "stale", RefreshToken: "stale-refresh"}))

	code, _, errOut := e.run(t, "", "dogs", "get", dogID)
	require.Equal(t, 1, code)
	require.Equal(t, msgSessionExpired+"\n", errOut)
	require.EqualValues(t, 1, e.backend.refreshCalls.Load())

	_, ok := store.Get(context.Background())
	require.False(t, ok)
}

func TestBreedsGroups_IndentedJSON(t *testing.T) {
	e := newEnv(t)

	code, out, errOut := e.run(t, "", "breeds", "groups")
	require.Equal(t, 0, code, errOut)
	require.Equal(t, "[\n  {\n    \"fci_group\": 1,\n    \"breed_count\": 40\n  }\n]\n", out)
}

func TestInvalidArguments(t *testing.T) {
	e := newEnv(t)

	code, _, errOut := e.run(t, "", "dogs", "get", "not-a-uuid")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "invalid input")

	code, _, errOut = e.run(t, "", "dogs", "pedigree", dogID, "--generations", "7")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "generations must be between 1 and 5")

	code, _, errOut = e.run(t, "", "dogs", "list", "--available", "maybe")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "--available must be true or false")

	code, _, errOut = e.run(t, "", "me", "update")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "nothing to update")
}

func TestMeAvatar_MediaDisabled(t *testing.T) {
	e := newEnv(t)

	code, _, errOut := e.run(t, "secret123\n", "login", "--email", "jan@example.pl", "--password-stdin")
	require.Equal(t, 0, code, errOut)

	img := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(img, []byte{0x89, 'P', 'N', 'G'}, 0o600))

	code, _, errOut = e.run(t, "", "me", "avatar", img)
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "media upload is disabled")
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	require.Equal(t, msgSessionExpired,
		formatError(&apiclient.APIError{StatusCode: 401, Message: apiclient.MsgSessionExpired}))
	require.Equal(t, "error: Pies nie znaleziony (HTTP 404)",
		formatError(&apiclient.APIError{StatusCode: 404, Message: "Pies nie znaleziony"}))
	require.Contains(t,
		formatError(&apiclient.TransportError{Method: "GET", Path: "/api/dogs/", Err: errors.New("connection refused")}),
		"cannot reach the API")
	require.Equal(t, "error: boom", formatError(errors.New("boom")))
}
