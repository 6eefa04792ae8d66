// handlers — REST-обработчики directory-gateway: только чтение каталога
// через directory.Service; ошибки пишутся через apierrors.WriteError.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/dog-directory/internal/directory"
	"github.com/pribylovaa/dog-directory/internal/models"
)

// Handlers агрегирует зависимости.
type Handlers struct {
	Directory *directory.Service
}

func New(d *directory.Service) *Handlers {
	return &Handlers{Directory: d}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// invalidArgument — локальная ошибка разбора запроса.
func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, invalidArgument("%s must be a valid uuid", name)
	}

	return id, nil
}

// queryInt — целый параметр запроса; отсутствует — 0.
func queryInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalidArgument("%s must be an integer", key)
	}

	return n, nil
}

// queryBool — логический параметр запроса; отсутствует — nil.
func queryBool(q url.Values, key string) (*bool, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, invalidArgument("%s must be a boolean", key)
	}

	return &b, nil
}

// pageParams — page и limit, общие для всех списков.
func pageParams(q url.Values) (page, limit int, err error) {
	if page, err = queryInt(q, "page"); err != nil {
		return 0, 0, err
	}

	if limit, err = queryInt(q, "limit"); err != nil {
		return 0, 0, err
	}

	return page, limit, nil
}
