package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// MsgSessionExpired — сообщение терминального 401 (refresh не удался или повтор снова 401).
	MsgSessionExpired = "session expired"
	// msgUnknown — запасное сообщение, если в теле ответа нет detail.
	msgUnknown = "unknown error"
)

var (
	// ErrSessionExpired сопоставляется (errors.Is) с терминальным 401.
	ErrSessionExpired = errors.New(MsgSessionExpired)
	// ErrTransport — сетевой сбой (DNS, отказ соединения, таймаут, отмена контекста).
	ErrTransport = errors.New("transport error")
	// ErrDecode — тело успешного ответа не разобрано.
	ErrDecode = errors.New("decode response")
)

// APIError — любой не-2xx исход, который клиент отдаёт вызывающему
// после исчерпания логики повтора.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Is позволяет писать errors.Is(err, ErrSessionExpired).
func (e *APIError) Is(target error) bool {
	return target == ErrSessionExpired &&
		e.StatusCode == http.StatusUnauthorized &&
		e.Message == MsgSessionExpired
}

// TransportError — запрос не дошёл до бэкенда или ответ не был дочитан.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// StatusCode возвращает HTTP-статус из *APIError в цепочке, иначе 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// IsUnauthorized — ошибка означает "пользователь разлогинен".
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNotFound — бэкенд ответил 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// detailMessage извлекает detail из тела ошибки.
// Бэкенд кладёт туда строку, а на ошибках валидации (422) — список {"msg": ...}.
func detailMessage(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return msgUnknown
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return msgUnknown
		}
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return msgUnknown
}
