// errors стандартизирует ответы об ошибках HTTP-слоя directory-gateway.
// На вход он принимает ошибку апстрима (REST-бэкенда каталога) или локальной
// валидации, а на выход даёт:
//   - корректный HTTP-статус;
//   - короткий стабильный code и message без утечки внутренних деталей.
//
// Статус апстрима (*apiclient.APIError) отдаётся как есть вместе с его detail.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/pribylovaa/dog-directory/internal/apiclient"
	"github.com/pribylovaa/dog-directory/internal/models"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Порядок проверок:
//   - nil — программная ошибка вызова: 500/internal;
//   - models.ErrInvalidInput — 400/invalid_argument с текстом валидации;
//   - дедлайн — 504, отмена клиентом — 499 (раньше транспорта: транспорт их оборачивает);
//   - *apiclient.APIError — тот же статус, code по статусу, message = detail апстрима;
//   - apiclient.ErrTransport — 502/bad_gateway;
//   - прочее — 500/internal.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return internal()
	}

	if stderrors.Is(err, models.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorResponse{
			Error: APIError{Code: "invalid_argument", Message: validationMessage(err)},
		}
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrorResponse{
			Error: APIError{Code: "deadline_exceeded", Message: "deadline exceeded"},
		}
	}

	if stderrors.Is(err, context.Canceled) {
		return StatusClientClosedRequest, ErrorResponse{
			Error: APIError{Code: "canceled", Message: "canceled"},
		}
	}

	var upstream *apiclient.APIError
	if stderrors.As(err, &upstream) {
		status := upstream.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}

		return status, ErrorResponse{
			Error: APIError{Code: codeFromStatus(status), Message: upstream.Message},
		}
	}

	if apiclient.IsTransport(err) {
		return http.StatusBadGateway, ErrorResponse{
			Error: APIError{Code: "bad_gateway", Message: "upstream unavailable"},
		}
	}

	return internal()
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func internal() (int, ErrorResponse) {
	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: "internal error",
		},
	}
}

// codeFromStatus — HTTP-статус апстрима -> FE-код:
//   - 400, 422 -> invalid_argument
//   - 401 -> unauthenticated
//   - 403 -> permission_denied
//   - 404 -> not_found
//   - 409 -> already_exists
//   - 429 -> resource_exhausted
//   - 503 -> unavailable
//   - прочие 5xx -> upstream_error
func codeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "already_exists"
	case http.StatusTooManyRequests:
		return "resource_exhausted"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}

	if status >= 500 {
		return "upstream_error"
	}

	return "failed_precondition"
}

// validationMessage — текст после "invalid input: " без префиксов операций.
func validationMessage(err error) string {
	msg := err.Error()
	marker := models.ErrInvalidInput.Error() + ": "

	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}

	return "invalid argument"
}
