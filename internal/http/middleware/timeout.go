package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout ограничивает обработку запроса сроком d. Если у запроса уже есть
// более ранний deadline, действует он. Значение <=0 делает мидлвар no-op.
//
// Срок ограничивает ожидание ответа клиентом; общая загрузка в кэше каталога
// живёт по своему LoadTimeout и не отменяется вместе с запросом.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
