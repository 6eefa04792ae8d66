package apiclient

import (
	"net/url"
	"strings"
)

// BuildQuery превращает параметры в строку запроса "?k=v&...",
// пропуская пустые значения. Без параметров возвращает "".
// Ключи сортируются (url.Values.Encode), так что строка детерминирована
// и пригодна как часть ключа кэша.
func BuildQuery(params url.Values) string {
	clean := make(url.Values, len(params))
	for k, vs := range params {
		for _, v := range vs {
			if strings.TrimSpace(v) == "" {
				continue
			}
			clean.Add(k, v)
		}
	}

	if len(clean) == 0 {
		return ""
	}

	return "?" + clean.Encode()
}
