package apiclient

// Пути auth-эндпойнтов бэкенда.
const (
	PathLogin    = "/api/auth/login"
	PathRegister = "/api/auth/register"
	PathRefresh  = "/api/auth/refresh"
	PathMe       = "/api/auth/me"
)

// TokenResponse — ответ login/register/refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Pair возвращает пару токенов из ответа.
func (t TokenResponse) Pair() TokenPair {
	return TokenPair{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
