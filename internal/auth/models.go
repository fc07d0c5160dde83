package auth

// DevAuthRequest is the body of POST /v1/auth/dev; user_id is optional.
type DevAuthRequest struct {
	UserID string `json:"user_id"`
}

// DevAuthResponse is returned by dev sign-in.
type DevAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
}

// ErrorResponse формат ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
