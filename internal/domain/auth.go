package domain

// ============================================================
// Auth — Request / Response types and the authenticated identity
// ============================================================

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Login string `json:"login"`
	Senha string `json:"senha"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// User is an account in the user directory. ID matches the provider
// record id for provider accounts, so self-service operations can load
// the caller's own record from the authenticated identity.
type User struct {
	ID        string   `json:"id"`
	Login     string   `json:"login"`
	SenhaHash string   `json:"-"`
	Roles     []string `json:"roles"`
}
