package dto

// Data Transfer Objects for the signup / token-exchange flow

// SignupRequest: payload for POST /v1/auth/signup
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Username string `json:"username" binding:"required,max=150"`
}

// SignupResponse echoes the accepted pair; the confirmation code itself only
// ever travels by email.
type SignupResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// TokenRequest: payload for POST /v1/auth/token
type TokenRequest struct {
	Username         string `json:"username" binding:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=255"`
}
