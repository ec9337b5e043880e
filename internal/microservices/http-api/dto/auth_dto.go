package dto

// Data Transfer Objects for token authentication

// LoginRequest: payload for POST /auth/token/login/
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse: issued token
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}
