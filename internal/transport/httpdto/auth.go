package httpdto

// LoginRequest is used for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned after a successful sign-in.
type LoginResponse struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	AccessToken string `json:"accessToken"`
	Guest       bool   `json:"guest,omitempty"`
}

// RegisterRequest is used for POST /auth/register
type RegisterRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// RegisterResponse is returned after successful registration.
type RegisterResponse struct {
	UserID string `json:"userId"`
}
