package authn

// LoginRequest represents the input for operator login.
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=1,max=64"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}

// TokenResponse represents the authentication token returned after login.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// ProfileResponse represents the operator profile in the console's shape.
type ProfileResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	LocationID string `json:"location_id"`
}
