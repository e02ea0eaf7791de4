package auth

// RegisterRequest captures the payload required for creating an account.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,max=50"`
	Password  string `json:"password" validate:"required,min=7,max=128"`
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=50"`
}

// LoginRequest carries the credentials from the login form. The identifier is
// matched against both email and username.
type LoginRequest struct {
	Identifier string `form:"username" validate:"required"`
	Password   string `form:"password" validate:"required"`
}

// TokenResponse is the bearer-token payload produced by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterResponse confirms account creation; no token is issued here, login
// is a separate step.
type RegisterResponse struct {
	Message string `json:"message"`
}
