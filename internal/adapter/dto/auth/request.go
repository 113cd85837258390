package auth

// SignInRequest represents a password sign-in request
type SignInRequest struct {
	Identity string `json:"identity" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignUpRequest represents a registration request. The confirmation must
// match the password before the request ever reaches the gateway.
type SignUpRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Name            string `json:"name" validate:"omitempty,max=255"`
}
