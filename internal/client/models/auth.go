package models

// SignInForm is the sign-in request body.
type SignInForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpForm is the sign-up request body.
type SignUpForm struct {
	FullName        string `json:"fullName" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// AuthResult is the payload of a successful sign-in or sign-up.
type AuthResult struct {
	Token string `json:"token"`
	ID    string `json:"id"`
}
