package dto

type RegisterRequestDTO struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type RegisterResponseDTO struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}

// LoginRequestDTO accepts either a username or an email as login.
type LoginRequestDTO struct {
	Login    string `json:"login" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

type LoginResponseDTO struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}
