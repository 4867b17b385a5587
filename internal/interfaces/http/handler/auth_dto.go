package handler

// RegisterRequest is the body of POST /auth/register
// @Description Account registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100" example:"Ravi Patil"`
	Email    string `json:"email" binding:"required,email" example:"ravi@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"secret123"`
}

// LoginRequest is the body of POST /auth/login
// @Description Login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ravi@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"ravi@example.com"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password/{token}
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6" example:"newsecret"`
}
