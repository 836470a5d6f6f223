package account

const (
	msgRegistered  = "User registered successfully"
	msgLoggedIn    = "Logged in successfully"
	msgResetSent   = "A password reset code has been sent to your email"
	msgInvalidBody = "Invalid request body"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
