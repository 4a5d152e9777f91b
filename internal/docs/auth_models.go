package docs

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" example:"Ada Lovelace"`
	Email    string `json:"email" example:"ada@example.com"`
	Password string `json:"password" example:"correct-horse-battery"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" example:"ada@example.com"`
	Password string `json:"password" example:"correct-horse-battery"`
}

// UserProfile is the public view of an account
type UserProfile struct {
	ID    int64  `json:"id" example:"42"`
	Name  string `json:"name" example:"Ada Lovelace"`
	Email string `json:"email" example:"ada@example.com"`
	Role  string `json:"role" example:"uploader" enums:"admin,uploader,member"`
}

// TokenData is returned by register, login and the Google callback
type TokenData struct {
	Token     string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt int64       `json:"expiresAt" example:"1768559400"`
	User      UserProfile `json:"user"`
}

// AuthResponse wraps TokenData in the envelope
type AuthResponse struct {
	Success bool      `json:"success" example:"true"`
	Message string    `json:"message,omitempty" example:"Login successful"`
	Data    TokenData `json:"data"`
}

// MeResponse wraps the current user
type MeResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    UserProfile `json:"data"`
}
