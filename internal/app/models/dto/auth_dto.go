package dto

import "time"

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required" example:"jane_doe"`
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"s3cretpass"`
	Role     string `json:"role" binding:"required,oneof=admin instructor student" example:"student"`
}

// LoginRequest is the payload for username/password login
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"jane_doe"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// RefreshTokenRequest carries the refresh token to rotate
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int    `json:"expiresIn" example:"1800"`
	RefreshExpiresIn int    `json:"refreshExpiresIn" example:"604800"`
}

// UserResponse is the public view of a user account
type UserResponse struct {
	ID        int64     `json:"id" example:"1"`
	Username  string    `json:"username" example:"jane_doe"`
	Email     string    `json:"email" example:"jane@example.com"`
	Role      string    `json:"role" example:"student"`
	IsActive  bool      `json:"isActive" example:"true"`
	CreatedAt time.Time `json:"createdAt"`
}
