package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims carried by every access token
type UserClaims struct {
	SubjectID string `json:"subjectId"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}

// SignupRequest is the request body for account registration
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role,omitempty"`
}

// LoginRequest is the request body for sign-in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful sign-in
type LoginResponse struct {
	Token     string `json:"token"`
	SubjectID string `json:"subjectId"`
	Role      Role   `json:"role"`
}
