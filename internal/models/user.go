package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never serialize
	Name      string    `json:"name"`
	Number    *string   `json:"number"`
	Picture   *string   `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Account is the response body for GET /account.
type Account struct {
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Picture *string `json:"picture"`
	Number  *string `json:"number"`
}

// ProfileUpdate carries a partial profile change. Name and Email are always
// written; Number and Picture change only when non-nil.
type ProfileUpdate struct {
	Name    string
	Email   string
	Number  *string
	Picture *string
}
