package entity

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	ImagePath    string
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the immutable authenticated identity resolved once per
// request from the session store and passed down by value. Handlers and
// services never mutate it.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

func (u User) Principal() Principal {
	return Principal{ID: u.ID, Name: u.Name, Email: u.Email, Admin: u.Admin}
}
