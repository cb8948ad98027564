package models

import "time"

// Location represents a user's geographic position
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Picture represents one entry of a user's ordered picture collection.
// The payload blob lives in object storage; URL points at it.
// Invariant: across a collection of size N the Order values are exactly 0..N-1.
type Picture struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Order int    `json:"order"`
}

// Report represents a report filed against a user
type Report struct {
	ID        string    `json:"id"`
	Reporter  string    `json:"reporter"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents a user in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Gender       string    `json:"gender"`
	Birth        time.Time `json:"birth"`
	Description  string    `json:"description"`
	Banned       bool      `json:"banned"`
	Location     Location  `json:"location"`
	Likes        []string  `json:"likes"`
	Nopes        []string  `json:"nopes"`
	Reveals      []string  `json:"reveals"`
	Pictures     []Picture `json:"pictures"`
	Reports      []Report  `json:"reports"`
	PushToken    *string   `json:"push_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns a copy of the user safe for API responses
func (u *User) Public() *User {
	out := *u
	out.PasswordHash = ""
	return &out
}

// Message represents a chat message between two users
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
