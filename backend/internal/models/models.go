package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the minimal user identity carried by a session.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Identity returns the session identity of u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Holding is one portfolio line of a user.
type Holding struct {
	ID     string  `json:"id"` // client generated, e.g. "BTC-1712345678901"
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
}

// Crypto is one record of a market snapshot
type Crypto struct {
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	Price           float64 `json:"price"`
	Change          float64 `json:"change"` // 24h change, percent
	Volume          float64 `json:"volume"`
	CarbonFootprint string  `json:"carbonFootprint"` // "<number> kg CO₂"
	Color           string  `json:"color"`
	IconURL         string  `json:"iconUrl"`
}
