package models

// User is the account record the API returns from login and the identity probe.
//
// PasswordHash is only populated by the development API's repositories and never serialised.
type User struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash []byte `json:"-" db:"password_hash"`
}

// DisplayName falls back to a generic name when the API didn't provide one.
func (u User) DisplayName() string {
	if u.Name == "" {
		return "User"
	}
	return u.Name
}
