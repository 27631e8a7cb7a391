package domain

import "time"

type ID string

type Account struct {
	ID           ID
	Email        string
	Username     string
	PasswordHash *string
	Name         string
	Bio          *string
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword is false for accounts provisioned by a federated provider.
func (a Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// ProfileUpdate carries the optional profile fields. A nil field is left
// unchanged; a non-nil empty Bio clears it.
type ProfileUpdate struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}
