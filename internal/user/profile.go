// Package user fournit les profils publics utilisés pour enrichir les posts.
package user

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

// Profile contient uniquement les champs publics d'un utilisateur.
type Profile struct {
	UserID    string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	AvatarURL string `json:"avatar_url"`
}

type ProfileProvider interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// ResolveUsername renvoie l'identifiant associé au nom d'utilisateur.
	ResolveUsername(ctx context.Context, username string) (string, error)
}

func (u *User) Profile() *Profile {
	return &Profile{
		UserID:    u.ID,
		Username:  u.Username,
		FirstName: u.Firstname,
		LastName:  u.Lastname,
		AvatarURL: u.AvatarURL,
	}
}
