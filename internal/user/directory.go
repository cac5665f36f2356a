package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormDirectory lit les profils dans la table users.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var u User
	err := d.db.WithContext(ctx).
		Select("id", "username", "firstname", "lastname", "avatar_url").
		First(&u, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lecture du profil %s: %w", userID, err)
	}
	return u.Profile(), nil
}

func (d *GormDirectory) ResolveUsername(ctx context.Context, username string) (string, error) {
	var u User
	err := d.db.WithContext(ctx).
		Select("id").
		First(&u, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("résolution du username %s: %w", username, err)
	}
	return u.ID, nil
}
