package user

import "time"

type User struct {
	ID        string `gorm:"primaryKey"` // UUID venant du fournisseur d'identité
	CreatedAt time.Time
	Username  string
	Firstname string
	Lastname  string
	AvatarURL string
}
