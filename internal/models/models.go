package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"index"                    json:"email"`
	PasswordHash string    `gorm:"not null;default:''"      json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName is the display name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// RevokedToken is one denylist entry. Tokens are identified by their jti claim.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null" json:"jti"`
	TokenHash string    `gorm:"not null"            json:"-"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	ExpiresAt int64     `gorm:"index;not null"      json:"expires_at"`
	RevokedAt time.Time `gorm:"not null"            json:"revoked_at"`
}

type File struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	OwnerID     uint      `gorm:"index;not null"            json:"-"`
	Name        string    `gorm:"not null"                  json:"name"`
	Size        int64     `gorm:"not null"                  json:"size"`
	ContentType string    `json:"content_type"`
	StoragePath string    `gorm:"uniqueIndex;not null"      json:"-"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `gorm:"index;not null"            json:"uploaded_at"`
}
