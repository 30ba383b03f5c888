package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Roles is the fixed set of roles, in claim emission order.
var Roles = []Role{RoleUser, RoleAdmin}

type User struct {
	ID              string     `gorm:"primaryKey;size:36"      json:"id"`
	Email           string     `gorm:"not null"                json:"email"`
	NormalizedEmail string     `gorm:"uniqueIndex;not null"    json:"-"`
	Username        string     `gorm:"uniqueIndex;not null"    json:"username"`
	PasswordHash    string     `gorm:"not null"                json:"-"`
	Roles           []UserRole `gorm:"foreignKey:UserID"       json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// NormalizeEmail is the form emails are compared in.
func NormalizeEmail(email string) string {
	return strings.ToUpper(strings.TrimSpace(email))
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.NormalizedEmail = NormalizeEmail(u.Email)
	return nil
}

type UserRole struct {
	UserID string `gorm:"primaryKey;size:36"`
	Role   Role   `gorm:"primaryKey;size:16"`
}

type RefreshToken struct {
	Token        string    `gorm:"primaryKey;size:36"        json:"token"`
	JwtID        string    `gorm:"index;not null"            json:"jwtId"`
	UserID       string    `gorm:"index;not null;size:36"    json:"userId"`
	CreationDate time.Time `gorm:"not null"                  json:"creationDate"`
	ExpireDate   time.Time `gorm:"not null"                  json:"expireDate"`
	Used         bool      `gorm:"not null;default:false"    json:"used"`
	Invalidated  bool      `gorm:"not null;default:false"    json:"invalidated"`
}

type Note struct {
	ID               string    `gorm:"primaryKey;size:36"     json:"id"`
	UserID           string    `gorm:"index;not null;size:36" json:"userId"`
	Title            string    `gorm:"size:50;not null"       json:"title"`
	Content          string    `gorm:"size:255;not null"      json:"content"`
	CreationDate     time.Time `gorm:"not null"               json:"creationDate"`
	LastTimeModified time.Time `gorm:"not null"               json:"lastTimeModified"`
}

func (n *Note) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// All lists every persisted model, in AutoMigrate order.
func All() []any {
	return []any{&User{}, &UserRole{}, &RefreshToken{}, &Note{}}
}
