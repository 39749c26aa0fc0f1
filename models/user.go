package models

import (
	"strings"
	"time"
)

// User is query-only here: accounts are owned by the identity service. The
// notification subsystem reads it for ownership checks and email addresses.
type User struct {
	UserID    uint       `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname string     `gorm:"column:user_lname" json:"user_lname"`
	Email     *string    `gorm:"column:email;unique" json:"email,omitempty"`
	RoleID    int        `gorm:"column:role_id" json:"role_id"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (User) TableName() string { return "users" }

// DisplayName joins the user's name parts, skipping blanks.
func (u User) DisplayName() string {
	parts := make([]string, 0, 2)
	if f := strings.TrimSpace(u.UserFname); f != "" {
		parts = append(parts, f)
	}
	if l := strings.TrimSpace(u.UserLname); l != "" {
		parts = append(parts, l)
	}
	return strings.Join(parts, " ")
}
