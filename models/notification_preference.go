package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Delivery channels. Like notification types, the set is closed.
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
)

// Channels returns every valid delivery channel.
func Channels() []string {
	return []string{ChannelInApp, ChannelEmail}
}

// ValidChannel reports whether c is one of the known delivery channels.
func ValidChannel(c string) bool {
	for _, known := range Channels() {
		if c == known {
			return true
		}
	}
	return false
}

// PreferenceMatrix maps a notification type to the channels enabled for it.
// Types absent from the matrix are delivered on every channel.
type PreferenceMatrix map[string][]string

func (m PreferenceMatrix) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *PreferenceMatrix) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = PreferenceMatrix{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into PreferenceMatrix", value)
	}
}

// DefaultMatrix returns the matrix used before a user ever saves preferences:
// every notification type delivered on every channel.
func DefaultMatrix() PreferenceMatrix {
	matrix := make(PreferenceMatrix, len(NotificationTypes()))
	for _, typ := range NotificationTypes() {
		matrix[typ] = Channels()
	}
	return matrix
}

// ChannelsFor returns the enabled channels for typ, falling back to all
// channels when the type is not present in the matrix.
func (m PreferenceMatrix) ChannelsFor(typ string) []string {
	if channels, ok := m[typ]; ok {
		out := make([]string, len(channels))
		copy(out, channels)
		return out
	}
	return Channels()
}

// Enabled reports whether channel is enabled for typ.
func (m PreferenceMatrix) Enabled(typ, channel string) bool {
	for _, c := range m.ChannelsFor(typ) {
		if c == channel {
			return true
		}
	}
	return false
}

// Merge returns a copy of m with every key present in partial replacing that
// type's channel set wholesale. Keys absent from partial are untouched.
func (m PreferenceMatrix) Merge(partial map[string][]string) PreferenceMatrix {
	merged := make(PreferenceMatrix, len(m)+len(partial))
	for typ, channels := range m {
		out := make([]string, len(channels))
		copy(out, channels)
		merged[typ] = out
	}
	for typ, channels := range partial {
		out := make([]string, len(channels))
		copy(out, channels)
		merged[typ] = out
	}
	return merged
}

type NotificationPreference struct {
	PreferenceID uint             `gorm:"primaryKey;column:preference_id" json:"preference_id"`
	UserID       uint             `gorm:"column:user_id" json:"user_id"`
	Matrix       PreferenceMatrix `gorm:"column:matrix" json:"matrix"`
	CreateAt     time.Time        `gorm:"column:create_at" json:"created_at"`
	UpdateAt     time.Time        `gorm:"column:update_at" json:"updated_at"`
}

func (NotificationPreference) TableName() string { return "notification_preferences" }
