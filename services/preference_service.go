package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crm-notification-api/models"
)

// PreferenceService stores each user's notification preference matrix: which
// notification types reach which delivery channels.
type PreferenceService struct {
	db *gorm.DB
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

// Get returns the user's preference record, materializing the all-enabled
// default matrix on first access.
func (s *PreferenceService) Get(userID uint) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := s.db.First(&pref, "user_id = ?", userID).Error
	if err == nil {
		return &pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load preferences for user %d: %w", userID, err)
	}

	now := time.Now()
	pref = models.NotificationPreference{
		UserID:   userID,
		Matrix:   models.DefaultMatrix(),
		CreateAt: now,
		UpdateAt: now,
	}
	if err := s.db.Create(&pref).Error; err != nil {
		// Lost a first-access race; the winner's row is authoritative.
		var existing models.NotificationPreference
		if err2 := s.db.First(&existing, "user_id = ?", userID).Error; err2 == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("failed to create default preferences for user %d: %w", userID, err)
	}
	return &pref, nil
}

// Update merges partial into the stored matrix key by key: each type present
// in partial has its channel set replaced wholesale, absent types are
// untouched. The user's row is locked for the duration of the transaction so
// concurrent updates for the same user serialize. Returns the merged record.
func (s *PreferenceService) Update(userID uint, partial map[string][]string) (*models.NotificationPreference, error) {
	if err := validatePartialMatrix(partial); err != nil {
		return nil, err
	}

	var pref models.NotificationPreference
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pref, "user_id = ?", userID).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			now := time.Now()
			pref = models.NotificationPreference{
				UserID:   userID,
				Matrix:   models.DefaultMatrix(),
				CreateAt: now,
				UpdateAt: now,
			}
			if err := tx.Create(&pref).Error; err != nil {
				return err
			}
		}

		pref.Matrix = pref.Matrix.Merge(partial)
		pref.UpdateAt = time.Now()
		return tx.Model(&models.NotificationPreference{}).
			Where("preference_id = ?", pref.PreferenceID).
			Updates(map[string]interface{}{
				"matrix":    pref.Matrix,
				"update_at": pref.UpdateAt,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences for user %d: %w", userID, err)
	}
	return &pref, nil
}

func validatePartialMatrix(partial map[string][]string) error {
	for typ, channels := range partial {
		if !models.ValidNotificationType(typ) {
			return &ValidationError{Field: "type", Value: typ}
		}
		for _, ch := range channels {
			if !models.ValidChannel(ch) {
				return &ValidationError{Field: "channel", Value: ch}
			}
		}
	}
	return nil
}
