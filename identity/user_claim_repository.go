package identity

import (
	"errors"

	"gorm.io/gorm"
)

// UserClaimRepository manages the user_claims table.
type UserClaimRepository struct {
	db *gorm.DB
}

func NewUserClaimRepository(db *gorm.DB) *UserClaimRepository {
	return &UserClaimRepository{db: db}
}

// ByUserID returns the user's claims in insertion order. Duplicate
// (type, value) pairs come back as separate entries; an empty id
// yields an empty slice.
func (r *UserClaimRepository) ByUserID(userID string) ([]Claim, error) {
	claims := []Claim{}
	if userID == "" {
		return claims, nil
	}
	var rows []claimRow
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		claims = append(claims, Claim{Type: row.ClaimType, Value: row.ClaimValue})
	}
	return claims, nil
}

// DeleteAll removes every claim row owned by the user.
func (r *UserClaimRepository) DeleteAll(userID string) error {
	if userID == "" {
		return nil
	}
	return r.db.Where("user_id = ?", userID).Delete(&claimRow{}).Error
}

// Add inserts one claim row. Duplicates are permitted.
func (r *UserClaimRepository) Add(claim Claim, userID string) error {
	if userID == "" {
		return nil
	}
	return r.db.Create(&claimRow{
		UserID:     userID,
		ClaimType:  claim.Type,
		ClaimValue: claim.Value,
	}).Error
}

// Delete removes a single row matching the exact (type, value) pair.
// With duplicates present only the oldest row goes; no match is a
// no-op.
func (r *UserClaimRepository) Delete(userID string, claim Claim) error {
	if userID == "" {
		return nil
	}
	var row claimRow
	err := r.db.
		Where("user_id = ? AND claim_type = ? AND claim_value = ?", userID, claim.Type, claim.Value).
		Order("id").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return r.db.Delete(&row).Error
}
