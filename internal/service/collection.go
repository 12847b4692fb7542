package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IstyxI/foodgram/internal/models"
)

// MembershipSet maintains a per-user set of recipe references with
// conflict-reporting toggle semantics: adding an existing member or
// removing an absent one is reported to the caller rather than silently
// absorbed. One abstraction instantiated twice, for favorites and the
// shopping cart; the two sets are never merged.
type MembershipSet struct {
	db  *gorm.DB
	row func(userID, recipeID uuid.UUID) any
}

func NewFavoriteSet(db *gorm.DB) *MembershipSet {
	return &MembershipSet{
		db: db,
		row: func(userID, recipeID uuid.UUID) any {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
}

func NewShoppingCartSet(db *gorm.DB) *MembershipSet {
	return &MembershipSet{
		db: db,
		row: func(userID, recipeID uuid.UUID) any {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
	}
}

// Add inserts a membership. Returns ErrNotFound when the recipe does not
// exist and ErrAlreadyMember when the membership is already present. The
// Contains pre-check is the early-error path only; under a race the unique
// index rejects the second insert and the duplicate-key error is mapped to
// the same ErrAlreadyMember outcome.
func (s *MembershipSet) Add(ctx context.Context, userID, recipeID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	member, err := s.Contains(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}

	return s.insert(ctx, userID, recipeID)
}

// insert is the commit step of Add. The composite unique index is the
// authoritative guard: when a concurrent Add wins the race after the
// pre-check, the duplicate-key error maps to the same ErrAlreadyMember
// outcome the pre-check reports.
func (s *MembershipSet) insert(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Create(s.row(userID, recipeID)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

// Remove deletes a membership, returning ErrNotMember when it was absent.
func (s *MembershipSet) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(s.row(uuid.Nil, uuid.Nil))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotMember
	}
	return nil
}

// Contains reports whether the membership exists.
func (s *MembershipSet) Contains(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(s.row(uuid.Nil, uuid.Nil)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
