package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IstyxI/foodgram/internal/models"
)

// FollowService manages author subscriptions with the same membership
// discipline as favorites: duplicate follows and absent unfollows are
// reported, the unique pair index is the authoritative guard.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow subscribes follower to author's recipes. Self-follow is rejected
// as invalid input before anything else is checked.
func (s *FollowService) Follow(ctx context.Context, followerID, authorID uuid.UUID) error {
	if followerID == authorID {
		return validationErrorf("you cannot follow yourself")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyMember
	}

	follow := models.Follow{FollowerID: followerID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

// Unfollow removes the subscription, reporting ErrNotMember if it was
// absent.
func (s *FollowService) Unfollow(ctx context.Context, followerID, authorID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotMember
	}
	return nil
}

// IsFollowing reports whether follower subscribes to author.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowedAuthors reports which of the given authors the follower follows,
// in one query. Absent keys mean not followed; an anonymous follower
// follows nobody.
func (s *FollowService) FollowedAuthors(ctx context.Context, followerID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	followed := make(map[uuid.UUID]bool, len(authorIDs))
	if followerID == uuid.Nil || len(authorIDs) == 0 {
		return followed, nil
	}

	var rows []models.Follow
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND author_id IN ?", followerID, authorIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		followed[row.AuthorID] = true
	}
	return followed, nil
}

// Subscription is an author the user follows together with their recipes.
type Subscription struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// Subscriptions lists the authors the user follows, ordered by username,
// each with a recipe preview capped at recipesLimit (0 means no cap).
func (s *FollowService) Subscriptions(ctx context.Context, userID uuid.UUID, recipesLimit int) ([]Subscription, error) {
	var authors []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.username ASC").
		Find(&authors).Error
	if err != nil {
		return nil, err
	}

	subs := make([]Subscription, 0, len(authors))
	for _, author := range authors {
		var total int64
		if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("author_id = ?", author.ID).Count(&total).Error; err != nil {
			return nil, err
		}

		query := s.db.WithContext(ctx).
			Preload("Author").
			Preload("Tags").
			Preload("Ingredients.Ingredient").
			Where("author_id = ?", author.ID).
			Order("created_at DESC")
		if recipesLimit > 0 {
			query = query.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := query.Find(&recipes).Error; err != nil {
			return nil, err
		}

		subs = append(subs, Subscription{
			Author:       author,
			Recipes:      recipes,
			RecipesCount: total,
		})
	}
	return subs, nil
}
