package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IstyxI/foodgram/internal/types"
)

func TestFollowLifecycle(t *testing.T) {
	db := setupTestDB(t)
	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")

	svc := NewFollowService(db)
	ctx := context.Background()

	following, err := svc.IsFollowing(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, svc.Follow(ctx, follower.ID, author.ID))

	following, err = svc.IsFollowing(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Following is directional.
	reverse, err := svc.IsFollowing(ctx, author.ID, follower.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	require.NoError(t, svc.Unfollow(ctx, follower.ID, author.ID))

	following, err = svc.IsFollowing(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowSelf(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "narcissus")

	err := NewFollowService(db).Follow(context.Background(), user.ID, user.ID)
	assert.True(t, IsValidationError(err))
}

func TestFollowTwice(t *testing.T) {
	db := setupTestDB(t)
	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")

	svc := NewFollowService(db)
	ctx := context.Background()
	require.NoError(t, svc.Follow(ctx, follower.ID, author.ID))
	assert.ErrorIs(t, svc.Follow(ctx, follower.ID, author.ID), ErrAlreadyMember)
}

func TestFollowUnknownAuthor(t *testing.T) {
	db := setupTestDB(t)
	follower := createTestUser(t, db, "follower")

	err := NewFollowService(db).Follow(context.Background(), follower.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnfollowNotFollowing(t *testing.T) {
	db := setupTestDB(t)
	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")

	err := NewFollowService(db).Unfollow(context.Background(), follower.ID, author.ID)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestFollowedAuthorsBatch(t *testing.T) {
	db := setupTestDB(t)
	follower := createTestUser(t, db, "follower")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	svc := NewFollowService(db)
	ctx := context.Background()
	require.NoError(t, svc.Follow(ctx, follower.ID, alice.ID))
	require.NoError(t, svc.Follow(ctx, follower.ID, carol.ID))

	followed, err := svc.FollowedAuthors(ctx, follower.ID, []uuid.UUID{alice.ID, bob.ID, carol.ID})
	require.NoError(t, err)
	assert.True(t, followed[alice.ID])
	assert.False(t, followed[bob.ID])
	assert.True(t, followed[carol.ID])

	// Anonymous viewers follow nobody.
	followed, err = svc.FollowedAuthors(ctx, uuid.Nil, []uuid.UUID{alice.ID})
	require.NoError(t, err)
	assert.Empty(t, followed)
}

func TestSubscriptions(t *testing.T) {
	db := setupTestDB(t)
	follower := createTestUser(t, db, "follower")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	tag := createTestTag(t, db, "breakfast")
	flour := createTestIngredient(t, db, "flour", "g")

	for _, name := range []string{"bread", "buns", "bagels"} {
		createTestRecipe(t, db, bob.ID, name, tag,
			types.RecipeIngredientRequest{ID: flour.ID, Amount: 100})
	}

	svc := NewFollowService(db)
	ctx := context.Background()
	require.NoError(t, svc.Follow(ctx, follower.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, follower.ID, alice.ID))

	subs, err := svc.Subscriptions(ctx, follower.ID, 2)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	// Ordered by author username.
	assert.Equal(t, "alice", subs[0].Author.Username)
	assert.Equal(t, "bob", subs[1].Author.Username)

	assert.EqualValues(t, 0, subs[0].RecipesCount)
	assert.Empty(t, subs[0].Recipes)
	assert.EqualValues(t, 3, subs[1].RecipesCount)
	assert.Len(t, subs[1].Recipes, 2, "recipe preview is capped by the limit")
}
