package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/IstyxI/foodgram/internal/models"
)

const shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// shortCodeMaxAttempts bounds the draw loop. The 62^6 code space dwarfs
// any realistic recipe corpus, so hitting the bound means the uniqueness
// index is corrupted rather than the space being full.
const shortCodeMaxAttempts = 1000

const shortLinkTTL = 24 * time.Hour

var (
	codeRandMu sync.Mutex
	codeRand   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func randomShortCode() string {
	codeRandMu.Lock()
	defer codeRandMu.Unlock()
	b := make([]byte, models.ShortCodeLength)
	for i := range b {
		b[i] = shortCodeAlphabet[codeRand.Intn(len(shortCodeAlphabet))]
	}
	return string(b)
}

// shortLinkCache fronts code resolution. A code is immutable while its
// recipe exists, so an entry only becomes invalid when the recipe is
// deleted; Invalidate must be called at that point.
type shortLinkCache interface {
	get(ctx context.Context, key string) (string, bool)
	set(ctx context.Context, key, value string, ttl time.Duration)
	del(ctx context.Context, key string)
}

type redisShortLinkCache struct {
	client *redis.Client
}

func (c redisShortLinkCache) get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	return value, err == nil
}

func (c redisShortLinkCache) set(ctx context.Context, key, value string, ttl time.Duration) {
	c.client.Set(ctx, key, value, ttl)
}

func (c redisShortLinkCache) del(ctx context.Context, key string) {
	c.client.Del(ctx, key)
}

func shortLinkKey(code string) string {
	return "shortlink:" + code
}

// ShortCodeAllocator assigns each new recipe a unique 6-character code and
// resolves codes back to recipe ids. Resolution goes through a read-through
// cache when Redis is configured.
type ShortCodeAllocator struct {
	db    *gorm.DB
	cache shortLinkCache
}

func NewShortCodeAllocator(db *gorm.DB, redisClient *redis.Client) *ShortCodeAllocator {
	a := &ShortCodeAllocator{db: db}
	if redisClient != nil {
		a.cache = redisShortLinkCache{client: redisClient}
	}
	return a
}

// Allocate draws candidate codes until one is unused. tx is the transaction
// the recipe row will be created in, so the check sees pending writes. The
// candidate check is only an early exit: a concurrent insert of the same
// candidate surfaces as a duplicate-key error at commit, which the caller
// treats as a collision and retries via this method.
func (a *ShortCodeAllocator) Allocate(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < shortCodeMaxAttempts; attempt++ {
		code := randomShortCode()
		var count int64
		if err := tx.Model(&models.Recipe{}).Where("short_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrShortCodeExhausted
}

// Resolve maps a short code to the recipe id it was assigned to.
func (a *ShortCodeAllocator) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	if len(code) != models.ShortCodeLength {
		return uuid.Nil, ErrNotFound
	}

	if a.cache != nil {
		if cached, ok := a.cache.get(ctx, shortLinkKey(code)); ok {
			if id, err := uuid.Parse(cached); err == nil {
				return id, nil
			}
		}
	}

	var recipe models.Recipe
	err := a.db.WithContext(ctx).Select("id").Where("short_code = ?", code).First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}

	if a.cache != nil {
		a.cache.set(ctx, shortLinkKey(code), recipe.ID.String(), shortLinkTTL)
	}
	return recipe.ID, nil
}

// Invalidate drops the cached resolution for a code. Must be called when
// the recipe holding the code is deleted, so resolution falls through to
// the database and reports NotFound instead of serving the stale id.
func (a *ShortCodeAllocator) Invalidate(ctx context.Context, code string) {
	if a.cache != nil {
		a.cache.del(ctx, shortLinkKey(code))
	}
}
