package policy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/diewo77/vae-dossiers/internal/models"
	"gorm.io/gorm"
)

// Subject is the authenticated account as seen by policies.
type Subject struct {
	AccountID   uint
	Role        models.Role
	OrganismID  *string
	CandidateID string
	Profile     *Profile
}

func (s *Subject) IsAdmin() bool {
	return s != nil && s.Profile != nil && s.Profile.HasPermission(PermissionSuperAdmin)
}

// Resolver loads the subject of an account id. A nil subject means the account
// has no usable profile.
type Resolver interface {
	Resolve(ctx context.Context, accountID uint) (*Subject, error)
}

// AccountResolver reads accounts and their candidate record from the database.
type AccountResolver struct{ DB *gorm.DB }

func NewAccountResolver(db *gorm.DB) *AccountResolver { return &AccountResolver{DB: db} }

func (r *AccountResolver) Resolve(ctx context.Context, accountID uint) (*Subject, error) {
	var acc models.Account
	if err := r.DB.WithContext(ctx).First(&acc, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	profile := ProfileForRole(acc.Role)
	if profile == nil {
		return nil, nil
	}
	s := &Subject{AccountID: acc.ID, Role: acc.Role, OrganismID: acc.OrganismID, Profile: profile}
	if acc.Role == models.RoleCandidate {
		var cand models.Candidate
		err := r.DB.WithContext(ctx).Select("id").Where("account_id = ?", acc.ID).First(&cand).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		s.CandidateID = cand.ID
	}
	return s, nil
}

// CachedResolver wraps a Resolver with TTL-based caching so authorization
// checks do not hit the database on every request.
type CachedResolver struct {
	inner Resolver
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[uint]cacheEntry
}

type cacheEntry struct {
	subject   *Subject
	expiresAt time.Time
}

func NewCachedResolver(inner Resolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{inner: inner, ttl: ttl, now: time.Now, cache: make(map[uint]cacheEntry)}
}

func (r *CachedResolver) Resolve(ctx context.Context, accountID uint) (*Subject, error) {
	r.mu.RLock()
	e, ok := r.cache[accountID]
	r.mu.RUnlock()
	if ok && r.now().Before(e.expiresAt) {
		return e.subject, nil
	}

	s, err := r.inner.Resolve(ctx, accountID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.cache[accountID] = cacheEntry{subject: s, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return s, nil
}

// Invalidate drops the cached subject of one account.
func (r *CachedResolver) Invalidate(accountID uint) {
	r.mu.Lock()
	delete(r.cache, accountID)
	r.mu.Unlock()
}
