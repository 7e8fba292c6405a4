package awsauth

import (
	"context"
	"sync"
	"time"

	"github.com/chukul/split-token-publisher/internal/config"
)

var _ CredentialResolver = &CachingResolver{}

// CachingResolver reuses the last resolved credential until it nears the end of
// its session. Degraded credentials are never reused, so a refused exchange is
// retried on the next event.
type CachingResolver struct {
	next CredentialResolver
	now  func() time.Time

	mu         sync.Mutex
	key        cacheKey
	cached     Credential
	validUntil time.Time
}

type cacheKey struct {
	kind        config.Kind
	region      string
	roleARN     string
	profile     string
	accessKeyID string
}

func keyOf(method config.AccessMethod, region string) cacheKey {
	k := cacheKey{kind: method.Kind(), region: region, roleARN: method.RoleARN()}
	switch k.kind {
	case config.KindStaticKeys:
		k.accessKeyID = method.StaticKeys.AccessKeyID
	case config.KindProfile:
		k.profile = method.Profile.Name
	}
	return k
}

// NewCachingResolver wraps next. A nil now uses time.Now.
func NewCachingResolver(next CredentialResolver, now func() time.Time) *CachingResolver {
	if now == nil {
		now = time.Now
	}
	return &CachingResolver{next: next, now: now}
}

// Resolve returns the cached credential when still fresh, otherwise resolves
// through next while holding the lock so concurrent events share one exchange.
func (c *CachingResolver) Resolve(ctx context.Context, method config.AccessMethod, region string) (Credential, error) {
	key := keyOf(method, region)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.cached.Provider != nil && c.key == key && now.Before(c.validUntil) {
		return c.cached, nil
	}

	cred, err := c.next.Resolve(ctx, method, region)
	if err != nil {
		return Credential{}, err
	}

	if cred.Degraded {
		c.cached = Credential{}
		return cred, nil
	}

	lifetime := SessionDuration
	if !cred.Expires.IsZero() && cred.Expires.Sub(now) < lifetime {
		lifetime = cred.Expires.Sub(now)
	}

	c.key = key
	c.cached = cred
	c.validUntil = now.Add(lifetime - RefreshBuffer(lifetime))
	return cred, nil
}

// Invalidate drops the cached credential.
func (c *CachingResolver) Invalidate() {
	c.mu.Lock()
	c.cached = Credential{}
	c.mu.Unlock()
}

// RefreshBuffer is how long before expiry a cached credential is replaced:
// 20% of the lifetime, at least one and at most five minutes, and nothing for
// lifetimes of two minutes or less.
func RefreshBuffer(lifetime time.Duration) time.Duration {
	if lifetime <= 2*time.Minute {
		return 0
	}
	return min(max(lifetime/5, time.Minute), 5*time.Minute)
}
