package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList invalidates tokens before they expire
type RevocationList interface {
	// Revoke invalidates one token by its JTI; ttl should cover the token's remaining lifetime
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether the JTI was revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeCompany invalidates every token issued to members of a company
	// up to now, used when a company is offboarded
	RevokeCompany(ctx context.Context, companyID string, ttl time.Duration) error

	// IsCompanyRevoked reports whether a token issued at issuedAt predates the company's revocation
	IsCompanyRevoked(ctx context.Context, companyID string, issuedAt time.Time) (bool, error)
}

// RedisRevocationList implements RevocationList using Redis
type RedisRevocationList struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRevocationList creates a revocation list on an existing Redis client
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{
		client:    client,
		keyPrefix: "carbonlink:token:revoked:",
	}
}

func (r *RedisRevocationList) jtiKey(jti string) string {
	return r.keyPrefix + "jti:" + jti
}

func (r *RedisRevocationList) companyKey(companyID string) string {
	return r.keyPrefix + "company:" + companyID
}

// Revoke stores the JTI with a TTL
func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks if the JTI is stored
func (r *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}

// RevokeCompany stores the current Unix timestamp as the company's cut-off
func (r *RedisRevocationList) RevokeCompany(ctx context.Context, companyID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.companyKey(companyID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke company tokens: %w", err)
	}
	return nil
}

// IsCompanyRevoked compares issuedAt with the stored cut-off
func (r *RedisRevocationList) IsCompanyRevoked(ctx context.Context, companyID string, issuedAt time.Time) (bool, error) {
	value, err := r.client.Get(ctx, r.companyKey(companyID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check company token revocation: %w", err)
	}

	cutoff, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() <= cutoff, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// InMemoryRevocationList is a single-process RevocationList
type InMemoryRevocationList struct {
	mu        sync.Mutex
	tokens    map[string]time.Time // jti -> expiry of the entry
	companies map[string]time.Time // company id -> cut-off
}

// NewInMemoryRevocationList creates an empty in-memory revocation list
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		tokens:    make(map[string]time.Time),
		companies: make(map[string]time.Time),
	}
}

// Revoke stores the JTI until ttl elapses
func (r *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether the JTI is stored and not expired
func (r *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, ok := r.tokens[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(r.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RevokeCompany records now as the company's cut-off
func (r *InMemoryRevocationList) RevokeCompany(_ context.Context, companyID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[companyID] = time.Now()
	return nil
}

// IsCompanyRevoked reports whether issuedAt is at or before the cut-off
func (r *InMemoryRevocationList) IsCompanyRevoked(_ context.Context, companyID string, issuedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff, ok := r.companies[companyID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(cutoff), nil
}

var _ RevocationList = (*InMemoryRevocationList)(nil)
