package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrMiss is returned by Get when a key is absent or its entry has expired.
var ErrMiss = errors.New("cache miss")

// Cache is a TTL key-value store shared by all concurrent fetches.
// Entries past their TTL are treated as absent; expiry is advisory and
// implementations are free to purge lazily.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives a deterministic cache key from the semantic identity of a
// query. The digest is a fingerprint, not a security boundary, so MD5 is
// sufficient.
func Key(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
