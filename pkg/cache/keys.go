package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP or GraphQL response.
	HTTPKey(namespace, key string) string

	// CalendarKey keys a contribution calendar for login over [from, to].
	CalendarKey(login string, from, to time.Time) string

	// ArtifactKey keys a rendered document for a grid content hash.
	ArtifactKey(gridHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render inputs that change artifact bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Theme  string  `json:"theme"`
	Policy string  `json:"policy"`
	Runs   int     `json:"runs"`
	Seed   uint32  `json:"seed"`
	Static bool    `json:"static,omitempty"`
	Labels bool    `json:"labels,omitempty"`
	Title  string  `json:"title,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// CalendarKey lowercases login: GitHub logins are case-insensitive.
func (DefaultKeyer) CalendarKey(login string, from, to time.Time) string {
	return "calendar:" + strings.ToLower(login) + ":" +
		from.UTC().Format(time.DateOnly) + ":" + to.UTC().Format(time.DateOnly)
}

func (DefaultKeyer) ArtifactKey(gridHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", gridHash, opts)
}

var _ Keyer = DefaultKeyer{}

// ScopedKeyer prepends a fixed prefix to every key of an inner Keyer, so
// several deployments can share one Redis.
type ScopedKeyer struct {
	Inner  Keyer
	Prefix string
}

// NewScopedKeyer scopes inner (DefaultKeyer when nil) under prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{Inner: inner, Prefix: prefix}
}

func (k ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.Prefix + k.Inner.HTTPKey(namespace, key)
}

func (k ScopedKeyer) CalendarKey(login string, from, to time.Time) string {
	return k.Prefix + k.Inner.CalendarKey(login, from, to)
}

func (k ScopedKeyer) ArtifactKey(gridHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Inner.ArtifactKey(gridHash, opts)
}

// Hash returns the hex SHA-256 of data. Artifact ETags and grid content
// hashes use it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey folds parts into a single "prefix:<sha256>" key.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
