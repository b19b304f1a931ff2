// Package auth resolves the calling identity for storefront requests.
//
// Identity issuance is not this service's job: sessions are minted
// elsewhere and presented as opaque bearer tokens. This package validates
// a token against the configured session table, attaches the resulting
// Identity to the request context, and answers role checks with an opaque
// allowed/denied decision.
package auth

import (
	"fmt"
	"sync"
)

// Identity is the authenticated caller. UserID is an opaque, untrusted
// but authenticated string key; the cart pipeline uses it only as a
// serialization and ownership key.
type Identity struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the identity carries any of the given roles.
func (id *Identity) HasRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range id.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// SessionValidator validates bearer tokens against a static session table.
type SessionValidator struct {
	mu       sync.RWMutex
	sessions map[string]*Identity
}

// SessionEntry is one configured token-to-identity binding.
type SessionEntry struct {
	Token  string   `yaml:"token"`
	UserID string   `yaml:"user_id"`
	Roles  []string `yaml:"roles"`
}

// NewSessionValidator creates a validator from configured entries.
func NewSessionValidator(entries []SessionEntry) (*SessionValidator, error) {
	sessions := make(map[string]*Identity, len(entries))
	for _, e := range entries {
		if e.Token == "" {
			return nil, fmt.Errorf("session entry has empty token")
		}
		if e.UserID == "" {
			return nil, fmt.Errorf("session entry %q has empty user_id", e.Token)
		}
		sessions[e.Token] = &Identity{UserID: e.UserID, Roles: e.Roles}
	}
	return &SessionValidator{sessions: sessions}, nil
}

// Validate resolves a bearer token to an identity.
func (v *SessionValidator) Validate(token string) (*Identity, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	id, ok := v.sessions[token]
	if !ok {
		return nil, fmt.Errorf("unknown session token")
	}
	return id, nil
}
