package auth

import (
	"errors"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vaultwire/crypto"
)

// ErrUnknownUser indicates a username with no provisioned credential.
var ErrUnknownUser = errors.New("auth: unknown user")

// credential is the provisioning-time material held for one user.
type credential struct {
	passwordHash crypto.PasswordHash
	key          crypto.Key
}

// Store is the process-wide credential store.
type Store struct {
	mu    sync.RWMutex
	users map[string]credential
}

// NewStore creates an empty credential store.
func NewStore() *Store {
	return &Store{users: make(map[string]credential)}
}

// Add provisions a user. The password is digested for verification and
// separately digested into the user's symmetric key; the password itself is
// not retained. Re-adding a username replaces its credential.
func (s *Store) Add(username, password string) {
	cred := credential{
		passwordHash: crypto.HashPassword(password),
		key:          crypto.DeriveKey(password),
	}

	s.mu.Lock()
	s.users[username] = cred
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Add",
		"user":     username,
	}).Debug("Provisioned credential")
}

// Verify recomputes the password digest and compares it to the stored hash.
// Unknown usernames report false.
func (s *Store) Verify(username, password string) bool {
	s.mu.RLock()
	cred, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return cred.passwordHash.Verify(password)
}

// Key returns the symmetric key held for username.
func (s *Store) Key(username string) (crypto.Key, error) {
	s.mu.RLock()
	cred, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return crypto.Key{}, ErrUnknownUser
	}
	return cred.key, nil
}

// Usernames returns every provisioned username, sorted.
func (s *Store) Usernames() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}
