package profile

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"cinedeck/models"
)

var ErrProfileIDRequired = errors.New("profile id is required")

// Service holds the identity of whoever is signed in. Sign-in itself happens
// with an external identity provider; this slot only records the result.
type Service struct {
	mu      sync.RWMutex
	current *models.UserProfile
	now     func() time.Time
}

func NewService() *Service {
	return &Service{now: time.Now}
}

// SignIn replaces the current profile. SignedInAt is stamped when left empty.
func (s *Service) SignIn(p models.UserProfile) (models.UserProfile, error) {
	p.ID = strings.TrimSpace(p.ID)
	if !p.Valid() {
		return models.UserProfile{}, ErrProfileIDRequired
	}
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if p.SignedInAt.IsZero() {
		p.SignedInAt = s.now().UTC()
	}

	s.mu.Lock()
	s.current = &p
	s.mu.Unlock()

	log.Printf("[profile] signed in %s", p.ID)
	return p, nil
}

// SignOut clears the slot. It reports whether anyone was signed in.
func (s *Service) SignOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	log.Printf("[profile] signed out %s", s.current.ID)
	s.current = nil
	return true
}

func (s *Service) Current() (models.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.UserProfile{}, false
	}
	return *s.current, true
}
