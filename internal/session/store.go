package session

import (
	"sync"
	"time"
)

// Generation is one completed image request by a user.
type Generation struct {
	Prompt   string
	ImageURL string
	At       time.Time
}

type userHistory struct {
	UserID       int64
	Username     string
	Generations  []Generation
	LastActivity time.Time
}

type Options struct {
	MaxGenerations int
}

// Store keeps the recent generations per user, capped at a fixed depth.
type Store struct {
	mu         sync.Mutex
	users      map[int64]*userHistory
	maxHistory int
}

func NewStore(opts Options) *Store {
	maxHistory := opts.MaxGenerations
	if maxHistory <= 0 {
		maxHistory = 20
	}

	return &Store{
		users:      make(map[int64]*userHistory),
		maxHistory: maxHistory,
	}
}

func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.Generations = nil
		u.LastActivity = time.Now()
	}
}

// Recent returns a copy of the user's history, oldest first.
func (s *Store) Recent(userID int64) []Generation {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	u.LastActivity = time.Now()

	out := make([]Generation, len(u.Generations))
	copy(out, u.Generations)
	return out
}

func (s *Store) Record(userID int64, username string, gen Generation) {
	if gen.At.IsZero() {
		gen.At = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.getOrCreateLocked(userID, username)
	u.LastActivity = time.Now()

	u.Generations = append(u.Generations, gen)
	if len(u.Generations) > s.maxHistory {
		u.Generations = u.Generations[len(u.Generations)-s.maxHistory:]
	}
}

func (s *Store) getOrCreateLocked(userID int64, username string) *userHistory {
	if u, ok := s.users[userID]; ok {
		if u.Username == "" && username != "" {
			u.Username = username
		}
		return u
	}

	u := &userHistory{
		UserID:       userID,
		Username:     username,
		LastActivity: time.Now(),
	}
	s.users[userID] = u
	return u
}
