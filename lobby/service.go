// Package lobby keeps the clients attached to the relay in arrival order.
package lobby

import (
	"sync"

	"snake-arena/models"
)

type Service struct {
	mu      sync.RWMutex
	clients map[string]*models.Client
	order   []string
}

func NewService() *Service {
	return &Service{
		clients: make(map[string]*models.Client),
		order:   make([]string, 0),
	}
}

// Add registers c. It reports false when a client with the same id is
// already attached.
func (s *Service) Add(c *models.Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[c.ID]; exists {
		return false
	}

	s.clients[c.ID] = c
	s.order = append(s.order, c.ID)
	return true
}

func (s *Service) Remove(id string) (*models.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.clients[id]
	if !exists {
		return nil, false
	}
	delete(s.clients, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return c, true
}

func (s *Service) Get(id string) (*models.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.clients[id]
	return c, exists
}

// Active returns the attached client marked active, if any.
func (s *Service) Active() (*models.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if c := s.clients[id]; c.Active {
			return c, true
		}
	}
	return nil, false
}

func (s *Service) Snapshot() []*models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Client, 0, len(s.order))
	for _, id := range s.order {
		if c, exists := s.clients[id]; exists {
			result = append(result, c)
		}
	}
	return result
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
