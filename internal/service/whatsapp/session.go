package whatsapp

import "sync"

// seenMessages remembers recently handled inbound message IDs so webhook
// redeliveries are answered only once. Oldest IDs are evicted first.
type seenMessages struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	order []string
	limit int
}

func newSeenMessages(limit int) *seenMessages {
	return &seenMessages{
		ids:   make(map[string]struct{}, limit),
		order: make([]string, 0, limit),
		limit: limit,
	}
}

// markNew records id and reports whether it had not been seen before.
func (s *seenMessages) markNew(id string) bool {
	if id == "" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[id]; exists {
		return false
	}
	if len(s.order) == s.limit {
		delete(s.ids, s.order[0])
		s.order = s.order[1:]
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// forget drops id so a later redelivery of the same message is handled again.
func (s *seenMessages) forget(id string) {
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[id]; !exists {
		return
	}
	delete(s.ids, id)
	for i, seen := range s.order {
		if seen == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
