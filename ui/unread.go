package ui

import (
	"chat-client/domain/event"
	"sync"
)

// UnreadCounter counts public traffic received while the user is away.
// It is registered next to the renderer, never instead of it.
type UnreadCounter struct {
	mu       sync.Mutex
	away     bool
	count    int
	onChange func(count int)
}

// NewUnreadCounter calls onChange, when not nil, each time the count grows.
func NewUnreadCounter(onChange func(count int)) *UnreadCounter {
	return &UnreadCounter{onChange: onChange}
}

func (u *UnreadCounter) Observe(event.Delivery) {
	u.mu.Lock()
	if !u.away {
		u.mu.Unlock()
		return
	}
	u.count++
	count := u.count
	u.mu.Unlock()

	if u.onChange != nil {
		u.onChange(count)
	}
}

func (u *UnreadCounter) Away() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.away = true
}

// Back returns the unread count and resets it.
func (u *UnreadCounter) Back() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	count := u.count
	u.away = false
	u.count = 0
	return count
}

func (u *UnreadCounter) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.count
}
