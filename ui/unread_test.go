package ui

import (
	"chat-client/domain/event"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnreadCounter(t *testing.T) {
	req := require.New(t)
	var notified []int
	unread := NewUnreadCounter(func(count int) { notified = append(notified, count) })

	// Given the user is present, nothing is counted
	unread.Observe(event.Delivery{Class: event.ClassBroadcast})
	req.Zero(unread.Count())

	// When the user is away
	unread.Away()
	unread.Observe(event.Delivery{Class: event.ClassBroadcast})
	unread.Observe(event.Delivery{Class: event.ClassEvent})

	// Then public traffic is counted and reported
	req.Equal(2, unread.Count())
	req.Equal([]int{1, 2}, notified)

	// And coming back resets the counter
	req.Equal(2, unread.Back())
	unread.Observe(event.Delivery{Class: event.ClassBroadcast})
	req.Zero(unread.Count())
}
