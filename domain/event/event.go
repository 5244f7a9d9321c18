package event

import (
	"chat-client/domain"
)

// Class is the routing classification a delivery was dispatched under.
type Class string

const (
	ClassEvent     Class = "event"
	ClassBroadcast Class = "broadcast"
	ClassPrivate   Class = "private"
	ClassPresence  Class = "presence"
)

// Delivery is what observers receive from the router.
// Message is zero for presence deliveries, Users is nil otherwise.
type Delivery struct {
	Class   Class
	Origin  domain.Origin
	Message domain.InboundMessage
	Own     bool
	Users   []string
}
