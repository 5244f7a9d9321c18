package runtime

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type routeKey struct {
	Type   domain.MessageType
	Origin domain.Origin
}

// routingTable maps (type, origin) to the classification observers are registered under.
// Presence payloads are not messages and bypass the table.
var routingTable = map[routeKey]event.Class{
	{domain.JOIN, domain.OriginPublic}:  event.ClassEvent,
	{domain.LEAVE, domain.OriginPublic}: event.ClassEvent,
	{domain.CHAT, domain.OriginPublic}:  event.ClassBroadcast,
	{domain.CHAT, domain.OriginPrivate}: event.ClassPrivate,
}

// Router classifies inbound payloads and dispatches them to observers.
// Observers of one classification run in registration order.
type Router struct {
	log       *slog.Logger
	presence  *Presence
	now       func() time.Time
	mu        sync.RWMutex
	observers map[event.Class][]contract.Observer
}

func NewRouter(log *slog.Logger, presence *Presence) *Router {
	return &Router{
		log:       log,
		presence:  presence,
		now:       time.Now,
		observers: make(map[event.Class][]contract.Observer),
	}
}

// Observe appends an observer for a classification.
func (r *Router) Observe(class event.Class, observer contract.Observer) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers[class] = append(r.observers[class], observer)
	return r
}

// Route handles one raw payload received on origin and reports whether it was applied.
// Malformed payloads are dropped here so they never reach the session.
func (r *Router) Route(origin domain.Origin, raw []byte) bool {
	if origin == domain.OriginPresence {
		if err := r.presence.Update(raw); err != nil {
			return false
		}
		r.notify(event.Delivery{Class: event.ClassPresence, Origin: origin, Users: r.presence.Users()})
		return true
	}

	msg, err := r.Classify(raw)
	if err != nil {
		r.log.Warn("Inbound payload dropped", "origin", origin, "error", err)
		return false
	}
	r.Dispatch(msg, origin)
	return true
}

func (r *Router) Classify(raw []byte) (domain.InboundMessage, error) {
	var envelope domain.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return domain.InboundMessage{}, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}
	if err := domain.ValidateStruct(envelope); err != nil {
		return domain.InboundMessage{}, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}

	timestamp, err := parseTimestamp(envelope.Timestamp, r.now)
	if err != nil {
		return domain.InboundMessage{}, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}

	return domain.InboundMessage{
		Sender:    envelope.Sender,
		Receiver:  envelope.Receiver,
		Content:   *envelope.Content,
		Type:      envelope.Type,
		Timestamp: timestamp,
	}, nil
}

// Dispatch routes a parsed message by (type, origin).
func (r *Router) Dispatch(msg domain.InboundMessage, origin domain.Origin) {
	class, ok := routingTable[routeKey{Type: msg.Type, Origin: origin}]
	if !ok {
		r.log.Debug("No route for message", "type", msg.Type, "origin", origin)
		return
	}
	r.notify(event.Delivery{
		Class:   class,
		Origin:  origin,
		Message: msg,
		Own:     class == event.ClassBroadcast && msg.Sender == r.presence.Self(),
	})
}

func (r *Router) notify(d event.Delivery) {
	r.mu.RLock()
	observers := append([]contract.Observer(nil), r.observers[d.Class]...)
	r.mu.RUnlock()

	for _, observer := range observers {
		observer.Observe(d)
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp accepts epoch milliseconds, an ISO-8601 string or a Jackson date-time array.
// Local date-times without zone are read in the local zone, as the server emits them.
func parseTimestamp(value any, now func() time.Time) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return now(), nil
	case float64:
		return time.UnixMilli(int64(v)), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return now(), nil
		}
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unsupported timestamp %q", v)
	case []any:
		return dateTimeArray(v)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp %v", v)
	}
}

// dateTimeArray reads [year, month, day, hour, minute, second?, nanos?].
func dateTimeArray(parts []any) (time.Time, error) {
	if len(parts) < 5 || len(parts) > 7 {
		return time.Time{}, fmt.Errorf("unsupported timestamp array of %d fields", len(parts))
	}
	fields := make([]int, 7)
	for i, part := range parts {
		n, ok := part.(float64)
		if !ok {
			return time.Time{}, fmt.Errorf("unsupported timestamp field %v", part)
		}
		fields[i] = int(n)
	}
	return time.Date(fields[0], time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], fields[6], time.Local), nil
}
