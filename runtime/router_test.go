package runtime

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	deliveries []event.Delivery
}

func (r *recorder) Observe(d event.Delivery) {
	r.deliveries = append(r.deliveries, d)
}

func (r *recorder) classes() []event.Class {
	classes := make([]event.Class, 0, len(r.deliveries))
	for _, d := range r.deliveries {
		classes = append(classes, d.Class)
	}
	return classes
}

func newTestRouter(self string) (*Router, *Presence, *recorder) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	presence := NewPresence(log)
	presence.SetSelf(self)
	router := NewRouter(log, presence)
	rec := &recorder{}
	for _, class := range []event.Class{event.ClassEvent, event.ClassBroadcast, event.ClassPrivate, event.ClassPresence} {
		router.Observe(class, rec)
	}
	return router, presence, rec
}

func TestRouter_Classify(t *testing.T) {
	req := require.New(t)
	router, _, _ := newTestRouter("alice")

	msg, err := router.Classify([]byte(`{"sender":"bob","receiver":"alice","content":"hi","type":"CHAT","timestamp":1700000000000}`))

	req.NoError(err)
	req.Equal(domain.InboundMessage{
		Sender:    "bob",
		Receiver:  "alice",
		Content:   "hi",
		Type:      domain.CHAT,
		Timestamp: time.UnixMilli(1700000000000),
	}, msg)
}

func TestRouter_Classify_DefaultsTimestampToReceipt(t *testing.T) {
	req := require.New(t)
	router, _, _ := newTestRouter("alice")
	received := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	router.now = func() time.Time { return received }

	msg, err := router.Classify([]byte(`{"sender":"bob","content":"hi","type":"CHAT"}`))

	req.NoError(err)
	req.Equal(received, msg.Timestamp)
}

func TestRouter_Classify_TimestampFormats(t *testing.T) {
	req := require.New(t)
	router, _, _ := newTestRouter("alice")
	expected := time.Date(2025, 3, 4, 10, 11, 12, 0, time.Local)

	for _, ts := range []string{`"2025-03-04T10:11:12"`, `"2025-03-04T10:11:12.000"`, `[2025,3,4,10,11,12]`} {
		msg, err := router.Classify([]byte(`{"sender":"bob","content":"hi","type":"CHAT","timestamp":` + ts + `}`))
		req.NoError(err, ts)
		req.True(expected.Equal(msg.Timestamp), ts)
	}

	msg, err := router.Classify([]byte(`{"sender":"bob","content":"hi","type":"CHAT","timestamp":"2025-03-04T10:11:12Z"}`))
	req.NoError(err)
	req.True(time.Date(2025, 3, 4, 10, 11, 12, 0, time.UTC).Equal(msg.Timestamp))
}

func TestRouter_Classify_Malformed(t *testing.T) {
	router, _, _ := newTestRouter("alice")

	tests := []struct {
		name    string
		payload string
	}{
		{name: "Not JSON", payload: `hello`},
		{name: "Missing sender", payload: `{"content":"hi","type":"CHAT"}`},
		{name: "Missing content", payload: `{"sender":"bob","type":"CHAT"}`},
		{name: "Missing type", payload: `{"sender":"bob","content":"hi"}`},
		{name: "Unknown type", payload: `{"sender":"bob","content":"hi","type":"TYPING"}`},
		{name: "Bad timestamp", payload: `{"sender":"bob","content":"hi","type":"CHAT","timestamp":"yesterday"}`},
		{name: "Array payload", payload: `["bob"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := router.Classify([]byte(tt.payload))
			require.ErrorIs(t, err, errors.ErrMalformedPayload)
		})
	}
}

func TestRouter_Route_DispatchTable(t *testing.T) {
	tests := []struct {
		name     string
		origin   domain.Origin
		payload  string
		expected []event.Class
		own      bool
	}{
		{
			name:     "Join on public goes to event consumer",
			origin:   domain.OriginPublic,
			payload:  `{"sender":"bob","content":"bob joined","type":"JOIN"}`,
			expected: []event.Class{event.ClassEvent},
		},
		{
			name:     "Leave on public goes to event consumer",
			origin:   domain.OriginPublic,
			payload:  `{"sender":"bob","content":"bob left","type":"LEAVE"}`,
			expected: []event.Class{event.ClassEvent},
		},
		{
			name:     "Chat on public goes to broadcast consumer",
			origin:   domain.OriginPublic,
			payload:  `{"sender":"bob","content":"hello","type":"CHAT"}`,
			expected: []event.Class{event.ClassBroadcast},
		},
		{
			name:     "Own chat on public is marked own",
			origin:   domain.OriginPublic,
			payload:  `{"sender":"alice","content":"hello","type":"CHAT"}`,
			expected: []event.Class{event.ClassBroadcast},
			own:      true,
		},
		{
			name:     "Chat on private goes to private consumer",
			origin:   domain.OriginPrivate,
			payload:  `{"sender":"bob","receiver":"alice","content":"psst","type":"CHAT"}`,
			expected: []event.Class{event.ClassPrivate},
		},
		{
			name:     "Join on private has no route",
			origin:   domain.OriginPrivate,
			payload:  `{"sender":"bob","content":"joined","type":"JOIN"}`,
			expected: []event.Class{},
		},
		{
			name:     "Malformed payload is dropped",
			origin:   domain.OriginPublic,
			payload:  `{"content":"no sender","type":"CHAT"}`,
			expected: []event.Class{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			router, _, rec := newTestRouter("alice")

			router.Route(tt.origin, []byte(tt.payload))

			req.Equal(tt.expected, rec.classes())
			if len(rec.deliveries) == 1 {
				req.Equal(tt.own, rec.deliveries[0].Own)
				req.Equal(tt.origin, rec.deliveries[0].Origin)
			}
		})
	}
}

func TestRouter_Route_Presence(t *testing.T) {
	req := require.New(t)
	router, presence, rec := newTestRouter("bob")

	// When the presence topic pushes the online list
	router.Route(domain.OriginPresence, []byte(`["alice","bob"]`))

	// Then presence is replaced without self and observers see the new set
	req.Equal([]string{"alice"}, presence.Users())
	req.Equal([]event.Class{event.ClassPresence}, rec.classes())
	req.Equal([]string{"alice"}, rec.deliveries[0].Users)
}

func TestRouter_Route_InvalidPresenceKeepsState(t *testing.T) {
	req := require.New(t)
	router, presence, rec := newTestRouter("bob")
	router.Route(domain.OriginPresence, []byte(`["alice"]`))

	router.Route(domain.OriginPresence, []byte(`"alice"`))

	req.Equal([]string{"alice"}, presence.Users())
	req.Len(rec.deliveries, 1)
}

func TestRouter_Route_MalformedLeavesPresenceAlone(t *testing.T) {
	req := require.New(t)
	router, presence, rec := newTestRouter("bob")
	router.Route(domain.OriginPresence, []byte(`["alice","carol"]`))
	req.NoError(presence.Select("carol"))

	router.Route(domain.OriginPublic, []byte(`{"content":"hi","type":"CHAT"}`))

	req.Equal([]string{"alice", "carol"}, presence.Users())
	selected, _ := presence.Selected()
	req.Equal("carol", selected)
	req.Len(rec.deliveries, 1)
}

func TestRouter_Observe_RegistrationOrder(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	router := NewRouter(log, NewPresence(log))

	var calls []string
	router.
		Observe(event.ClassBroadcast, contract.ObserverFunc(func(event.Delivery) { calls = append(calls, "render") })).
		Observe(event.ClassBroadcast, contract.ObserverFunc(func(event.Delivery) { calls = append(calls, "unread") })).
		Observe(event.ClassPrivate, contract.ObserverFunc(func(event.Delivery) { calls = append(calls, "private") }))

	router.Route(domain.OriginPublic, []byte(`{"sender":"bob","content":"hello","type":"CHAT"}`))

	req.Equal([]string{"render", "unread"}, calls)
}

func TestRouter_Route_ReportsApplied(t *testing.T) {
	req := require.New(t)
	router := NewRouter(slog.Default(), NewPresence(slog.Default()))

	req.True(router.Route(domain.OriginPresence, []byte(`["alice"]`)))
	req.False(router.Route(domain.OriginPresence, []byte(`{"sender":"bob"}`)))
	req.True(router.Route(domain.OriginPublic, []byte(`{"sender":"bob","content":"hi","type":"CHAT"}`)))
	req.False(router.Route(domain.OriginPublic, []byte(`{"content":"hi","type":"CHAT"}`)))
}
