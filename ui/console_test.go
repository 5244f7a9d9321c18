package ui

import (
	"bytes"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/moderation"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2025, 3, 4, 10, 11, 12, 0, time.Local)

func newTestConsole(t *testing.T, words ...string) (*Console, *bytes.Buffer) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mod, err := moderation.NewModerator(words, '*', log)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return NewConsole(log, out, mod, false), out
}

func TestConsole_Render(t *testing.T) {
	tests := []struct {
		name     string
		delivery event.Delivery
		expected string
	}{
		{
			name: "Join event uses server content",
			delivery: event.Delivery{Class: event.ClassEvent, Message: domain.InboundMessage{
				Sender: "bob", Content: "bob joined the chat!", Type: domain.JOIN, Timestamp: at,
			}},
			expected: "[10:11:12] * bob joined the chat!\n",
		},
		{
			name: "Leave event without content",
			delivery: event.Delivery{Class: event.ClassEvent, Message: domain.InboundMessage{
				Sender: "bob", Type: domain.LEAVE, Timestamp: at,
			}},
			expected: "[10:11:12] * bob left\n",
		},
		{
			name: "Broadcast from someone else",
			delivery: event.Delivery{Class: event.ClassBroadcast, Message: domain.InboundMessage{
				Sender: "bob", Content: "hello", Type: domain.CHAT, Timestamp: at,
			}},
			expected: "[10:11:12] bob: hello\n",
		},
		{
			name: "Own broadcast is marked",
			delivery: event.Delivery{Class: event.ClassBroadcast, Own: true, Message: domain.InboundMessage{
				Sender: "alice", Content: "hello", Type: domain.CHAT, Timestamp: at,
			}},
			expected: "[10:11:12] alice (you): hello\n",
		},
		{
			name: "Private message",
			delivery: event.Delivery{Class: event.ClassPrivate, Message: domain.InboundMessage{
				Sender: "bob", Receiver: "alice", Content: "psst", Type: domain.CHAT, Timestamp: at,
			}},
			expected: "[10:11:12] [private] bob: psst\n",
		},
		{
			name: "Control characters are stripped at render time",
			delivery: event.Delivery{Class: event.ClassBroadcast, Message: domain.InboundMessage{
				Sender: "bob\x1b[31m", Content: "line1\nline2\x07", Type: domain.CHAT, Timestamp: at,
			}},
			expected: "[10:11:12] bob[31m: line1 line2\n",
		},
		{
			name:     "Presence list",
			delivery: event.Delivery{Class: event.ClassPresence, Users: []string{"bob", "carol"}},
			expected: "Online: bob, carol\n",
		},
		{
			name:     "Empty presence",
			delivery: event.Delivery{Class: event.ClassPresence},
			expected: "No one else is online\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			console, out := newTestConsole(t)
			console.Observers()[tt.delivery.Class].Observe(tt.delivery)
			require.Equal(t, tt.expected, out.String())
		})
	}
}

func TestConsole_MasksCensoredWords(t *testing.T) {
	req := require.New(t)
	console, out := newTestConsole(t, "snake")

	console.Observers()[event.ClassBroadcast].Observe(event.Delivery{
		Class:   event.ClassBroadcast,
		Message: domain.InboundMessage{Sender: "bob", Content: "a S.N.A.K.E here", Type: domain.CHAT, Timestamp: at},
	})

	req.Equal("[10:11:12] bob: a ********* here\n", out.String())
}

func TestConsole_Status(t *testing.T) {
	req := require.New(t)
	console, out := newTestConsole(t)
	identity := domain.NewIdentity("alice", "support")

	console.Status(domain.Status{State: domain.Connected, Identity: &identity})
	console.Status(domain.Status{State: domain.Reconnecting, Attempt: 2, Delay: 2 * time.Second, Identity: &identity})
	console.Status(domain.Status{State: domain.Disconnected})

	req.Equal(strings.Join([]string{
		"Status: Connected as alice (support)",
		"Status: Connecting (retry in 2s, attempt 2)",
		"Status: Disconnected",
		"",
	}, "\n"), out.String())
}

func TestConsole_Who(t *testing.T) {
	req := require.New(t)
	console, out := newTestConsole(t)

	console.Who([]string{"bob", "carol"}, "carol")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	req.Len(lines, 4)
	req.Contains(lines[0], "User")
	req.Contains(lines[2], "bob")
	req.NotContains(lines[2], "*")
	req.Contains(lines[3], "carol")
	req.Contains(lines[3], "*")
}

func TestConsole_Prompt(t *testing.T) {
	req := require.New(t)
	console, out := newTestConsole(t)

	console.Prompt("")
	console.Prompt("bob")

	req.Equal("> @bob> ", out.String())
}
