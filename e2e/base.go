package e2e

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/runtime"
	"chat-client/transport"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseSessionSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSessionSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.BrokerURL == "" {
		s.T().Skip("BROKER_URL not set, skipping end-to-end scenarios")
	}
}

// Step prints a colorized header for a scenario step
func (s *BaseSessionSuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Client is one running session plus everything it received.
type Client struct {
	Session  *runtime.Session
	Presence *runtime.Presence

	mu         sync.Mutex
	deliveries []event.Delivery
	cancel     context.CancelFunc
	done       chan struct{}
}

func (c *Client) record(d event.Delivery) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveries = append(c.deliveries, d)
}

// Received returns a copy of the deliveries of the given class.
func (c *Client) Received(class event.Class) []event.Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []event.Delivery
	for _, d := range c.deliveries {
		if d.Class == class {
			out = append(out, d)
		}
	}
	return out
}

// NewClient starts a session against the configured broker and stops it at test cleanup
func (s *BaseSessionSuite) NewClient(t *testing.T) *Client {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	presence := runtime.NewPresence(log)
	router := runtime.NewRouter(log, presence)
	dialer := transport.NewStompDialer(log, transport.StompConfig{
		URL:  s.Config.BrokerURL,
		Host: s.Config.BrokerHost,
	})

	opts := runtime.SessionOptions{Destinations: domain.DefaultDestinations()}
	if s.Config.PresenceURL != "" {
		opts.Fetcher = transport.NewHTTPPresenceFetcher(log, s.Config.PresenceURL)
	}
	client := &Client{
		Session:  runtime.NewSession(log, dialer, router, presence, opts),
		Presence: presence,
		done:     make(chan struct{}),
	}
	for _, class := range []event.Class{event.ClassEvent, event.ClassBroadcast, event.ClassPrivate, event.ClassPresence} {
		router.Observe(class, contract.ObserverFunc(client.record))
	}

	ctx, cancel := context.WithCancel(context.Background())
	client.cancel = cancel
	go func() {
		defer close(client.done)
		_ = client.Session.Run(ctx)
	}()
	t.Cleanup(func() {
		ctx, cancelDisconnect := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelDisconnect()
		_ = client.Session.Disconnect(ctx)
		client.cancel()
		<-client.done
	})
	return client
}

// Join connects the client and waits until the session reports Connected
func (s *BaseSessionSuite) Join(client *Client, name, role string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Require().NoError(client.Session.Connect(ctx, domain.NewIdentity(name, role)))
	s.Require().Eventually(func() bool {
		return client.Session.Status().State == domain.Connected
	}, 10*time.Second, 50*time.Millisecond, "%s never reached Connected", name)
}
