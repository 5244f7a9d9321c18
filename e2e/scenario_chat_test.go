package e2e

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseSessionSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) TestPublicAndPrivateExchange() {
	// Unique names keep reruns against a shared server apart
	suffix := uuid.NewString()[:8]
	alice, bob := "alice-"+suffix, "bob-"+suffix
	aliceClient := s.NewClient(s.T())
	bobClient := s.NewClient(s.T())

	s.Run("Step 1: Both users join", func() {
		s.Step(s.T(), "Join alice and bob")
		s.Join(aliceClient, alice, "support")
		s.Join(bobClient, bob, "customer")

		s.Require().Eventually(func() bool {
			return lo.Contains(aliceClient.Presence.Users(), bob)
		}, 10*time.Second, 50*time.Millisecond, "alice never saw bob online")
	})

	s.Run("Step 2: Broadcast reaches everyone", func() {
		s.Step(s.T(), "alice broadcasts")
		text := fmt.Sprintf("hello from %s", alice)
		s.Require().NoError(aliceClient.Session.Submit(context.Background(), text))

		s.Require().Eventually(func() bool {
			return lo.ContainsBy(bobClient.Received(event.ClassBroadcast), func(d event.Delivery) bool {
				return d.Message.Sender == alice && d.Message.Content == text && !d.Own
			})
		}, 10*time.Second, 50*time.Millisecond, "bob never received the broadcast")
		s.Require().Eventually(func() bool {
			return lo.ContainsBy(aliceClient.Received(event.ClassBroadcast), func(d event.Delivery) bool {
				return d.Message.Content == text && d.Own
			})
		}, 10*time.Second, 50*time.Millisecond, "alice never saw her own broadcast")
	})

	s.Run("Step 3: Private message reaches only the receiver", func() {
		s.Step(s.T(), "bob whispers to alice")
		s.Require().NoError(bobClient.Session.Send(domain.Private(alice, "psst")))

		s.Require().Eventually(func() bool {
			return lo.ContainsBy(aliceClient.Received(event.ClassPrivate), func(d event.Delivery) bool {
				return d.Message.Sender == bob && d.Message.Content == "psst"
			})
		}, 10*time.Second, 50*time.Millisecond, "alice never received the private message")
		s.Require().Empty(bobClient.Received(event.ClassPrivate))
	})

	s.Run("Step 4: Leaving is announced", func() {
		s.Step(s.T(), "bob leaves")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Require().NoError(bobClient.Session.Disconnect(ctx))
		s.Require().Equal(domain.Disconnected, bobClient.Session.Status().State)

		s.Require().Eventually(func() bool {
			return lo.ContainsBy(aliceClient.Received(event.ClassEvent), func(d event.Delivery) bool {
				return d.Message.Sender == bob && d.Message.Type == domain.LEAVE
			})
		}, 10*time.Second, 50*time.Millisecond, "alice never saw bob leave")
	})
}
