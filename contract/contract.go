//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-client/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Channel is one live connection to the broker.
// Calls are fire-and-forget: failures surface through ChannelEvents.
type Channel interface {
	ID() string
	Send(destination string, payload []byte) error
	Subscribe(destination string, handler func(payload []byte)) error
	Close() error
}

// ChannelEvents receives the lifecycle of exactly one Channel.
type ChannelEvents interface {
	OnOpen()
	OnError(err error)
	OnClose(err error)
}

// Dialer opens a Channel without blocking; the handshake result arrives on events.
type Dialer interface {
	Open(ctx context.Context, events ChannelEvents) Channel
}

// PresenceFetcher pulls the current online-user list, raw JSON.
type PresenceFetcher interface {
	FetchPresence(ctx context.Context) ([]byte, error)
}

// Observer is invoked for every delivery of the classification it registered for.
type Observer interface {
	Observe(d event.Delivery)
}

type ObserverFunc func(d event.Delivery)

func (f ObserverFunc) Observe(d event.Delivery) { f(d) }
