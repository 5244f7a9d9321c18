package runtime

import (
	"chat-client/contract"
	"chat-client/domain"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Subscription is one destination bound to a live channel.
type Subscription struct {
	Destination string
	Origin      domain.Origin
	ChannelID   string
}

// Deliver receives a payload together with the binding it was subscribed under.
type Deliver func(binding uint64, origin domain.Origin, payload []byte)

// Registry owns the subscriptions of the current channel.
// Each SubscribeAll opens a new binding; handlers of an older binding
// drop their payloads before they reach Deliver.
type Registry struct {
	mu           sync.RWMutex
	log          *slog.Logger
	destinations domain.Destinations
	deliver      Deliver
	binding      uint64
	active       map[string]Subscription // destination -> subscription
}

func NewRegistry(log *slog.Logger, destinations domain.Destinations, deliver Deliver) *Registry {
	return &Registry{
		log:          log,
		destinations: destinations,
		deliver:      deliver,
		active:       make(map[string]Subscription),
	}
}

// SubscribeAll registers the public topic, the private queue of identity
// and the presence topic on ch, in that order.
// Previous subscriptions are invalidated even if a subscribe fails.
func (r *Registry) SubscribeAll(ch contract.Channel, identity domain.Identity) (uint64, error) {
	r.mu.Lock()
	r.binding++
	binding := r.binding
	r.active = make(map[string]Subscription)
	r.mu.Unlock()

	targets := []Subscription{
		{Destination: r.destinations.PublicTopic, Origin: domain.OriginPublic},
		{Destination: r.destinations.PrivateQueue(identity.Name), Origin: domain.OriginPrivate},
		{Destination: r.destinations.PresenceTopic, Origin: domain.OriginPresence},
	}

	for _, target := range targets {
		if err := ch.Subscribe(target.Destination, r.handler(binding, target.Origin)); err != nil {
			return binding, fmt.Errorf("subscribe %s: %w", target.Destination, err)
		}
		target.ChannelID = ch.ID()

		r.mu.Lock()
		if r.binding == binding {
			r.active[target.Destination] = target
		}
		r.mu.Unlock()
	}

	r.log.Debug("Subscriptions registered", "channel", ch.ID(), "binding", binding)
	return binding, nil
}

func (r *Registry) handler(binding uint64, origin domain.Origin) func(payload []byte) {
	return func(payload []byte) {
		if r.Binding() != binding {
			r.log.Debug("Payload from stale subscription dropped", "origin", origin, "binding", binding)
			return
		}
		r.deliver(binding, origin, payload)
	}
}

// Invalidate retires every subscription of the current binding.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binding++
	r.active = make(map[string]Subscription)
}

func (r *Registry) Binding() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.binding
}

// Active lists the live subscriptions sorted by destination.
func (r *Registry) Active() []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]Subscription, 0, len(r.active))
	for _, sub := range r.active {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Destination < subs[j].Destination })
	return subs
}
