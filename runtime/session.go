package runtime

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/errors"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultEventBuffer = 256

// Scheduler runs fire once after d and returns a function cancelling it.
type Scheduler func(d time.Duration, fire func()) (stop func() bool)

func afterFunc(d time.Duration, fire func()) func() bool {
	return time.AfterFunc(d, fire).Stop
}

type SessionOptions struct {
	Destinations  domain.Destinations
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	MaxAttempt    int
	MaxReconnects int // 0 retries forever
	EventBuffer   int
	Fetcher       contract.PresenceFetcher // optional presence priming
	Schedule      Scheduler
}

// Session drives the single logical connection to the broker.
// Every state change happens on the Run goroutine: commands, channel
// callbacks, reconnect timers and inbound payloads are all posted to
// one queue and handled in order.
type Session struct {
	log       *slog.Logger
	dialer    contract.Dialer
	router    *Router
	presence  *Presence
	registry  *Registry
	composer  Composer
	fetcher   contract.PresenceFetcher
	dests     domain.Destinations
	backoff   *Backoff
	schedule  Scheduler
	maxRetry  int
	events    chan sessionEvent
	done      chan struct{}
	closeOnce sync.Once

	// owned by the loop
	state      domain.State
	identity   *domain.Identity
	channel    contract.Channel
	gen        uint64
	timerGen   uint64
	stopTimer  func() bool
	reconnects int
	pushed     bool

	mu       sync.RWMutex
	snapshot snapshot

	obsMu     sync.RWMutex
	observers []func(domain.Status)
}

type snapshot struct {
	status   domain.Status
	channel  contract.Channel
	identity *domain.Identity
}

func NewSession(log *slog.Logger, dialer contract.Dialer, router *Router, presence *Presence, opts SessionOptions) *Session {
	if opts.Destinations == (domain.Destinations{}) {
		opts.Destinations = domain.DefaultDestinations()
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}
	if opts.Schedule == nil {
		opts.Schedule = afterFunc
	}

	s := &Session{
		log:      log,
		dialer:   dialer,
		router:   router,
		presence: presence,
		composer: NewComposer(),
		fetcher:  opts.Fetcher,
		dests:    opts.Destinations,
		backoff:  NewBackoff(opts.BaseDelay, opts.MaxDelay, opts.MaxAttempt),
		schedule: opts.Schedule,
		maxRetry: opts.MaxReconnects,
		events:   make(chan sessionEvent, opts.EventBuffer),
		done:     make(chan struct{}),
		state:    domain.Disconnected,
	}
	s.registry = NewRegistry(log, opts.Destinations, func(binding uint64, origin domain.Origin, payload []byte) {
		s.post(inbound{binding: binding, origin: origin, payload: payload})
	})
	s.snapshot.status = domain.Status{State: domain.Disconnected}
	return s
}

// Run is the session loop. It returns nil once ctx is done, after closing the channel.
func (s *Session) Run(ctx context.Context) error {
	s.log.Info("Session loop started")
	for {
		select {
		case <-ctx.Done():
			s.teardown()
			s.publish()
			s.closeOnce.Do(func() { close(s.done) })
			s.log.Info("Session loop stopped")
			return nil
		case ev := <-s.events:
			s.handle(ctx, ev)
		}
	}
}

// Connect starts a session for identity. Validation happens before anything is queued.
func (s *Session) Connect(ctx context.Context, identity domain.Identity) error {
	identity = domain.NewIdentity(identity.Name, identity.Role)
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	reply := make(chan error, 1)
	if err := s.request(ctx, connectCmd{identity: identity, reply: reply}); err != nil {
		return err
	}
	return s.await(ctx, reply)
}

// Disconnect forces the Disconnected state and cancels any pending reconnect.
func (s *Session) Disconnect(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := s.request(ctx, disconnectCmd{reply: reply}); err != nil {
		return err
	}
	return s.await(ctx, reply)
}

// Submit composes raw user input and sends it. Blank input is ignored.
func (s *Session) Submit(ctx context.Context, raw string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	selected, _ := s.presence.Selected()
	intent, ok := s.composer.Compose(raw, selected)
	if !ok {
		return nil
	}
	return s.Send(intent)
}

// Send publishes intent on the channel current at call time.
func (s *Session) Send(intent domain.OutboundIntent) error {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap.status.State != domain.Connected || snap.channel == nil || snap.identity == nil {
		return errors.ErrNotConnected
	}
	return s.sendOn(snap.channel, snap.identity.Name, intent)
}

func (s *Session) Status() domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.status
}

// OnStatus registers fn for every status change. fn runs on the session loop.
func (s *Session) OnStatus(fn func(domain.Status)) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Session) Registry() *Registry {
	return s.registry
}

func (s *Session) request(ctx context.Context, ev sessionEvent) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return errors.ErrTransportClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) await(ctx context.Context, reply chan error) error {
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return errors.ErrTransportClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post is used by callbacks that cannot fail: a stopped loop drops the event.
func (s *Session) post(ev sessionEvent) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) handle(ctx context.Context, ev sessionEvent) {
	switch e := ev.(type) {
	case connectCmd:
		e.reply <- s.onConnect(ctx, e.identity)
	case disconnectCmd:
		s.teardown()
		s.publish()
		e.reply <- nil
	case channelOpened:
		s.onOpened(ctx, e)
	case channelFailed:
		s.onFailed(e)
	case timerFired:
		s.onTimer(ctx, e)
	case inbound:
		s.onInbound(e)
	case presenceSnapshot:
		s.onSnapshot(e)
	}
}

func (s *Session) onConnect(ctx context.Context, identity domain.Identity) error {
	if s.state != domain.Disconnected {
		return errors.ErrSessionActive
	}
	s.identity = &identity
	s.presence.SetSelf(identity.Name)
	s.backoff.Reset()
	s.reconnects = 0
	s.open(ctx)
	return nil
}

func (s *Session) open(ctx context.Context) {
	s.gen++
	s.pushed = false
	s.state = domain.Connecting
	s.channel = s.dialer.Open(ctx, channelEvents{session: s, gen: s.gen})
	s.log.Info("Opening channel", "channel", s.channel.ID(), "user", s.identity.Name)
	s.publish()
}

func (s *Session) onOpened(ctx context.Context, e channelOpened) {
	if e.gen != s.gen || s.state != domain.Connecting {
		s.log.Debug("Stale open ignored", "gen", e.gen)
		return
	}

	s.cancelTimer()
	s.backoff.Reset()
	s.reconnects = 0
	s.state = domain.Connected

	if _, err := s.registry.SubscribeAll(s.channel, *s.identity); err != nil {
		s.fail(err)
		return
	}
	if err := s.sendOn(s.channel, s.identity.Name, domain.Join()); err != nil {
		s.fail(err)
		return
	}
	s.log.Info("Session connected", "channel", s.channel.ID(), "user", s.identity.Name)
	s.publish()
	s.prime(ctx)
}

// prime asks the pull endpoint once; a push received meanwhile wins.
func (s *Session) prime(ctx context.Context) {
	if s.fetcher == nil {
		return
	}
	gen := s.gen
	go func() {
		raw, err := s.fetcher.FetchPresence(ctx)
		if err != nil {
			s.log.Warn("Presence priming failed", "error", err)
			return
		}
		s.post(presenceSnapshot{gen: gen, raw: raw})
	}()
}

func (s *Session) onFailed(e channelFailed) {
	if e.gen != s.gen {
		s.log.Debug("Stale channel failure ignored", "gen", e.gen, "error", e.err)
		return
	}
	if s.state != domain.Connecting && s.state != domain.Connected {
		return
	}
	s.fail(e.err)
}

// fail retires the current channel and schedules exactly one reconnect.
func (s *Session) fail(err error) {
	s.log.Warn("Channel lost", "error", err)
	s.closeChannel()

	s.reconnects++
	if s.maxRetry > 0 && s.reconnects > s.maxRetry {
		s.log.Error("Giving up after reconnects", "count", s.maxRetry)
		s.teardown()
		s.publish()
		return
	}

	delay := s.backoff.Next()
	s.state = domain.Reconnecting
	s.scheduleReconnect(delay)
	s.publishWith(delay)
}

func (s *Session) scheduleReconnect(delay time.Duration) {
	s.cancelTimer()
	timerGen := s.timerGen
	s.stopTimer = s.schedule(delay, func() {
		s.post(timerFired{timerGen: timerGen})
	})
	s.log.Info("Reconnect scheduled", "delay", delay, "attempt", s.backoff.Attempt())
}

func (s *Session) cancelTimer() {
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
	s.timerGen++
}

func (s *Session) onTimer(ctx context.Context, e timerFired) {
	if e.timerGen != s.timerGen || s.state != domain.Reconnecting || s.identity == nil {
		s.log.Debug("Stale reconnect timer ignored")
		return
	}
	s.stopTimer = nil
	s.open(ctx)
}

func (s *Session) onInbound(e inbound) {
	if e.binding != s.registry.Binding() || s.state != domain.Connected {
		return
	}
	if s.router.Route(e.origin, e.payload) && e.origin == domain.OriginPresence {
		s.pushed = true
	}
}

func (s *Session) onSnapshot(e presenceSnapshot) {
	if e.gen != s.gen || s.state != domain.Connected || s.pushed {
		return
	}
	s.pushed = s.router.Route(domain.OriginPresence, e.raw)
}

// teardown brings the loop back to Disconnected without scheduling anything.
func (s *Session) teardown() {
	s.cancelTimer()
	s.closeChannel()
	s.presence.Reset()
	s.identity = nil
	s.backoff.Reset()
	s.reconnects = 0
	s.state = domain.Disconnected
}

func (s *Session) closeChannel() {
	s.registry.Invalidate()
	if s.channel == nil {
		return
	}
	if err := s.channel.Close(); err != nil {
		s.log.Debug("Channel close", "channel", s.channel.ID(), "error", err)
	}
	s.channel = nil
	// later callbacks of the closed channel are stale from now on
	s.gen++
}

func (s *Session) sendOn(ch contract.Channel, sender string, intent domain.OutboundIntent) error {
	payload, err := json.Marshal(intent.Message(sender))
	if err != nil {
		return err
	}
	return ch.Send(intent.Destination(s.dests), payload)
}

func (s *Session) publish() {
	s.publishWith(0)
}

func (s *Session) publishWith(delay time.Duration) {
	status := domain.Status{State: s.state, Attempt: s.backoff.Attempt(), Delay: delay}
	if s.identity != nil {
		identity := *s.identity
		status.Identity = &identity
	}

	s.mu.Lock()
	s.snapshot = snapshot{status: status, channel: s.channel, identity: status.Identity}
	s.mu.Unlock()

	s.obsMu.RLock()
	observers := append([]func(domain.Status){}, s.observers...)
	s.obsMu.RUnlock()
	for _, fn := range observers {
		fn(status)
	}
}

type sessionEvent interface{}

type connectCmd struct {
	identity domain.Identity
	reply    chan error
}

type disconnectCmd struct {
	reply chan error
}

type channelOpened struct {
	gen uint64
}

type channelFailed struct {
	gen uint64
	err error
}

type timerFired struct {
	timerGen uint64
}

type inbound struct {
	binding uint64
	origin  domain.Origin
	payload []byte
}

type presenceSnapshot struct {
	gen uint64
	raw []byte
}

// channelEvents tags callbacks with the generation of the channel they belong to.
type channelEvents struct {
	session *Session
	gen     uint64
}

func (c channelEvents) OnOpen() {
	c.session.post(channelOpened{gen: c.gen})
}

func (c channelEvents) OnError(err error) {
	c.session.post(channelFailed{gen: c.gen, err: err})
}

func (c channelEvents) OnClose(err error) {
	if err == nil {
		err = errors.ErrTransportClosed
	}
	c.session.post(channelFailed{gen: c.gen, err: err})
}
