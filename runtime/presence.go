package runtime

import (
	"chat-client/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Presence keeps the last online-user set pushed by the broker
// and the receiver selected for implicit private messages.
// Reads happen from the UI goroutine, writes from the session loop.
type Presence struct {
	log      *slog.Logger
	mu       sync.RWMutex
	self     string
	users    []string
	selected string
}

func NewPresence(log *slog.Logger) *Presence {
	return &Presence{log: log}
}

// Update parses a list or set payload and replaces the presence set.
// On error the previous set is kept untouched.
func (p *Presence) Update(raw []byte) error {
	users, err := parsePresence(raw)
	if err != nil {
		p.log.Warn("Presence payload rejected", "error", err)
		return err
	}
	p.Replace(users)
	return nil
}

// Replace swaps the whole set, dropping self and clearing a selection no longer online.
func (p *Presence) Replace(users []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	filtered := lo.Uniq(lo.Filter(users, func(u string, _ int) bool {
		return u != "" && u != p.self
	}))
	sort.Strings(filtered)
	p.users = filtered

	if p.selected != "" && !lo.Contains(p.users, p.selected) {
		p.log.Debug("Selected receiver left", "receiver", p.selected)
		p.selected = ""
	}
}

// Select chooses an online user as implicit private receiver.
func (p *Presence) Select(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !lo.Contains(p.users, name) {
		return fmt.Errorf("%w: %s", errors.ErrUnknownReceiver, name)
	}
	p.selected = name
	return nil
}

func (p *Presence) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = ""
}

func (p *Presence) Selected() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected, p.selected != ""
}

func (p *Presence) Users() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.users...)
}

func (p *Presence) Self() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.self
}

// SetSelf records who we are and removes that name from the current set.
func (p *Presence) SetSelf(name string) {
	p.mu.Lock()
	p.self = name
	users := p.users
	p.mu.Unlock()
	p.Replace(users)
}

// Reset forgets everything, used on explicit disconnect.
func (p *Presence) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.self = ""
	p.users = nil
	p.selected = ""
}

// parsePresence accepts a JSON array of names or a JSON object used as a set
// (keys are names, values true or null).
// null entries are skipped, any other non-string entry rejects the payload.
func parsePresence(raw []byte) ([]string, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPresencePayload, err)
	}

	switch v := decoded.(type) {
	case []any:
		users := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: entry %v is not a name", errors.ErrInvalidPresencePayload, item)
			}
			users = append(users, name)
		}
		return users, nil
	case map[string]any:
		// a serialized set maps each member to true; anything else is another payload
		for name, member := range v {
			if member != nil && member != true {
				return nil, fmt.Errorf("%w: %q is not a set member", errors.ErrInvalidPresencePayload, name)
			}
		}
		return lo.Keys(v), nil
	default:
		return nil, errors.ErrInvalidPresencePayload
	}
}
