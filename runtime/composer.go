package runtime

import (
	"chat-client/domain"
	"regexp"
	"strings"
)

// privatePattern matches "@name: text". Like the browser client, "." does not cross newlines.
var privatePattern = regexp.MustCompile(`^@([^:]+):\s*(.*)$`)

// Composer turns raw user input into an OutboundIntent.
// Its only sanitation is trimming: escaping is the renderer's job.
type Composer struct{}

func NewComposer() Composer {
	return Composer{}
}

// Compose returns false when the trimmed input is empty.
// selected is the current implicit receiver, empty when none.
func (Composer) Compose(raw string, selected string) (domain.OutboundIntent, bool) {
	text := sanitize(raw)
	if text == "" {
		return domain.OutboundIntent{}, false
	}

	if receiver, content, ok := explicitPrivate(text); ok {
		return domain.Private(receiver, content), true
	}
	if selected != "" {
		return domain.Private(selected, text), true
	}
	return domain.Broadcast(text), true
}

func explicitPrivate(text string) (string, string, bool) {
	match := privatePattern.FindStringSubmatch(text)
	if match == nil {
		return "", "", false
	}
	receiver := strings.TrimSpace(match[1])
	content := sanitize(match[2])
	if receiver == "" || content == "" {
		return "", "", false
	}
	return receiver, content, true
}

func sanitize(text string) string {
	return strings.TrimSpace(text)
}
