package domain

type IntentKind int

const (
	IntentBroadcast IntentKind = iota
	IntentPrivate
	IntentJoin
)

func (k IntentKind) String() string {
	switch k {
	case IntentBroadcast:
		return "broadcast"
	case IntentPrivate:
		return "private"
	case IntentJoin:
		return "join"
	default:
		return "unknown"
	}
}

// OutboundIntent is what the user asked to send, before it is addressed.
type OutboundIntent struct {
	Kind     IntentKind
	Receiver string
	Content  string
}

func Broadcast(content string) OutboundIntent {
	return OutboundIntent{Kind: IntentBroadcast, Content: content}
}

func Private(receiver, content string) OutboundIntent {
	return OutboundIntent{Kind: IntentPrivate, Receiver: receiver, Content: content}
}

func Join() OutboundIntent {
	return OutboundIntent{Kind: IntentJoin}
}

// Destination resolves the application destination this intent is published on.
func (i OutboundIntent) Destination(d Destinations) string {
	switch i.Kind {
	case IntentPrivate:
		return d.SendPrivate()
	case IntentJoin:
		return d.AddUser()
	default:
		return d.SendMessage()
	}
}

// Message shapes the intent into the wire message sent by sender.
func (i OutboundIntent) Message(sender string) OutboundMessage {
	switch i.Kind {
	case IntentJoin:
		return OutboundMessage{Sender: sender, Type: JOIN}
	case IntentPrivate:
		return OutboundMessage{Sender: sender, Receiver: i.Receiver, Content: i.Content, Type: CHAT}
	default:
		return OutboundMessage{Sender: sender, Content: i.Content, Type: CHAT}
	}
}
