package domain

import "strings"

// Destinations holds the logical broker destinations.
// Defaults match a Spring simple broker with "/app" application prefix.
type Destinations struct {
	AppPrefix     string
	PublicTopic   string
	PresenceTopic string
	PrivatePrefix string
}

func DefaultDestinations() Destinations {
	return Destinations{
		AppPrefix:     "/app",
		PublicTopic:   "/topic/public",
		PresenceTopic: "/topic/users",
		PrivatePrefix: "/queue/private.",
	}
}

func (d Destinations) AddUser() string     { return d.app("chat.addUser") }
func (d Destinations) SendMessage() string { return d.app("chat.sendMessage") }
func (d Destinations) SendPrivate() string { return d.app("chat.sendPrivateMessage") }

// PrivateQueue is the queue only name receives private messages on.
func (d Destinations) PrivateQueue(name string) string {
	return d.PrivatePrefix + name
}

func (d Destinations) app(action string) string {
	return strings.TrimSuffix(d.AppPrefix, "/") + "/" + action
}
