// Package domain contains core concepts of the chat client.
// This file defines inbound messages and their wire envelope.
// Messages are immutable once parsed.
package domain

import (
	"time"
)

type MessageType string

const (
	JOIN  MessageType = "JOIN"
	LEAVE MessageType = "LEAVE"
	CHAT  MessageType = "CHAT"
)

// Origin is the subscription a payload arrived on.
type Origin string

const (
	OriginPublic   Origin = "public"
	OriginPrivate  Origin = "private"
	OriginPresence Origin = "presence"
)

// InboundMessage represents an immutable message pushed by the broker.
type InboundMessage struct {
	Sender    string
	Receiver  string
	Content   string
	Type      MessageType
	Timestamp time.Time
}

func (m InboundMessage) IsPrivate() bool {
	return m.Receiver != ""
}

// Envelope is the JSON shape exchanged with the broker in both directions.
// Timestamp is kept raw because servers emit either epoch millis or ISO strings.
type Envelope struct {
	Sender    string      `json:"sender" validate:"required"`
	Receiver  string      `json:"receiver,omitempty"`
	Content   *string     `json:"content" validate:"required"`
	Type      MessageType `json:"type" validate:"required,oneof=JOIN LEAVE CHAT"`
	Timestamp any         `json:"timestamp,omitempty"`
}

// OutboundMessage is what the client publishes on application destinations.
type OutboundMessage struct {
	Sender   string      `json:"sender"`
	Receiver string      `json:"receiver,omitempty"`
	Content  string      `json:"content,omitempty"`
	Type     MessageType `json:"type"`
}
