package errors

import "fmt"

var (
	ErrWorkerPanic            = fmt.Errorf("worker panic")
	ErrValidation             = fmt.Errorf("name and role are required")
	ErrMalformedPayload       = fmt.Errorf("malformed payload")
	ErrInvalidPresencePayload = fmt.Errorf("presence payload must be a list or a set")
	ErrConnect                = fmt.Errorf("connect handshake failed")
	ErrTransportClosed        = fmt.Errorf("transport closed")
	ErrNotConnected           = fmt.Errorf("session is not connected")
	ErrSessionActive          = fmt.Errorf("session already active")
	ErrUnknownReceiver        = fmt.Errorf("receiver is not online")
)
