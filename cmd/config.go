package main

import "time"

type Config struct {
	BrokerURL      string        `env:"CHAT_BROKER_URL,default=ws://localhost:8080/ws/websocket"`
	BrokerHost     string        `env:"CHAT_BROKER_HOST,default=localhost"`
	PresenceURL    string        `env:"CHAT_PRESENCE_URL,default=http://localhost:8080/chat/users"`
	Username       string        `env:"CHAT_USERNAME"`
	Role           string        `env:"CHAT_ROLE"`
	HeartBeat      time.Duration `env:"CHAT_HEARTBEAT,default=20s"`
	ConnectTimeout time.Duration `env:"CHAT_CONNECT_TIMEOUT,default=10s"`

	ReconnectBaseDelay  time.Duration `env:"RECONNECT_BASE_DELAY,default=1s"`
	ReconnectMaxDelay   time.Duration `env:"RECONNECT_MAX_DELAY,default=15s"`
	ReconnectMaxAttempt int           `env:"RECONNECT_MAX_ATTEMPT,default=10"`
	MaxReconnects       int           `env:"MAX_RECONNECTS,default=0"`
	EventBufferSize     int           `env:"EVENT_BUFFER_SIZE,default=256"`
	RestartInterval     time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	AppPrefix          string `env:"APP_PREFIX,default=/app"`
	TopicPublic        string `env:"TOPIC_PUBLIC,default=/topic/public"`
	TopicPresence      string `env:"TOPIC_PRESENCE,default=/topic/users"`
	QueuePrivatePrefix string `env:"QUEUE_PRIVATE_PREFIX,default=/queue/private."`

	CensoredWords       []string `env:"CENSORED_WORDS"` // pipe separated
	CensorCharacter     string   `env:"CENSOR_CHARACTER,default=*"`
	ModerationStorePath string   `env:"MODERATION_STORE_PATH"`
	Colours             bool     `env:"CHAT_COLOURS,default=true"`
	LogLevel            string   `env:"LOG_LEVEL,default=WARN"`
}
