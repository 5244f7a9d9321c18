package main

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/moderation"
	"chat-client/runtime"
	"chat-client/runtime/workers"
	"chat-client/transport"
	"chat-client/ui"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the client, blocks until the user quits or a signal arrives,
// and lets every defer run before main decides the exit code.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Moderation dictionary, optionally persisted
	moderator, err := buildModerator(log, config)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Session and its collaborators
	destinations := domain.Destinations{
		AppPrefix:     config.AppPrefix,
		PublicTopic:   config.TopicPublic,
		PresenceTopic: config.TopicPresence,
		PrivatePrefix: config.QueuePrivatePrefix,
	}
	presence := runtime.NewPresence(log)
	router := runtime.NewRouter(log, presence)
	dialer := transport.NewStompDialer(log, transport.StompConfig{
		URL:            config.BrokerURL,
		Host:           config.BrokerHost,
		HeartBeat:      config.HeartBeat,
		ConnectTimeout: config.ConnectTimeout,
	})
	session := runtime.NewSession(log, dialer, router, presence, runtime.SessionOptions{
		Destinations:  destinations,
		BaseDelay:     config.ReconnectBaseDelay,
		MaxDelay:      config.ReconnectMaxDelay,
		MaxAttempt:    config.ReconnectMaxAttempt,
		MaxReconnects: config.MaxReconnects,
		EventBuffer:   config.EventBufferSize,
		Fetcher:       transport.NewHTTPPresenceFetcher(log, config.PresenceURL),
	})

	// 5. Terminal view: renderer first, extra observers after it
	console := ui.NewConsole(log, os.Stdout, moderator, config.Colours)
	for class, observer := range console.Observers() {
		router.Observe(class, observer)
	}
	unread := ui.NewUnreadCounter(func(count int) {
		console.Notice("(%d unread)", count)
	})
	router.
		Observe(event.ClassEvent, unread).
		Observe(event.ClassBroadcast, unread)
	session.OnStatus(console.Status)

	input := ui.NewInputWorker(log, os.Stdin, console, session, presence, unread, stop)

	// 6. Supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(session, input)
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	// 7. Auto-join when an identity is configured
	if config.Username != "" || config.Role != "" {
		if err := session.Connect(ctx, domain.NewIdentity(config.Username, config.Role)); err != nil {
			stop()
			<-done
			return fmt.Errorf("auto connect failed: %w", err)
		}
	} else {
		console.Notice("Type /connect <name> <role> to join, /help for commands")
	}

	// 8. Wait for Stop
	<-ctx.Done()
	log.Info("Shutting down gracefully...")
	<-done
	log.Info("Program stopped cleanly")
	return nil
}

func buildModerator(log *slog.Logger, config Config) (*moderation.Moderator, error) {
	censorChar := '*'
	if runes := []rune(config.CensorCharacter); len(runes) > 0 {
		censorChar = runes[0]
	}

	words := config.CensoredWords
	if config.ModerationStorePath != "" {
		store, err := moderation.OpenWordStore(config.ModerationStorePath, log)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = store.Close()
		}()
		if err := store.Add(config.CensoredWords...); err != nil {
			return nil, err
		}
		if words, err = store.Words(); err != nil {
			return nil, err
		}
	}
	return moderation.NewModerator(words, censorChar, log)
}
