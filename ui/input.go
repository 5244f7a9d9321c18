package ui

import (
	"bufio"
	"chat-client/domain"
	"chat-client/errors"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"
)

const helpText = `Commands:
  /connect <name> <role>  join the chat
  /leave                  disconnect
  /who                    list online users
  /to <name>              send next messages privately to name
  /all                    send next messages to everyone
  /away, /back            count unread public messages while away
  /status                 show the session status
  /quit                   exit
  @name: text             send one private message`

// SessionControl is what the input loop drives.
type SessionControl interface {
	Connect(ctx context.Context, identity domain.Identity) error
	Disconnect(ctx context.Context) error
	Submit(ctx context.Context, raw string) error
	Status() domain.Status
}

// Roster is the presence view the input loop reads and selects from.
type Roster interface {
	Users() []string
	Select(name string) error
	ClearSelection()
	Selected() (string, bool)
}

// InputWorker reads user lines and turns them into commands or messages.
type InputWorker struct {
	log     *slog.Logger
	in      io.Reader
	console *Console
	session SessionControl
	roster  Roster
	unread  *UnreadCounter
	quit    func()
	lines   chan string
}

func NewInputWorker(
	log *slog.Logger,
	in io.Reader,
	console *Console,
	session SessionControl,
	roster Roster,
	unread *UnreadCounter,
	quit func(),
) *InputWorker {
	return &InputWorker{
		log:     log,
		in:      in,
		console: console,
		session: session,
		roster:  roster,
		unread:  unread,
		quit:    quit,
	}
}

// Run reads lines until ctx is done or the input ends.
// The reader goroutine is started once and survives restarts.
func (w *InputWorker) Run(ctx context.Context) error {
	if w.lines == nil {
		w.lines = make(chan string)
		go w.scan()
	}

	w.prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-w.lines:
			if !ok {
				w.log.Info("Input closed")
				w.quit()
				return nil
			}
			if w.Handle(ctx, line) {
				w.quit()
				return nil
			}
			w.prompt()
		}
	}
}

func (w *InputWorker) scan() {
	defer close(w.lines)
	scanner := bufio.NewScanner(w.in)
	for scanner.Scan() {
		w.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		w.log.Warn("Input read failed", "error", err)
	}
}

// Handle executes one input line and reports whether the user asked to quit.
func (w *InputWorker) Handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		w.submit(ctx, line)
		return false
	}

	fields := strings.Fields(trimmed)
	switch strings.ToLower(fields[0]) {
	case "/connect":
		w.connect(ctx, fields[1:])
	case "/leave":
		if err := w.session.Disconnect(ctx); err != nil {
			w.console.Warn("Disconnect failed: %v", err)
		}
	case "/who":
		selected, _ := w.roster.Selected()
		w.console.Who(w.roster.Users(), selected)
	case "/to":
		w.selectTarget(fields[1:])
	case "/all":
		w.roster.ClearSelection()
		w.console.Notice("Messages now go to everyone")
	case "/away":
		w.unread.Away()
		w.console.Notice("Marked away")
	case "/back":
		w.console.Notice("Welcome back, %d unread message(s)", w.unread.Back())
	case "/status":
		w.console.Status(w.session.Status())
	case "/help":
		w.console.Notice(helpText)
	case "/quit", "/exit":
		return true
	default:
		w.submit(ctx, line)
	}
	return false
}

func (w *InputWorker) connect(ctx context.Context, args []string) {
	if len(args) < 2 {
		w.console.Warn("Usage: /connect <name> <role>")
		return
	}
	identity := domain.NewIdentity(args[0], strings.Join(args[1:], " "))
	err := w.session.Connect(ctx, identity)
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrValidation):
		w.console.Warn("Name and role are required")
	case stderrors.Is(err, errors.ErrSessionActive):
		w.console.Warn("Already connected, use /leave first")
	default:
		w.console.Warn("Connect failed: %v", err)
	}
}

func (w *InputWorker) selectTarget(args []string) {
	if len(args) == 0 {
		w.console.Warn("Usage: /to <name>")
		return
	}
	name := strings.Join(args, " ")
	if err := w.roster.Select(name); err != nil {
		w.console.Warn("%s is not online", name)
		return
	}
	w.console.Notice("Messages now go privately to %s", name)
}

func (w *InputWorker) submit(ctx context.Context, line string) {
	err := w.session.Submit(ctx, line)
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrNotConnected):
		w.console.Warn("Not connected, message not sent")
	default:
		w.console.Warn("Send failed: %v", err)
	}
}

func (w *InputWorker) prompt() {
	selected, _ := w.roster.Selected()
	w.console.Prompt(selected)
}
