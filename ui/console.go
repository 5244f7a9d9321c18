// Package ui is the terminal front end of the chat client.
// It observes routed deliveries and session status and prints them.
// It never modifies session state except through the commands of InputWorker.
package ui

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/moderation"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const timeLayout = "15:04:05"

var (
	styleEvent   = color.New(color.FgGray)
	styleSender  = color.New(color.FgCyan, color.OpBold)
	styleOwn     = color.New(color.FgGreen, color.OpBold)
	stylePrivate = color.New(color.FgMagenta, color.OpBold)
	styleStatus  = color.New(color.BgBlack, color.FgYellow)
	styleWarn    = color.New(color.FgRed)
)

// Console renders everything the user sees. Output is serialized.
type Console struct {
	log       *slog.Logger
	mu        sync.Mutex
	out       io.Writer
	moderator *moderation.Moderator
	colours   bool
}

func NewConsole(log *slog.Logger, out io.Writer, moderator *moderation.Moderator, colours bool) *Console {
	return &Console{log: log, out: out, moderator: moderator, colours: colours}
}

// Observers returns the console renderers keyed by the classification they display.
func (c *Console) Observers() map[event.Class]contract.Observer {
	return map[event.Class]contract.Observer{
		event.ClassEvent:     contract.ObserverFunc(c.renderEvent),
		event.ClassBroadcast: contract.ObserverFunc(c.renderBroadcast),
		event.ClassPrivate:   contract.ObserverFunc(c.renderPrivate),
		event.ClassPresence:  contract.ObserverFunc(c.renderPresence),
	}
}

func (c *Console) renderEvent(d event.Delivery) {
	msg := d.Message
	text := c.clean(msg.Content)
	if text == "" {
		switch msg.Type {
		case domain.JOIN:
			text = c.clean(msg.Sender) + " joined"
		case domain.LEAVE:
			text = c.clean(msg.Sender) + " left"
		}
	}
	c.println(c.paint(styleEvent, fmt.Sprintf("[%s] * %s", stamp(msg.Timestamp), text)))
}

func (c *Console) renderBroadcast(d event.Delivery) {
	msg := d.Message
	sender := c.paint(styleSender, c.clean(msg.Sender))
	if d.Own {
		sender = c.paint(styleOwn, c.clean(msg.Sender)+" (you)")
	}
	c.println(fmt.Sprintf("[%s] %s: %s", stamp(msg.Timestamp), sender, c.clean(msg.Content)))
}

func (c *Console) renderPrivate(d event.Delivery) {
	msg := d.Message
	tag := c.paint(stylePrivate, "[private] "+c.clean(msg.Sender))
	c.println(fmt.Sprintf("[%s] %s: %s", stamp(msg.Timestamp), tag, c.clean(msg.Content)))
}

func (c *Console) renderPresence(d event.Delivery) {
	if len(d.Users) == 0 {
		c.println(c.paint(styleEvent, "No one else is online"))
		return
	}
	names := make([]string, 0, len(d.Users))
	for _, u := range d.Users {
		names = append(names, c.clean(u))
	}
	c.println(c.paint(styleEvent, "Online: "+strings.Join(names, ", ")))
}

// Status prints the persistent session status line.
func (c *Console) Status(s domain.Status) {
	line := "Status: " + s.Text()
	switch {
	case s.State == domain.Connected && s.Identity != nil:
		line += fmt.Sprintf(" as %s (%s)", c.clean(s.Identity.Name), c.clean(s.Identity.Role))
	case s.State == domain.Reconnecting:
		line += fmt.Sprintf(" (retry in %s, attempt %d)", s.Delay, s.Attempt)
	}
	c.println(c.paint(styleStatus, line))
}

// Who prints the online users, marking the selected private target.
func (c *Console) Who(users []string, selected string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(users) == 0 {
		fmt.Fprintln(c.out, "No one else is online")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"#", "User", "Target"})
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for i, u := range users {
		target := ""
		if u == selected {
			target = "*"
		}
		table.Append([]string{strconv.Itoa(i + 1), c.clean(u), target})
	}
	table.Render()
}

func (c *Console) Notice(format string, args ...any) {
	c.println(fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...any) {
	c.println(c.paint(styleWarn, fmt.Sprintf(format, args...)))
}

// Prompt shows where the next line will be sent.
func (c *Console) Prompt(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if target == "" {
		fmt.Fprint(c.out, "> ")
		return
	}
	fmt.Fprintf(c.out, "@%s> ", c.clean(target))
}

// clean is applied to every remote string before it reaches the terminal.
func (c *Console) clean(text string) string {
	text = stripControl(text)
	if c.moderator == nil {
		return text
	}
	masked, words := c.moderator.Censor(text)
	if len(words) > 0 {
		c.log.Debug("Masked words in rendered text", "count", len(words))
	}
	return masked
}

func (c *Console) paint(style color.Style, text string) string {
	if !c.colours {
		return text
	}
	return style.Render(text)
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// stripControl drops terminal control sequences; line breaks become spaces.
func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, text)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Local().Format(timeLayout)
}
