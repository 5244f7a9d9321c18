package moderation

import (
	"fmt"
	"log/slog"
	"strings"
)

// storeLogger redirects badger's printf-style output to the application logger,
// tagged so store noise can be told apart from chat traffic.
type storeLogger struct {
	log *slog.Logger
}

func (l storeLogger) Errorf(format string, args ...any) {
	l.log.Error(l.clean(format, args), "component", "word-store")
}

func (l storeLogger) Warningf(format string, args ...any) {
	l.log.Warn(l.clean(format, args), "component", "word-store")
}

func (l storeLogger) Infof(format string, args ...any) {
	l.log.Debug(l.clean(format, args), "component", "word-store")
}

func (l storeLogger) Debugf(format string, args ...any) {
	l.log.Debug(l.clean(format, args), "component", "word-store")
}

// badger terminates most lines with a newline
func (l storeLogger) clean(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
