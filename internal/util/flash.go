package util

import (
	"github.com/gin-contrib/sessions"
)

// Flash levels
const (
	FlashError = "error"
	FlashInfo  = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

func flashKey(level string) string {
	return "flash_" + level
}

// AddFlash queues a message in the cookie session. The caller saves the session.
func AddFlash(session sessions.Session, level, message string) {
	session.AddFlash(message, flashKey(level))
}

// PopFlashes returns and clears the queued messages of every level.
// The caller saves the session.
func PopFlashes(session sessions.Session) []Flash {
	var out []Flash
	for _, level := range []string{FlashError, FlashInfo} {
		for _, v := range session.Flashes(flashKey(level)) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Level: level, Message: msg})
			}
		}
	}
	return out
}
