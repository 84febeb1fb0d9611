package utils

import (
	"context"
	"log"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers panics so a single bad
// message cannot take down the whole worker.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still alive, logging once
// when it is not so loops can bail out quietly.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Info("Context cancelled, stopping", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// ContainsString reports whether slice contains s.
func ContainsString(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}

// CleanToValidUTF8 strips invalid UTF-8 sequences and NUL bytes that
// Postgres text columns reject.
func CleanToValidUTF8(s string) string {
	if utf8.ValidString(s) && !strings.ContainsRune(s, '\x00') {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}

// SafeText normalizes whitespace and strips control characters from
// free-form text before it is stored or sent onward.
func SafeText(s string) string {
	s = CleanToValidUTF8(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
