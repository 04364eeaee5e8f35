// Package logger holds the process-wide zerolog logger.
//
// Init is called once by the entry point; packages that need a logger take a
// zerolog.Logger in their constructor, usually obtained with Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger built by Init.
type Options struct {
	// Level is trace, debug, info, warn or error. Anything else means info.
	Level string
	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service, when set, is attached to every entry as the "service" field.
	Service string
}

var (
	mu       sync.RWMutex
	root     zerolog.Logger
	built    bool
	initOnce sync.Once
)

// Init builds the process logger on the first call and returns it. Later calls
// return the existing logger and ignore opts.
func Init(opts Options) zerolog.Logger {
	initOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		level := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(level)

		w := opts.Output
		if w == nil {
			w = os.Stdout
		}
		if opts.Pretty {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		fields := zerolog.New(w).Level(level).With().Timestamp().Caller()
		if opts.Service != "" {
			fields = fields.Str("service", opts.Service)
		}

		mu.Lock()
		root = fields.Logger()
		built = true
		mu.Unlock()
	})
	return Get()
}

// Get returns the process logger. It panics when Init has not run.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !built {
		panic("logger: Get called before Init")
	}
	return root
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset discards the process logger so the next Init builds a new one.
// Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	initOnce = sync.Once{}
	root = zerolog.Logger{}
	built = false
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch lvl, err := zerolog.ParseLevel(s); {
	case err != nil, s == "":
		return zerolog.InfoLevel
	case lvl < zerolog.TraceLevel || lvl > zerolog.ErrorLevel:
		return zerolog.InfoLevel
	default:
		return lvl
	}
}
