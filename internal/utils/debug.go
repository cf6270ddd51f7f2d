package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	debugFile *os.File
	debugOnce sync.Once
	logsDir   string
	logLevel  = zerolog.DebugLevel
	mu        sync.RWMutex

	root atomic.Pointer[zerolog.Logger]
	nop  = zerolog.Nop()
)

// ConfigureDebug sets the directory for debug logs
func ConfigureDebug(dir string) {
	mu.Lock()
	defer mu.Unlock()
	logsDir = dir
}

// SetLevel sets the minimum level written to the debug log. Unknown names
// fall back to debug.
func SetLevel(name string) {
	mu.Lock()
	defer mu.Unlock()
	logLevel = parseLevel(name)
	if l := root.Load(); l != nil {
		lvl := l.Level(logLevel)
		root.Store(&lvl)
	}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.DebugLevel
	}
}

// Logger returns the structured debug logger. It discards everything until a
// logs directory is configured.
func Logger() *zerolog.Logger {
	mu.RLock()
	dir, lvl := logsDir, logLevel
	mu.RUnlock()

	if dir == "" {
		return &nop
	}

	debugOnce.Do(func() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return
		}
		name := fmt.Sprintf("debug-%s.log", time.Now().Format("20060102-150405"))
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return
		}
		debugFile = f
		l := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
		root.Store(&l)
	})

	if l := root.Load(); l != nil {
		return l
	}
	return &nop
}

// Debug writes a message to the debug log in the configured directory
func Debug(format string, args ...any) {
	l := Logger()
	if l == &nop {
		return
	}
	l.Debug().Msg(fmt.Sprintf(format, args...))
}

// CleanupLogs removes all but the newest keep debug logs from the configured
// directory. keep <= 0 leaves the directory untouched.
func CleanupLogs(keep int) error {
	mu.RLock()
	dir := logsDir
	mu.RUnlock()

	if dir == "" || keep <= 0 {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "debug-*.log"))
	if err != nil {
		return err
	}
	if len(matches) <= keep {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(matches)
	var current string
	if debugFile != nil {
		current = debugFile.Name()
	}
	for _, path := range matches[:len(matches)-keep] {
		if path == current {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
