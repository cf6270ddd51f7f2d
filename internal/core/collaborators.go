package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/utils"
)

// Paster synthesizes the paste keystroke in the frontmost application.
type Paster interface {
	Paste(ctx context.Context) error
}

// Notifier reports skipped and failed invocations to the user.
type Notifier interface {
	Notify(title, message string)
}

// HistoryRecorder receives the original payload before it is overwritten.
type HistoryRecorder interface {
	Record(source string, p clipboard.Payload) error
}

// NopPaster does nothing. Used when no display is attached.
type NopPaster struct{}

func (NopPaster) Paste(context.Context) error { return nil }

var execCommand = exec.CommandContext

// pasteCommands lists the keystroke helpers per OS.
var pasteCommands = map[string][]string{
	"darwin": {"osascript", "-e", `tell application "System Events" to keystroke "v" using command down`},
	"linux":  {"xdotool", "key", "--clearmodifiers", "ctrl+v"},
}

// CommandPaster runs an external helper to send the paste keystroke.
type CommandPaster struct {
	Args []string
}

// NewSystemPaster returns the paster for this OS, or NopPaster when no helper
// is known or installed.
func NewSystemPaster() Paster {
	args, ok := pasteCommands[runtime.GOOS]
	if !ok {
		return NopPaster{}
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		utils.Debug("Paste helper %s not found: %v", args[0], err)
		return NopPaster{}
	}
	return &CommandPaster{Args: args}
}

func (p *CommandPaster) Paste(ctx context.Context) error {
	if len(p.Args) == 0 {
		return nil
	}
	out, err := execCommand(ctx, p.Args[0], p.Args[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("paste via %s: %w: %s", p.Args[0], err, out)
	}
	return nil
}

// LogNotifier writes notifications to the debug log and to Out.
type LogNotifier struct {
	mu  sync.Mutex
	Out io.Writer
}

// NewLogNotifier returns a notifier writing to stderr.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{Out: os.Stderr}
}

func (n *LogNotifier) Notify(title, message string) {
	utils.Logger().Warn().Str("title", title).Msg(message)
	if n.Out == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.Out, "clnbrd: %s: %s\n", title, message)
}
