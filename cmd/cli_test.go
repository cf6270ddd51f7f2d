package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/core"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/state"
	"github.com/clnbrd/clnbrd/internal/testutil"
)

// setupCLI points every clnbrd directory at a temp dir and swaps the system
// clipboard for a fake.
func setupCLI(t *testing.T, p clipboard.Payload) *testutil.FakeBoard {
	t.Helper()
	testutil.Serial(t)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(dir, "runtime"))
	t.Setenv("CLNBRD_TOKEN", "")

	board := testutil.NewFakeBoard(p)
	testutil.Swap(t, &newBoard, func() clipboard.Board { return board })

	require.NoError(t, initializeGlobalState())
	t.Cleanup(state.CloseDB)
	return board
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTextCmd(t *testing.T) {
	setupCLI(t, nil)

	out, errOut, err := runCLI(t, "Hello  world\u200b", "text", "--explain")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
	assert.Contains(t, errOut, "context: on-demand")
	assert.Contains(t, errOut, string(rules.StageRemoveZeroWidth))
}

func TestTextCmd_AutoWithNothingActive(t *testing.T) {
	setupCLI(t, nil)

	out, _, err := runCLI(t, "Hello  world", "text", "--auto")
	require.NoError(t, err)
	assert.Equal(t, "Hello  world", out, "no stage is AutoClean by default")
}

func TestReadInput_TooLarge(t *testing.T) {
	setupCLI(t, nil)
	GlobalSettings.Safety.MaxClipboardSizeMB = 1

	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(strings.Repeat("a", 1<<20+1)))
	_, err := readInput(cmd, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPayloadTooLarge))

	cmd.SetIn(strings.NewReader(strings.Repeat("a", 1<<20)))
	got, err := readInput(cmd, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1<<20)
}

func TestURLCmd(t *testing.T) {
	setupCLI(t, nil)

	out, _, err := runCLI(t, "", "url", "https://example.com/a?id=5&utm_medium=x&page=2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a?id=5&page=2\n", out)

	out, _, err = runCLI(t, "see https://example.com/?utm_source=x now", "url")
	require.NoError(t, err)
	assert.Equal(t, "see https://example.com/ now", out)
}

func TestCleanCmd(t *testing.T) {
	board := setupCLI(t, clipboard.PlainText("Hello  world\u200b"))

	out, _, err := runCLI(t, "", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleaned")
	assert.Equal(t, "Hello world", board.Text())

	out, _, err = runCLI(t, "", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "already clean")

	n, err := GlobalHistory.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n, "each on-demand clean records what it read")
}

func TestNewWatchService_NoHistory(t *testing.T) {
	board := setupCLI(t, clipboard.PlainText("a  b"))
	_, err := GlobalStore.Update(func(d *rules.Draft) error {
		d.SetMode(rules.StageNormalizeSpaces, rules.AutoClean)
		return nil
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		noHistory bool
		want      int
	}{
		{"history on", false, 1},
		{"no-history", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GlobalHistory.Clear()
			require.NoError(t, err)
			board.Copy(clipboard.PlainText("x  y"))

			svc := newWatchService(tt.noHistory)
			defer func() { _ = svc.Shutdown() }()
			res, err := svc.Clean(context.Background(), rules.AutoCopy)
			require.NoError(t, err)
			assert.True(t, res.Written)
			assert.Equal(t, "x y", board.Text())

			n, err := GlobalHistory.Count()
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestCleanCmd_NoTextIsQuiet(t *testing.T) {
	board := setupCLI(t, clipboard.Payload{{Format: clipboard.FormatImage, Data: []byte{0x89, 'P', 'N', 'G'}}})

	out, errOut, err := runCLI(t, "", "clean")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotEmpty(t, errOut)
	assert.Empty(t, board.Writes())
}

func TestRulesCommands(t *testing.T) {
	setupCLI(t, nil)

	_, _, err := runCLI(t, "", "rules", "mode", string(rules.StageRemoveEmojis), "AutoClean")
	require.NoError(t, err)
	_, _, err = runCLI(t, "", "rules", "disable", string(rules.StageNormalizeSpaces))
	require.NoError(t, err)

	snap := GlobalStore.Snapshot()
	assert.Equal(t, rules.AutoClean, snap.Config(rules.StageRemoveEmojis).Mode)
	assert.False(t, snap.Config(rules.StageNormalizeSpaces).Enabled)

	out, _, err := runCLI(t, "", "rules", "list", "--json")
	require.NoError(t, err)
	var view rulesView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	byID := map[rules.StageID]stageView{}
	for _, s := range view.Stages {
		byID[s.ID] = s
	}
	assert.Equal(t, rules.AutoClean, byID[rules.StageRemoveEmojis].Mode)
	assert.False(t, byID[rules.StageNormalizeSpaces].On)

	_, _, err = runCLI(t, "", "rules", "custom", "add", "foo", "bar")
	require.NoError(t, err)
	out, _, err = runCLI(t, "", "rules", "custom", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"foo" -> "bar"`)

	out, _, err = runCLI(t, "foo  baz", "text")
	require.NoError(t, err)
	assert.Equal(t, "bar  baz", out, "custom rule applied, spaces left alone")

	_, _, err = runCLI(t, "", "rules", "enable", "nope")
	assert.Error(t, err)
}

func TestProfileCommands(t *testing.T) {
	setupCLI(t, nil)

	out, _, err := runCLI(t, "", "profile", "create", "Work")
	require.NoError(t, err)
	assert.Contains(t, out, "Created profile Work")

	_, _, err = runCLI(t, "", "profile", "use", "Work")
	require.NoError(t, err)
	assert.Equal(t, "Work", activeProfileName())

	_, _, err = runCLI(t, "", "rules", "emdash", ", ")
	require.NoError(t, err)

	out, _, err = runCLI(t, "", "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* ")
	assert.Contains(t, out, "Work")

	p, err := GlobalProfiles.Find("Work")
	require.NoError(t, err)
	assert.Equal(t, ", ", p.Rules.EmdashReplacement, "edits land in the active profile")
}

func TestHistoryCommands(t *testing.T) {
	board := setupCLI(t, nil)

	it, _, err := GlobalHistory.Add("copy", clipboard.PlainText("remember me"))
	require.NoError(t, err)
	ref := it.ID[:8]

	out, _, err := runCLI(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, ref)
	assert.Contains(t, out, "remember me")

	out, _, err = runCLI(t, "", "history", "show", ref)
	require.NoError(t, err)
	assert.Equal(t, "remember me\n", out)

	_, _, err = runCLI(t, "", "history", "restore", ref)
	require.NoError(t, err)
	assert.Equal(t, "remember me", board.Text())

	_, _, err = runCLI(t, "", "history", "rm", ref)
	require.NoError(t, err)
	n, err := GlobalHistory.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	out, _, err = runCLI(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "History is empty")
}

func TestResolveAPIConnection(t *testing.T) {
	setupCLI(t, nil)

	_, _, err := resolveAPIConnection("", "")
	assert.Error(t, err, "no port file")

	saveActivePort(4321)
	t.Cleanup(removeActivePort)
	assert.Equal(t, 4321, readActivePort())

	base, token, err := resolveAPIConnection("", "")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:4321", base)
	assert.Equal(t, ensureAuthToken(), token)

	_, _, err = resolveAPIConnection("10.0.0.2:1760", "")
	assert.Error(t, err, "local token is not sent to other hosts")

	t.Setenv("CLNBRD_TOKEN", "from-env")
	base, token, err = resolveAPIConnection("10.0.0.2:1760", "")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:1760", base)
	assert.Equal(t, "from-env", token)

	_, token, err = resolveAPIConnection("[::1]:1760", "flag")
	require.NoError(t, err)
	assert.Equal(t, "flag", token)
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name string
		msg  any
		want string
	}{
		{
			name: "cleaned",
			msg: core.CleanedMsg{Context: "auto", Stages: []rules.StageID{rules.StageRemoveZeroWidth},
				InputRunes: 12, OutputRunes: 11, Written: true, Elapsed: time.Millisecond},
			want: "Cleaned [auto] 12 -> 11 chars:",
		},
		{
			name: "pasted",
			msg:  core.CleanedMsg{Context: "on-demand", Written: true, Pasted: true},
			want: "Pasted [on-demand] 0 -> 0 chars: no changes",
		},
		{
			name: "skipped",
			msg:  core.SkippedMsg{Context: "auto", Reason: "clipboard holds no text"},
			want: "Skipped [auto]: clipboard holds no text",
		},
		{
			name: "error",
			msg:  core.ErrorMsg{Context: "on-demand", Err: "boom"},
			want: "Error [on-demand]: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, formatEvent(tt.msg), tt.want)
		})
	}
	assert.Empty(t, formatEvent("unknown"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&core.PayloadTooLargeError{Size: 2, Limit: 1}, 413},
		{core.ErrExtractionTimeout, 504},
		{core.ErrNoText, 422},
		{clipboard.ErrEmpty, 422},
		{core.ErrBusy, 409},
		{core.ErrClipboardChanged, 409},
		{testutil.ErrFake, 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
