package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/config"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/text"
	"github.com/clnbrd/clnbrd/internal/utils"
)

// BackgroundThreshold is the rune count above which the pipeline runs on a
// worker goroutine.
const BackgroundThreshold = 50_000

// Phase is a state of one clean invocation.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSizeChecked
	PhaseSkipped
	PhaseExtracted
	PhaseCleaned
	PhaseWrittenBack
	PhasePastedAndRestored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSizeChecked:
		return "size_checked"
	case PhaseSkipped:
		return "skipped"
	case PhaseExtracted:
		return "extracted"
	case PhaseCleaned:
		return "cleaned"
	case PhaseWrittenBack:
		return "written_back"
	case PhasePastedAndRestored:
		return "pasted_and_restored"
	}
	return "unknown"
}

// Result is the outcome of one invocation.
type Result struct {
	Context    rules.Context
	Phase      Phase
	Source     clipboard.Format
	Size       int64
	Input      string
	Text       string
	Fired      []rules.StageID
	Changed    []rules.StageID
	Passes     int
	Background bool
	Written    bool
}

// LocalCleanService implements CleanService against a clipboard board.
type LocalCleanService struct {
	Board clipboard.Board
	Store *rules.Store

	// Collaborators. Set before the first call.
	Paster   Paster
	Notifier Notifier
	History  HistoryRecorder

	InputCh chan any

	// Broadcast fields
	listeners  []chan any
	listenerMu sync.Mutex

	// slot is the single-slot semaphore serializing access to Board.
	slot chan struct{}
	// ownCount is the board change count right after our last write.
	ownCount atomic.Int64

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc

	// Settings Cache
	runtime   *config.RuntimeConfig
	runtimeMu sync.RWMutex

	// workers tracks background pipeline runs still to finish.
	workers sync.WaitGroup

	sleep               func(time.Duration)
	now                 func() time.Time
	pipeline            func(*rules.Snapshot, rules.Context, string) text.Result
	backgroundThreshold int
}

// Pending is an invocation that may still be running on a worker.
type Pending struct {
	// Background is set when the pipeline runs off the caller's goroutine.
	Background bool

	done chan struct{}
	res  *Result
	err  error
}

// Done is closed once the invocation has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the invocation finishes or ctx is done. The invocation
// keeps running when ctx ends first.
func (p *Pending) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// NewLocalCleanService creates a service bound to board and store.
func NewLocalCleanService(board clipboard.Board, store *rules.Store, rc *config.RuntimeConfig) *LocalCleanService {
	if rc == nil {
		rc = config.DefaultSettings().ToRuntimeConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &LocalCleanService{
		Board:               board,
		Store:               store,
		Paster:              NopPaster{},
		Notifier:            NewLogNotifier(),
		InputCh:             make(chan any, 100),
		slot:                make(chan struct{}, 1),
		ctx:                 ctx,
		cancel:              cancel,
		runtime:             rc,
		sleep:               time.Sleep,
		now:                 time.Now,
		pipeline:            text.Run,
		backgroundThreshold: BackgroundThreshold,
	}
	s.ownCount.Store(-1)

	go s.broadcastLoop()
	return s
}

// SetRuntimeConfig swaps the settings used by subsequent invocations.
func (s *LocalCleanService) SetRuntimeConfig(rc *config.RuntimeConfig) {
	s.runtimeMu.Lock()
	s.runtime = rc
	s.runtimeMu.Unlock()
}

// ReloadSettings reloads settings from disk
func (s *LocalCleanService) ReloadSettings() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	s.SetRuntimeConfig(settings.ToRuntimeConfig())
	return nil
}

func (s *LocalCleanService) runtimeConfig() *config.RuntimeConfig {
	s.runtimeMu.RLock()
	defer s.runtimeMu.RUnlock()
	return s.runtime
}

func (s *LocalCleanService) acquire(ctx context.Context) error {
	select {
	case s.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LocalCleanService) tryAcquire() bool {
	select {
	case s.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *LocalCleanService) release() { <-s.slot }

// IsOwnWrite reports whether count is the board state our last write produced.
func (s *LocalCleanService) IsOwnWrite(count int64) bool {
	return count == s.ownCount.Load()
}

// Clean waits for the board, then runs one clean invocation for rctx and
// waits for its result.
func (s *LocalCleanService) Clean(ctx context.Context, rctx rules.Context) (*Result, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	return s.begin(ctx, rctx).Wait(ctx)
}

// TryClean is Clean without waiting for the board: it returns ErrBusy when
// another invocation holds it.
func (s *LocalCleanService) TryClean(ctx context.Context, rctx rules.Context) (*Result, error) {
	if !s.tryAcquire() {
		return nil, ErrBusy
	}
	return s.begin(ctx, rctx).Wait(ctx)
}

// CleanAsync starts a clean invocation without waiting for the pipeline.
// It returns ErrBusy when another invocation holds the board. Text over
// the background threshold is cleaned on a worker that keeps the board
// until its write; ctx only bounds the extraction.
func (s *LocalCleanService) CleanAsync(ctx context.Context, rctx rules.Context) (*Pending, error) {
	if !s.tryAcquire() {
		return nil, ErrBusy
	}
	return s.begin(ctx, rctx), nil
}

// begin runs one clean with the board held and releases it when the
// invocation ends.
func (s *LocalCleanService) begin(ctx context.Context, rctx rules.Context) *Pending {
	start := s.now()
	snap := s.Store.Snapshot()
	res := &Result{Context: rctx, Phase: PhaseIdle}

	if len(snap.ActiveStages(rctx)) == 0 {
		res.Phase = PhaseSkipped
		return s.finished(res, nil, s.release)
	}

	seen := s.Board.ChangeCount()
	ex, err := s.extract(ctx, res)
	if err != nil {
		s.skip(rctx, res, err)
		return s.finished(res, err, s.release)
	}

	return s.dispatch(ex.text, s.release, func(bg bool) (*Result, error) {
		out := s.pipeline(snap, rctx, ex.text)
		res.apply(out, bg)
		res.Phase = PhaseCleaned

		if rctx == rules.AutoCopy && out.Text == ex.text && !ex.payload.HasNonPlain() {
			s.emit(s.cleanedMsg(res, false, start))
			return res, nil
		}
		if bg && s.Board.ChangeCount() != seen {
			s.skip(rctx, res, ErrClipboardChanged)
			return res, ErrClipboardChanged
		}

		s.record(rctx.String(), ex.payload)
		if err := s.write(out.Text); err != nil {
			s.fail(rctx, err)
			return res, err
		}
		res.Written = true
		res.Phase = PhaseWrittenBack
		s.emit(s.cleanedMsg(res, false, start))
		utils.Debug("Clean(%s): %d stages changed text, %d -> %d runes", rctx, len(res.Changed),
			utf8.RuneCountInString(ex.text), utf8.RuneCountInString(out.Text))
		return res, nil
	})
}

// CleanAndPaste captures every representation, writes the cleaned text,
// pastes it after PasteDelay and restores the capture RestoreDelay after the
// write. The board stays held until the restore completes.
func (s *LocalCleanService) CleanAndPaste(ctx context.Context) (*Result, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	return s.beginPaste(ctx).Wait(ctx)
}

// CleanAndPasteAsync is CleanAndPaste without waiting for the board or the
// pipeline. It returns ErrBusy when another invocation holds the board.
func (s *LocalCleanService) CleanAndPasteAsync(ctx context.Context) (*Pending, error) {
	if !s.tryAcquire() {
		return nil, ErrBusy
	}
	return s.beginPaste(ctx), nil
}

func (s *LocalCleanService) beginPaste(ctx context.Context) *Pending {
	start := s.now()
	rc := s.runtimeConfig()
	snap := s.Store.Snapshot()
	res := &Result{Context: rules.OnDemand, Phase: PhaseIdle}

	seen := s.Board.ChangeCount()
	ex, err := s.extract(ctx, res)
	if err != nil {
		s.skip(rules.OnDemand, res, err)
		return s.finished(res, err, s.release)
	}
	original := ex.payload.Clone()

	return s.dispatch(ex.text, s.release, func(bg bool) (*Result, error) {
		pctx := ctx
		if bg {
			pctx = context.WithoutCancel(ctx)
		}
		out := s.pipeline(snap, rules.OnDemand, ex.text)
		res.apply(out, bg)
		res.Phase = PhaseCleaned
		if bg && s.Board.ChangeCount() != seen {
			s.skip(rules.OnDemand, res, ErrClipboardChanged)
			return res, ErrClipboardChanged
		}

		s.record("paste", original)
		if err := s.write(out.Text); err != nil {
			s.fail(rules.OnDemand, err)
			return res, err
		}
		res.Written = true
		res.Phase = PhaseWrittenBack
		written := s.now()

		s.sleep(rc.PasteDelay)
		pasteErr := s.Paster.Paste(pctx)
		if pasteErr != nil {
			s.fail(rules.OnDemand, pasteErr)
		}

		if wait := rc.RestoreDelay - s.now().Sub(written); wait > 0 {
			s.sleep(wait)
		}
		if err := s.Board.Restore(original); err != nil {
			err = fmt.Errorf("restore clipboard: %w", err)
			s.fail(rules.OnDemand, err)
			return res, errors.Join(pasteErr, err)
		}
		s.ownCount.Store(s.Board.ChangeCount())
		if pasteErr != nil {
			return res, pasteErr
		}

		res.Phase = PhasePastedAndRestored
		s.emit(s.cleanedMsg(res, true, start))
		return res, nil
	})
}

// CleanText runs the pipeline over text with the current rules and waits
// for the result.
func (s *LocalCleanService) CleanText(ctx context.Context, rctx rules.Context, input string) (*Result, error) {
	return s.CleanTextAsync(rctx, input).Wait(ctx)
}

// CleanTextAsync runs the pipeline over input, on a worker when input is
// over the background threshold. The board is never touched.
func (s *LocalCleanService) CleanTextAsync(rctx rules.Context, input string) *Pending {
	snap := s.Store.Snapshot()
	return s.dispatch(input, nil, func(bg bool) (*Result, error) {
		res := &Result{Context: rctx, Input: input}
		res.apply(s.pipeline(snap, rctx, input), bg)
		res.Phase = PhaseCleaned
		return res, nil
	})
}

type extraction struct {
	payload clipboard.Payload
	text    string
	from    clipboard.Format
	err     error
}

// extract reads the board, applies the size gate and decodes text on a
// worker goroutine, waiting at most ExtractionTimeout.
func (s *LocalCleanService) extract(ctx context.Context, res *Result) (extraction, error) {
	rc := s.runtimeConfig()
	done := make(chan extraction, 1)
	sized := make(chan int64, 1)

	go func() {
		p, err := s.Board.Snapshot()
		if err != nil {
			done <- extraction{err: err}
			return
		}
		if len(p) == 0 {
			done <- extraction{err: clipboard.ErrEmpty}
			return
		}
		size := p.Size()
		if rc.SkipLargeItems && size > rc.MaxPayloadBytes {
			done <- extraction{payload: p, err: &PayloadTooLargeError{Size: size, Limit: rc.MaxPayloadBytes}}
			return
		}
		sized <- size
		text, from, ok := clipboard.ExtractText(p)
		if !ok {
			done <- extraction{payload: p, err: ErrNoText}
			return
		}
		done <- extraction{payload: p, text: text, from: from}
	}()

	timer := time.NewTimer(rc.ExtractionTimeout)
	defer timer.Stop()
	for {
		select {
		case size := <-sized:
			res.Size = size
			res.Phase = PhaseSizeChecked
		case ex := <-done:
			if ex.payload != nil && res.Size == 0 {
				res.Size = ex.payload.Size()
			}
			if ex.err != nil {
				return ex, ex.err
			}
			res.Phase = PhaseExtracted
			res.Source = ex.from
			res.Input = ex.text
			return ex, nil
		case <-timer.C:
			return extraction{}, ErrExtractionTimeout
		case <-ctx.Done():
			return extraction{}, ctx.Err()
		}
	}
}

// dispatch finishes an invocation with fn, inline when input is within the
// background threshold and on a worker otherwise. release, when set, runs
// once fn has returned.
func (s *LocalCleanService) dispatch(input string, release func(), fn func(background bool) (*Result, error)) *Pending {
	p := &Pending{done: make(chan struct{})}
	finish := func(bg bool) {
		p.res, p.err = fn(bg)
		if release != nil {
			release()
		}
		close(p.done)
	}
	if utf8.RuneCountInString(input) <= s.backgroundThreshold {
		finish(false)
		return p
	}
	p.Background = true
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		finish(true)
	}()
	return p
}

// finished returns an already completed Pending.
func (s *LocalCleanService) finished(res *Result, err error, release func()) *Pending {
	if release != nil {
		release()
	}
	p := &Pending{done: make(chan struct{}), res: res, err: err}
	close(p.done)
	return p
}

func (s *LocalCleanService) write(out string) error {
	if err := s.Board.Write(out, true); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	s.ownCount.Store(s.Board.ChangeCount())
	return nil
}

func (s *LocalCleanService) record(source string, p clipboard.Payload) {
	if s.History == nil {
		return
	}
	if err := s.History.Record(source, p); err != nil && !errors.Is(err, clipboard.ErrEmpty) {
		utils.Debug("History record failed: %v", err)
	}
}

func (s *LocalCleanService) skip(rctx rules.Context, res *Result, err error) {
	res.Phase = PhaseSkipped
	s.emit(SkippedMsg{Context: rctx.String(), Reason: err.Error(), Size: res.Size})
	if isQuietSkip(err) || errors.Is(err, context.Canceled) {
		utils.Debug("Clean(%s) skipped: %v", rctx, err)
		return
	}

	var tooLarge *PayloadTooLargeError
	switch {
	case errors.As(err, &tooLarge):
		s.notify("Clipboard too large", fmt.Sprintf("Skipped %s of clipboard data (limit %s).",
			utils.ConvertBytesToHumanReadable(tooLarge.Size), utils.ConvertBytesToHumanReadable(tooLarge.Limit)))
	case errors.Is(err, ErrExtractionTimeout):
		s.notify("Clipboard timeout", "Reading the clipboard took too long; nothing was changed.")
	default:
		s.notify("Clipboard unavailable", err.Error())
	}
}

func (s *LocalCleanService) fail(rctx rules.Context, err error) {
	s.emit(ErrorMsg{Context: rctx.String(), Err: err.Error()})
	s.notify("Clean failed", err.Error())
}

func (s *LocalCleanService) notify(title, message string) {
	utils.Debug("%s: %s", title, message)
	if s.Notifier == nil || !s.runtimeConfig().Notifications {
		return
	}
	s.Notifier.Notify(title, message)
}

func (s *LocalCleanService) cleanedMsg(res *Result, pasted bool, start time.Time) CleanedMsg {
	return CleanedMsg{
		Context:     res.Context.String(),
		Source:      string(res.Source),
		Stages:      res.Changed,
		InputRunes:  utf8.RuneCountInString(res.Input),
		OutputRunes: utf8.RuneCountInString(res.Text),
		Written:     res.Written,
		Pasted:      pasted,
		Background:  res.Background,
		Elapsed:     s.now().Sub(start),
	}
}

func (r *Result) apply(out text.Result, background bool) {
	r.Text = out.Text
	r.Fired = out.Fired
	r.Changed = out.Changed
	r.Passes = out.Passes
	r.Background = background
}

func (s *LocalCleanService) emit(msg any) {
	select {
	case <-s.ctx.Done():
		return
	default:
	}
	// Non-blocking send to InputCh
	select {
	case s.InputCh <- msg:
	default:
	}
}

func (s *LocalCleanService) broadcastLoop() {
	for {
		select {
		case <-s.ctx.Done():
			s.listenerMu.Lock()
			for _, ch := range s.listeners {
				close(ch)
			}
			s.listeners = nil
			s.listenerMu.Unlock()
			return
		case msg := <-s.InputCh:
			s.listenerMu.Lock()
			for _, ch := range s.listeners {
				// Non-blocking send to avoid stalling if a client is slow
				select {
				case ch <- msg:
				default:
				}
			}
			s.listenerMu.Unlock()
		}
	}
}

// StreamEvents returns a channel that receives clean events until ctx is
// done, cleanup is called or the service shuts down.
func (s *LocalCleanService) StreamEvents(ctx context.Context) (<-chan any, func(), error) {
	ch := make(chan any, 100)
	s.listenerMu.Lock()
	s.listeners = append(s.listeners, ch)
	s.listenerMu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.listenerMu.Lock()
			defer s.listenerMu.Unlock()
			for i, listener := range s.listeners {
				if listener == ch {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					close(ch)
					break
				}
			}
		})
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-s.ctx.Done():
		}
		cleanup()
	}()

	return ch, cleanup, nil
}

// Shutdown waits for background invocations, then stops the service.
func (s *LocalCleanService) Shutdown() error {
	s.workers.Wait()
	s.cancel()
	return nil
}
