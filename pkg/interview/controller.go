package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jagtap-suraj/sensai/pkg/capture"
	"github.com/jagtap-suraj/sensai/pkg/live"
	"github.com/jagtap-suraj/sensai/pkg/playback"
	"github.com/jagtap-suraj/sensai/pkg/transcript"
)

const (
	// DefaultOpeningLine is sent as the first user turn once connected.
	DefaultOpeningLine = "Hello, let's begin the interview."

	// DefaultFinalizeTimeout bounds the feedback call of an implicit
	// finalize.
	DefaultFinalizeTimeout = 2 * time.Minute
)

// Config wires a Controller to its collaborators.
type Config struct {
	InterviewID string

	Setups     SetupFetcher
	Feedback   FeedbackService
	Microphone Microphone
	Transport  live.Transport
	Speaker    playback.Opener

	// Monitor receives raw microphone samples while live. Optional.
	Monitor Monitor

	Model           string
	Voice           string
	OpeningLine     string
	Debounce        time.Duration
	FrameSize       int
	FinalizeTimeout time.Duration

	// OnState is called for every transition, in order, without internal
	// locks held. It may read State, Setup, Result and Transcript but must
	// not call methods that change state.
	OnState func(from, to State)

	// OnNotice is called with the user facing message of a transition,
	// under the same rules as OnState.
	OnNotice func(Notice)

	// OnEntry is called for each committed transcript entry, in commit
	// order and without internal locks held.
	OnEntry func(transcript.Entry)
}

func (c *Config) validate() error {
	switch {
	case c.InterviewID == "":
		return errors.New("interview: missing interview id")
	case c.Setups == nil:
		return errors.New("interview: missing setup fetcher")
	case c.Feedback == nil:
		return errors.New("interview: missing feedback service")
	case c.Microphone == nil:
		return errors.New("interview: missing microphone")
	case c.Transport == nil:
		return errors.New("interview: missing transport")
	case c.Speaker == nil:
		return errors.New("interview: missing speaker")
	}
	return nil
}

type change struct {
	from, to State
	notice   *Notice
}

// Controller runs one interview session.
type Controller struct {
	cfg       Config
	ctx       context.Context
	cancel    context.CancelFunc
	assembler *transcript.Assembler

	mu         sync.Mutex
	state      State
	setup      *Setup
	source     capture.Source
	session    live.Session
	everOpened bool
	pipeline   *capture.Pipeline
	player     *playback.Scheduler
	monitoring bool
	result     *Result
	pending    []change

	// Hook delivery, guarded by mu.
	seq        uint64 // transitions queued
	delivered  uint64 // transitions handed to hooks
	delivering bool
	hooked     *sync.Cond

	finalizing atomic.Bool
	done       chan struct{}
	doneOnce   sync.Once
	wg         sync.WaitGroup
}

// New returns a Controller in StateInitializing.
func New(cfg Config) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.OpeningLine == "" {
		cfg.OpeningLine = DefaultOpeningLine
	}
	if cfg.FinalizeTimeout <= 0 {
		cfg.FinalizeTimeout = DefaultFinalizeTimeout
	}
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = capture.DefaultFrameSize
	}
	opts := []transcript.Option{}
	if cfg.Debounce > 0 {
		opts = append(opts, transcript.WithDebounce(cfg.Debounce))
	}
	if cfg.OnEntry != nil {
		opts = append(opts, transcript.WithCommitHook(cfg.OnEntry))
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		assembler: transcript.New(opts...),
		state:     StateInitializing,
		done:      make(chan struct{}),
	}
	c.hooked = sync.NewCond(&c.mu)
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Setup returns the loaded interview setup, or nil before it resolves.
func (c *Controller) Setup() *Setup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setup
}

// Transcript returns a copy of the committed transcript.
func (c *Controller) Transcript() []transcript.Entry {
	return c.assembler.Entries()
}

// Done is closed when the session reaches a terminal state or is disposed.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Result returns the outcome, or nil before Done is closed.
func (c *Controller) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Init fetches the setup and requests the microphone concurrently. It
// returns once both have resolved. A missing setup is terminal; a denied
// microphone leaves the session in StateErrorMicPermission.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateInitializing || c.finalizing.Load() {
		st := c.state
		c.mu.Unlock()
		return &TransitionError{Op: "init", State: st}
	}
	c.setLocked(StateMicPermissionPending, nil)
	c.unlock()

	var (
		wg             sync.WaitGroup
		setupErr, mErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		setupErr = c.loadSetup(ctx)
	}()
	go func() {
		defer wg.Done()
		mErr = c.requestMicrophone(ctx)
	}()
	wg.Wait()

	if setupErr != nil {
		return setupErr
	}
	return mErr
}

// RetryPermission requests the microphone again after a denial.
func (c *Controller) RetryPermission(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateErrorMicPermission {
		st := c.state
		c.mu.Unlock()
		return &TransitionError{Op: "retry permission", State: st}
	}
	c.setLocked(StateMicPermissionPending, nil)
	c.unlock()
	return c.requestMicrophone(ctx)
}

func (c *Controller) loadSetup(ctx context.Context) error {
	setup, err := c.cfg.Setups.FetchSetup(ctx, c.cfg.InterviewID)
	if err == nil && setup == nil {
		err = fmt.Errorf("%w: %s", ErrSetupNotFound, c.cfg.InterviewID)
	}

	c.mu.Lock()
	if c.finalizing.Load() {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		slog.Error("interview: fetch setup failed", "id", c.cfg.InterviewID, "error", err)
		c.setLocked(StateError, &Notice{Message: "Interview setup could not be loaded.", Err: err})
		src := c.source
		c.source = nil
		c.finishLocked(&Result{State: StateError, Err: err})
		c.unlock()
		closeSource(src)
		return err
	}
	c.setup = setup
	if c.state == StateMicPermissionGranted {
		c.setLocked(StateReadyToStart, nil)
	}
	c.unlock()
	return nil
}

func (c *Controller) requestMicrophone(ctx context.Context) error {
	src, err := c.cfg.Microphone.Acquire(ctx)

	c.mu.Lock()
	if c.state != StateMicPermissionPending || c.finalizing.Load() {
		c.mu.Unlock()
		if err == nil {
			closeSource(src)
		}
		return nil
	}
	if err != nil {
		perr := &PermissionError{Err: err}
		slog.Warn("interview: microphone denied", "error", err)
		c.setLocked(StateErrorMicPermission, &Notice{
			Message: "Microphone access is required. Grant permission and retry.",
			Err:     perr,
		})
		c.unlock()
		return perr
	}
	c.source = src
	c.setLocked(StateMicPermissionGranted, nil)
	if c.setup != nil {
		c.setLocked(StateReadyToStart, nil)
	}
	c.unlock()
	return nil
}

// Start opens the transport session. Only one call wins; the others get a
// TransitionError. After a ConnectError Start may be called again as long as no
// session has ever opened.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.finalizing.Load():
		st := c.state
		c.mu.Unlock()
		return &TransitionError{Op: "start", State: st}
	case c.state == StateReadyToStart:
	case c.state == StateErrorLiveAPI && !c.everOpened && c.source != nil && c.setup != nil:
	default:
		st := c.state
		c.mu.Unlock()
		return &TransitionError{Op: "start", State: st}
	}
	c.setLocked(StateConnecting, nil)
	setup := c.setup
	c.unlock()

	cfg := &live.Config{
		Model:               c.cfg.Model,
		Voice:               c.cfg.Voice,
		SystemInstruction:   setup.SystemInstruction,
		InputTranscription:  true,
		OutputTranscription: true,
	}
	s, err := c.cfg.Transport.Open(ctx, cfg, live.Callbacks{
		OnOpen:    c.onOpen,
		OnMessage: c.onMessage,
		OnError:   c.onError,
		OnClose:   c.onClose,
	})
	if err != nil {
		cerr := &ConnectError{Err: err}
		slog.Error("interview: connect failed", "error", err)
		c.mu.Lock()
		if c.state == StateConnecting {
			c.setLocked(StateErrorLiveAPI, &Notice{Message: "Could not connect to the interviewer. Try again.", Err: cerr})
		}
		c.unlock()
		return cerr
	}

	if c.finalizing.Load() {
		s.Close()
	}
	return nil
}

// onOpen runs on the transport reader goroutine.
func (c *Controller) onOpen(s live.Session) {
	c.mu.Lock()
	if c.finalizing.Load() || c.state != StateConnecting {
		c.mu.Unlock()
		slog.Debug("interview: late session open, closing")
		s.Close()
		return
	}
	c.session = s
	c.everOpened = true
	c.setLocked(StateLiveConnected, nil)

	in := c.cfg.Transport.InputFormat()
	c.player = playback.New(c.cfg.Speaker,
		playback.WithFormat(c.cfg.Transport.OutputFormat()),
		playback.WithErrorHandler(c.onPlaybackError),
	)
	tap := func([]float32) {}
	if c.cfg.Monitor != nil {
		tap = c.cfg.Monitor.Write
	}
	p, err := capture.New(c.source, capture.Config{
		Format:    in,
		FrameSize: c.cfg.FrameSize,
		Tap:       tap,
		OnError:   c.onCaptureError,
	})
	if err == nil {
		err = p.Start()
	}
	if err != nil {
		aerr := &AudioPipelineError{Op: "capture", Err: err}
		slog.Error("interview: capture setup failed", "error", err)
		c.setLocked(StateErrorAudioRecording, &Notice{Message: "Audio recording failed.", Err: aerr})
		c.unlock()
		c.finalizeAsync(aerr)
		return
	}
	c.pipeline = p
	if c.cfg.Monitor != nil {
		c.cfg.Monitor.Start()
		c.monitoring = true
	}
	c.setLocked(StateActiveListening, nil)
	c.wg.Add(1)
	c.unlock()

	if err := s.SendText(c.cfg.OpeningLine); err != nil {
		slog.Warn("interview: send opening line failed", "error", err)
	} else {
		c.assembler.AddUserTurn(c.cfg.OpeningLine)
	}
	go c.pump(p.Frames(), s, in.MIMEType())
}

// pump forwards encoded frames to the session until the pipeline stops.
// After a failed send it keeps draining so capture never blocks; a failure
// other than a closed session is reported as a stream error.
func (c *Controller) pump(frames <-chan []byte, s live.Session, mimeType string) {
	defer c.wg.Done()
	failed := false
	for frame := range frames {
		if failed {
			continue
		}
		if err := s.SendAudio(frame, mimeType); err != nil {
			failed = true
			if !errors.Is(err, live.ErrSessionClosed) {
				slog.Warn("interview: send audio failed", "error", err)
				c.onError(err)
			}
		}
	}
}

// onMessage runs on the transport reader goroutine.
func (c *Controller) onMessage(m *live.Message) {
	if c.finalizing.Load() {
		return
	}
	c.mu.Lock()
	player := c.player
	c.mu.Unlock()

	if m.Interrupted && player != nil {
		player.Clear()
	}
	if m.InputTranscription != "" {
		c.assembler.OnUserFragment(m.InputTranscription)
	}
	if m.OutputTranscription != "" {
		c.assembler.OnAgentFragment(m.OutputTranscription)
	}
	if m.Text != "" {
		c.assembler.OnAgentTurn(m.Text)
	}
	if player != nil {
		for _, chunk := range m.Audio {
			player.Enqueue(chunk)
		}
	}
	if m.TurnComplete {
		c.assembler.EndAgentTurn()
	}
}

func (c *Controller) onError(err error) {
	c.mu.Lock()
	if c.finalizing.Load() || c.state.IsTerminal() || c.state == StateErrorLiveAPI {
		c.mu.Unlock()
		return
	}
	serr := &StreamError{Err: err}
	slog.Error("interview: stream error", "error", err)
	c.setLocked(StateErrorLiveAPI, &Notice{Message: "The connection to the interviewer failed.", Err: serr})
	opened := c.everOpened
	c.unlock()
	if opened {
		c.finalizeAsync(serr)
	}
}

func (c *Controller) onClose(info live.CloseInfo) {
	c.mu.Lock()
	if c.finalizing.Load() || c.state.IsTerminal() ||
		c.state == StateErrorLiveAPI || c.state == StateErrorAudioRecording {
		c.mu.Unlock()
		return
	}
	if c.state == StateConnecting {
		cerr := &ConnectError{Err: fmt.Errorf("session %s before opening", info)}
		c.setLocked(StateErrorLiveAPI, &Notice{Message: "Could not connect to the interviewer. Try again.", Err: cerr})
		c.unlock()
		return
	}
	slog.Info("interview: session closed", "info", info.String())
	c.setLocked(StateLiveDisconnected, &Notice{Message: "The interviewer disconnected. Generating feedback."})
	c.unlock()
	c.finalizeAsync(nil)
}

func (c *Controller) onCaptureError(err error) {
	c.mu.Lock()
	if c.finalizing.Load() || !c.state.IsLive() {
		c.mu.Unlock()
		return
	}
	aerr := &AudioPipelineError{Op: "capture", Err: err}
	c.setLocked(StateErrorAudioRecording, &Notice{Message: "Audio recording failed.", Err: aerr})
	c.unlock()
	c.finalizeAsync(aerr)
}

func (c *Controller) onPlaybackError(err error) {
	slog.Warn("interview: playback error", "error", &AudioPipelineError{Op: "playback", Err: err})
}

// End finalizes the interview: it stops audio, closes the session, flushes
// the transcript and generates feedback. Concurrent and repeated calls wait
// for the single finalization and return its result.
func (c *Controller) End(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()
	switch {
	case st.IsLive(), st == StateConnecting, st == StateLiveDisconnected,
		st == StateErrorLiveAPI && c.everOpenedSafe(), st == StateErrorAudioRecording,
		st == StateFinalizing, st.IsTerminal() && st != StateError:
	default:
		return nil, &TransitionError{Op: "end", State: st}
	}
	res := c.finalize(ctx, nil)
	if res == nil {
		return nil, ctx.Err()
	}
	return res, res.Err
}

func (c *Controller) everOpenedSafe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.everOpened
}

func (c *Controller) finalizeAsync(cause error) {
	go func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.FinalizeTimeout)
		defer cancel()
		c.finalize(ctx, cause)
	}()
}

// finalize runs at most once. Losing callers wait for the winner.
func (c *Controller) finalize(ctx context.Context, cause error) *Result {
	if !c.finalizing.CompareAndSwap(false, true) {
		select {
		case <-c.done:
			return c.Result()
		case <-ctx.Done():
			return nil
		}
	}

	c.mu.Lock()
	c.setLocked(StateFinalizing, &Notice{Message: "Generating feedback..."})
	c.unlock()

	c.teardown()
	c.assembler.FlushPending()
	entries := c.assembler.Entries()
	c.assembler.Close()

	res := &Result{Transcript: entries, Cause: cause}
	fb, err := c.cfg.Feedback.GenerateFeedback(ctx, FeedbackRequest{
		InterviewID: c.cfg.InterviewID,
		Transcript:  transcript.Format(entries),
		Entries:     entries,
	})

	c.mu.Lock()
	if err != nil {
		ferr := &FinalizationError{Err: err}
		slog.Error("interview: feedback failed", "id", c.cfg.InterviewID, "error", err)
		res.State = StateErrorFinalizing
		res.Err = ferr
		c.setLocked(StateErrorFinalizing, &Notice{Message: "Feedback could not be generated. Your transcript was kept.", Err: ferr})
	} else {
		res.State = StateCompleted
		res.Feedback = fb
		c.setLocked(StateCompleted, &Notice{Message: "Interview complete."})
	}
	c.finishLocked(res)
	c.unlock()
	return res
}

// teardown stops capture, the visualizer, the microphone, the session and
// playback, in that order.
func (c *Controller) teardown() {
	c.mu.Lock()
	pipeline, source, session, player := c.pipeline, c.source, c.session, c.player
	monitoring := c.monitoring
	c.pipeline, c.source, c.session, c.player = nil, nil, nil, nil
	c.monitoring = false
	c.mu.Unlock()

	if pipeline != nil {
		pipeline.Stop()
	}
	if monitoring {
		c.cfg.Monitor.Stop()
	}
	closeSource(source)
	if session != nil {
		if err := session.Close(); err != nil {
			slog.Debug("interview: close session", "error", err)
		}
	}
	if player != nil {
		player.Stop()
	}
	c.wg.Wait()
}

// Dispose releases every resource without generating feedback. It waits
// for an in-flight finalization and suppresses any later one.
func (c *Controller) Dispose() {
	if c.finalizing.CompareAndSwap(false, true) {
		c.teardown()
		c.assembler.Close()
		c.mu.Lock()
		c.finishLocked(&Result{
			State:      c.state,
			Transcript: c.assembler.Entries(),
			Disposed:   true,
		})
		c.mu.Unlock()
	} else {
		<-c.done
	}
	c.cancel()
}

// finishLocked records the result and closes Done once.
func (c *Controller) finishLocked(res *Result) {
	c.doneOnce.Do(func() {
		c.result = res
		close(c.done)
	})
}

func (c *Controller) setLocked(to State, n *Notice) {
	if n != nil {
		n.State = to
	}
	c.pending = append(c.pending, change{from: c.state, to: to, notice: n})
	c.seq++
	c.state = to
}

// unlock releases mu and delivers pending transitions in order. Hooks run
// without mu held, so they may read Controller state. One goroutine
// delivers at a time; any other caller waits until its own transitions
// have been delivered.
func (c *Controller) unlock() {
	if c.delivering {
		for target := c.seq; c.delivered < target; {
			c.hooked.Wait()
		}
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for len(c.pending) > 0 {
		batch, last := c.pending, c.seq
		c.pending = nil
		c.mu.Unlock()
		c.deliver(batch)
		c.mu.Lock()
		c.delivered = last
		c.hooked.Broadcast()
	}
	c.delivering = false
	c.mu.Unlock()
}

func (c *Controller) deliver(batch []change) {
	for _, ch := range batch {
		slog.Debug("interview: state", "from", ch.from, "to", ch.to)
		if c.cfg.OnState != nil {
			c.cfg.OnState(ch.from, ch.to)
		}
		if ch.notice != nil && c.cfg.OnNotice != nil {
			c.cfg.OnNotice(*ch.notice)
		}
	}
}

func closeSource(src capture.Source) {
	if src == nil {
		return
	}
	if err := src.Close(); err != nil {
		slog.Debug("interview: release microphone", "error", err)
	}
}
