package commands

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jagtap-suraj/sensai/cmd/sensai/internal/config"
	"github.com/jagtap-suraj/sensai/pkg/archive"
	"github.com/jagtap-suraj/sensai/pkg/cli"
	"github.com/jagtap-suraj/sensai/pkg/interview"
	"github.com/jagtap-suraj/sensai/pkg/transcript"
	"github.com/jagtap-suraj/sensai/pkg/visualizer"
)

const (
	redrawInterval = 100 * time.Millisecond
	logLines       = 200
	clearScreen    = "\033[H\033[2J"
)

var interviewRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a live voice interview",
	Long: `Run a live voice interview.

The microphone is opened first. Press Enter to connect to the interviewer
and Enter again to end the interview and generate feedback. Type q and
Enter to quit without feedback. Ctrl-C ends the interview; a second
Ctrl-C quits.`,
	Args: cobra.ExactArgs(1),
	RunE: runInterview,
}

func init() {
	interviewCmd.AddCommand(interviewRunCmd)
}

func runInterview(cmd *cobra.Command, args []string) error {
	if Audio.Microphone == nil || Audio.Speaker == nil {
		return errNoAudio
	}
	e, err := loadEnv()
	if err != nil {
		return err
	}
	debounce, err := e.session.DebounceDuration()
	if err != nil {
		return err
	}
	finalizeTimeout, err := e.session.FinalizeTimeoutDuration()
	if err != nil {
		return err
	}
	finalizeTimeout = cmp.Or(finalizeTimeout, interview.DefaultFinalizeTimeout)

	ctx := cmd.Context()
	svc, closeStore, err := e.records(ctx, true)
	if err != nil {
		return err
	}
	defer closeStore()

	transport, model, voice, err := e.transport(ctx)
	if err != nil {
		return err
	}
	arch, err := e.archiver()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	mon := visualizer.New()
	view := newLiveView(out, args[0], mon, isTerminal(out))

	ctrl, err := interview.New(interview.Config{
		InterviewID:     args[0],
		Setups:          svc,
		Feedback:        svc,
		Microphone:      Audio.Microphone(config.Device(e.session.InputDevice)),
		Transport:       transport,
		Speaker:         Audio.Speaker(config.Device(e.session.OutputDevice)),
		Monitor:         mon,
		Model:           model,
		Voice:           voice,
		OpeningLine:     e.session.OpeningLine,
		Debounce:        debounce,
		FrameSize:       e.session.FrameSize,
		FinalizeTimeout: finalizeTimeout,
		OnState:         view.onState,
		OnNotice:        view.onNotice,
		OnEntry:         view.onEntry,
	})
	if err != nil {
		return err
	}
	defer ctrl.Dispose()

	if view.interactive {
		restore := view.captureLogs()
		defer restore()
	}

	r := &runner{
		ctx:     ctx,
		ctrl:    ctrl,
		timeout: finalizeTimeout,
	}
	res := r.loop(cmd.InOrStdin(), view)
	view.finish(res)

	if arch != nil && res != nil && len(res.Transcript) > 0 {
		saveArchive(ctx, arch, args[0], res)
	}
	if res == nil || res.Disposed {
		return nil
	}
	if res.State == interview.StateError {
		return res.Err
	}
	return nil
}

// saveArchive stores the transcript and feedback. Failures are logged; the
// record already holds the feedback.
func saveArchive(ctx context.Context, arch *archive.Archiver, id string, res *interview.Result) {
	rec := archive.Record{ID: id, Entries: res.Transcript}
	if res.Feedback != nil {
		rec.Feedback = res.Feedback.Text
	}
	if err := arch.Save(ctx, rec); err != nil {
		slog.Warn("archive interview", "id", id, "error", err)
	}
}

// runner drives a Controller from line input and signals.
type runner struct {
	ctx     context.Context
	ctrl    *interview.Controller
	timeout time.Duration

	interrupts int
}

func (r *runner) loop(in io.Reader, view *liveView) *interview.Result {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	lines := readLines(in)
	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	go func() {
		if err := r.ctrl.Init(r.ctx); err != nil {
			slog.Debug("init interview", "error", err)
		}
	}()

	for {
		view.draw()
		select {
		case <-r.ctrl.Done():
			return r.ctrl.Result()
		case <-r.ctx.Done():
			go r.ctrl.Dispose()
			<-r.ctrl.Done()
			return r.ctrl.Result()
		case <-ticker.C:
		case <-sigs:
			r.interrupts++
			if r.interrupts > 1 {
				go r.ctrl.Dispose()
				continue
			}
			r.end()
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			r.handle(strings.TrimSpace(line))
		}
	}
}

// handle maps a line of input to the next step for the current state.
func (r *runner) handle(line string) {
	if strings.EqualFold(line, "q") {
		go r.ctrl.Dispose()
		return
	}
	if line != "" {
		return
	}
	switch st := r.ctrl.State(); {
	case st == interview.StateErrorMicPermission:
		go func() {
			if err := r.ctrl.RetryPermission(r.ctx); err != nil {
				slog.Debug("retry microphone", "error", err)
			}
		}()
	case st == interview.StateReadyToStart:
		go r.start()
	case st == interview.StateErrorLiveAPI:
		// Reconnect when the session never opened; otherwise wrap up.
		go func() {
			if err := r.ctrl.Start(r.ctx); errors.Is(err, interview.ErrInvalidState) {
				r.end()
			}
		}()
	case st.IsLive(), st == interview.StateConnecting,
		st == interview.StateLiveDisconnected, st == interview.StateErrorAudioRecording:
		r.end()
	}
}

func (r *runner) start() {
	if err := r.ctrl.Start(r.ctx); err != nil {
		slog.Debug("start interview", "error", err)
	}
}

func (r *runner) end() {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.ctx), r.timeout)
		defer cancel()
		if _, err := r.ctrl.End(ctx); err != nil {
			slog.Debug("end interview", "error", err)
		}
	}()
}

func readLines(in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

// liveView renders controller events. On a terminal it redraws a full
// screen frame; otherwise it prints one line per event.
type liveView struct {
	w           io.Writer
	id          string
	mon         *visualizer.Visualizer
	interactive bool
	styles      cli.Styles
	logs        *cli.LogWriter

	mu      sync.Mutex
	state   interview.State
	notices []string
	alert   bool
	entries []transcript.Entry
	width   int
}

func newLiveView(w io.Writer, id string, mon *visualizer.Visualizer, interactive bool) *liveView {
	return &liveView{
		w:           w,
		id:          id,
		mon:         mon,
		interactive: interactive,
		styles:      cli.NewStyles(cli.DefaultTheme),
		logs:        cli.NewLogWriter(logLines),
	}
}

// captureLogs sends slog output to the log section until restore is called.
func (v *liveView) captureLogs() (restore func()) {
	prev := slog.Default()
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(v.logs, &slog.HandlerOptions{Level: level})))
	return func() { slog.SetDefault(prev) }
}

func (v *liveView) onState(from, to interview.State) {
	v.mu.Lock()
	v.state = to
	v.alert = to.IsError()
	v.mu.Unlock()
	v.printf("[%s]", to)
}

func (v *liveView) onNotice(n interview.Notice) {
	msg := n.Message
	if n.Err != nil {
		msg += " (" + n.Err.Error() + ")"
	}
	v.mu.Lock()
	v.notices = append(v.notices, msg)
	v.mu.Unlock()
	v.printf("! %s", msg)
}

func (v *liveView) onEntry(e transcript.Entry) {
	v.mu.Lock()
	v.entries = append(v.entries, e)
	v.mu.Unlock()
	v.printf("%s", e)
}

// printf writes an event line in non-interactive mode.
func (v *liveView) printf(format string, args ...any) {
	if v.interactive {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, format+"\n", args...)
}

func (v *liveView) help(st interview.State) string {
	switch {
	case st == interview.StateErrorMicPermission:
		return "enter: retry microphone  q: quit"
	case st == interview.StateReadyToStart:
		return "enter: start interview  q: quit"
	case st == interview.StateErrorLiveAPI:
		return "enter: retry or finish  q: quit"
	case st.IsLive(), st == interview.StateConnecting:
		return "enter: end interview  ctrl-c: end  q: quit without feedback"
	case st == interview.StateFinalizing:
		return "generating feedback...  q: quit"
	}
	return "q: quit"
}

func (v *liveView) draw() {
	if !v.interactive {
		return
	}
	width, height := cli.TerminalSize()

	v.mu.Lock()
	v.width = width - 4
	frame := cli.Frame{
		Styles: v.styles,
		Title:  "sensai " + cli.Truncate(v.id, 12),
		Status: v.state.String(),
		Alert:  v.alert,
		Help:   v.help(v.state),
		Sections: []cli.Section{
			{Label: "Mic", Content: v.micLines, Fixed: true},
			{Label: "Transcript", Content: v.transcriptLines},
			{Label: "Notices", Content: v.noticeLines},
			{Label: "Log", Content: v.logs.Lines},
		},
	}
	v.mu.Unlock()

	fmt.Fprint(v.w, clearScreen+frame.Render(width, height))
}

func (v *liveView) micLines() []string {
	return strings.Split(v.mon.Render(v.contentWidth(), 3), "\n")
}

func (v *liveView) transcriptLines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var lines []string
	for _, e := range v.entries {
		lines = append(lines, cli.Wrap(e.String(), v.width)...)
	}
	return lines
}

func (v *liveView) noticeLines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.notices...)
}

func (v *liveView) contentWidth() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return max(v.width, 1)
}

// finish prints the outcome once the controller is done.
func (v *liveView) finish(res *interview.Result) {
	if v.interactive {
		fmt.Fprint(v.w, clearScreen)
		if len(res.Transcript) > 0 {
			fmt.Fprintln(v.w, transcript.Format(res.Transcript))
			fmt.Fprintln(v.w)
		}
	}
	switch {
	case res.Disposed:
		fmt.Fprintln(v.w, "Interview closed without feedback.")
	case res.Feedback != nil:
		fmt.Fprintln(v.w, strings.TrimSpace(res.Feedback.Text))
	case res.Err != nil && res.State != interview.StateError:
		fmt.Fprintf(v.w, "Interview ended: %v\n", res.Err)
	}
}
