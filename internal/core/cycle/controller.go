package cycle

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"pomodoro/internal/core/model"
)

var (
	// ErrNoTemplate indicates Start was called before a template was selected.
	ErrNoTemplate = errors.New("no template selected")
	// ErrInvalidTransition indicates an operation that is not valid in the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrClosed indicates the controller has been shut down.
	ErrClosed = errors.New("controller closed")
)

// Audio receives playback intents. Implementations must not call back into
// the controller; failures stay on the audio side.
type Audio interface {
	PlayFocusMusic()
	PlayBreakMusic()
	PauseMusic()
	ResumeMusic()
	StopMusic()
	PlayStartCue()
	PlayBreakCue()
	SetMuted(muted bool)
}

// Options contains collaborators for the controller.
type Options struct {
	Clock  clockwork.Clock
	Logger *slog.Logger
}

type musicAction int

const (
	musicPlay musicAction = iota
	musicResume
)

// Controller is the focus/break state machine. The tick handler is the only
// place that detects the end of a phase, and it swaps phases inside the same
// critical section that observed zero.
type Controller struct {
	mu     sync.Mutex
	config model.CycleConfig
	clock  clockwork.Clock
	audio  Audio
	logger *slog.Logger

	cycleState CycleState
	runStatus  RunStatus
	remaining  int
	total      int
	template   *model.Template
	sessions   int
	muted      bool
	runID      string

	// generation identifies the armed tick source; ticks from any other
	// generation are dropped.
	generation uint64
	stopTick   chan struct{}

	// audioEpoch identifies the phase a deferred music action was issued for.
	audioEpoch   uint64
	pendingMusic clockwork.Timer
	musicStarted bool

	events []chan Event
	closed bool
}

// New creates an idle controller with no template.
func New(config model.CycleConfig, audio Audio, options Options) *Controller {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Controller{
		config:     config,
		clock:      options.Clock,
		audio:      audio,
		logger:     options.Logger,
		cycleState: CycleIdle,
		runStatus:  StatusIdle,
	}
}

// Subscribe registers a new observer channel. Slow observers miss events
// rather than stalling the countdown.
func (controller *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		close(ch)
		return ch
	}
	controller.events = append(controller.events, ch)
	return ch
}

// Snapshot returns a copy of the current state.
func (controller *Controller) Snapshot() Snapshot {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.snapshotLocked()
}

// SelectTemplate makes t active and returns to idle, cancelling any countdown
// and stopping music.
func (controller *Controller) SelectTemplate(t model.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}

	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return ErrClosed
	}

	controller.haltLocked()
	controller.audio.StopMusic()

	template := t
	controller.template = &template
	controller.cycleState = CycleIdle
	controller.runStatus = StatusIdle
	controller.remaining = template.FocusSeconds()
	controller.total = controller.remaining
	controller.runID = ""

	controller.logger.Info("template selected", "template", template.ID, "focus_minutes", template.FocusMinutes, "break_minutes", template.BreakMinutes)
	controller.emitLocked(EventStateChange)
	return nil
}

// SetCustomDurations selects a clamped custom template.
func (controller *Controller) SetCustomDurations(focusMinutes, breakMinutes int) (model.Template, error) {
	template := model.CustomTemplate(focusMinutes, breakMinutes)
	if err := controller.SelectTemplate(template); err != nil {
		return model.Template{}, err
	}
	return template, nil
}

// Start begins a focus phase from idle.
func (controller *Controller) Start() error {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return ErrClosed
	}
	if controller.template == nil {
		return ErrNoTemplate
	}
	if controller.cycleState != CycleIdle {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, controller.cycleState)
	}

	controller.runID = uuid.NewString()
	controller.enterPhaseLocked(CycleFocus, controller.config.StartMusicDelay)

	controller.logger.Info("cycle started", "run_id", controller.runID, "template", controller.template.ID)
	controller.emitLocked(EventStateChange)
	return nil
}

// Pause freezes the countdown and music.
func (controller *Controller) Pause() error {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return ErrClosed
	}
	if controller.runStatus != StatusRunning {
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, controller.runStatus)
	}

	controller.haltLocked()
	controller.audio.PauseMusic()
	controller.runStatus = StatusPaused

	controller.logger.Info("cycle paused", "run_id", controller.runID, "phase", controller.cycleState, "remaining", controller.remaining)
	controller.emitLocked(EventStateChange)
	return nil
}

// Resume restarts the countdown and music from where they paused.
func (controller *Controller) Resume() error {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return ErrClosed
	}
	if controller.runStatus != StatusPaused {
		return fmt.Errorf("%w: resume while %s", ErrInvalidTransition, controller.runStatus)
	}

	controller.runStatus = StatusRunning
	controller.audioEpoch++
	if controller.musicStarted {
		controller.scheduleMusicLocked(musicResume, controller.config.ResumeMusicDelay)
	} else {
		controller.scheduleMusicLocked(musicPlay, controller.config.ResumeMusicDelay)
	}
	controller.armLocked()

	controller.logger.Info("cycle resumed", "run_id", controller.runID, "phase", controller.cycleState, "remaining", controller.remaining)
	controller.emitLocked(EventStateChange)
	return nil
}

// Reset returns to idle with the active template's focus duration. Completed
// sessions are kept.
func (controller *Controller) Reset() error {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return ErrClosed
	}
	if controller.cycleState == CycleIdle {
		return fmt.Errorf("%w: reset while idle", ErrInvalidTransition)
	}

	controller.haltLocked()
	controller.audio.StopMusic()
	controller.cycleState = CycleIdle
	controller.runStatus = StatusIdle
	if controller.template != nil {
		controller.remaining = controller.template.FocusSeconds()
		controller.total = controller.remaining
	}

	controller.logger.Info("cycle reset", "run_id", controller.runID, "sessions", controller.sessions)
	controller.runID = ""
	controller.emitLocked(EventStateChange)
	return nil
}

// ToggleMute flips the music mute flag and returns the new value.
func (controller *Controller) ToggleMute() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return controller.muted
	}

	controller.muted = !controller.muted
	controller.audio.SetMuted(controller.muted)
	controller.emitLocked(EventMuteChange)
	return controller.muted
}

// Close cancels every timer, stops music and closes observers.
func (controller *Controller) Close() {
	controller.mu.Lock()
	if controller.closed {
		controller.mu.Unlock()
		return
	}
	controller.closed = true
	controller.haltLocked()
	controller.audio.StopMusic()
	events := controller.events
	controller.events = nil
	controller.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (controller *Controller) run(ticker clockwork.Ticker, stop <-chan struct{}, generation uint64) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case tickTime := <-ticker.Chan():
			controller.tick(generation, tickTime)
		}
	}
}

func (controller *Controller) tick(generation uint64, tickTime time.Time) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed || generation != controller.generation || controller.runStatus != StatusRunning {
		controller.logger.Debug("stale tick skipped", "generation", generation, "current", controller.generation, "status", controller.runStatus)
		return
	}

	if controller.remaining > 1 {
		controller.remaining--
		controller.emitLocked(EventProgress)
		return
	}
	controller.completePhaseLocked(tickTime)
}

// completePhaseLocked swaps to the next phase. The old tick source is
// disarmed and the new one armed before the lock is released.
func (controller *Controller) completePhaseLocked(now time.Time) {
	completed := controller.cycleState
	controller.audio.StopMusic()

	next := CycleFocus
	if completed == CycleFocus {
		controller.sessions++
		next = CycleBreak
	}
	controller.enterPhaseLocked(next, controller.config.TransitionMusicDelay)

	controller.logger.Info("phase complete", "run_id", controller.runID, "completed", completed, "next", next, "sessions", controller.sessions)
	controller.emitEventLocked(Event{
		Type:      EventPhaseComplete,
		Snapshot:  controller.snapshotLocked(),
		Completed: completed,
		RunID:     controller.runID,
		At:        now,
	})
	controller.emitLocked(EventStateChange)
}

func (controller *Controller) enterPhaseLocked(phase CycleState, musicDelay time.Duration) {
	controller.haltLocked()

	controller.cycleState = phase
	controller.runStatus = StatusRunning
	controller.musicStarted = false
	if phase == CycleFocus {
		controller.remaining = controller.template.FocusSeconds()
		controller.audio.PlayStartCue()
	} else {
		controller.remaining = controller.template.BreakSeconds()
		controller.audio.PlayBreakCue()
	}
	controller.total = controller.remaining

	controller.scheduleMusicLocked(musicPlay, musicDelay)
	controller.armLocked()
}

// haltLocked disarms the tick source and cancels deferred music.
func (controller *Controller) haltLocked() {
	controller.disarmLocked()
	controller.audioEpoch++
	if controller.pendingMusic != nil {
		controller.pendingMusic.Stop()
		controller.pendingMusic = nil
	}
}

func (controller *Controller) armLocked() {
	controller.disarmLocked()
	stop := make(chan struct{})
	controller.stopTick = stop
	go controller.run(controller.clock.NewTicker(controller.config.TickInterval), stop, controller.generation)
}

func (controller *Controller) disarmLocked() {
	controller.generation++
	if controller.stopTick != nil {
		close(controller.stopTick)
		controller.stopTick = nil
	}
}

func (controller *Controller) scheduleMusicLocked(action musicAction, delay time.Duration) {
	if controller.pendingMusic != nil {
		controller.pendingMusic.Stop()
		controller.pendingMusic = nil
	}
	if delay <= 0 {
		controller.performMusicLocked(action)
		return
	}

	epoch := controller.audioEpoch
	controller.pendingMusic = controller.clock.AfterFunc(delay, func() {
		controller.runDeferredMusic(epoch, action)
	})
}

func (controller *Controller) runDeferredMusic(epoch uint64, action musicAction) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed || epoch != controller.audioEpoch || controller.runStatus != StatusRunning {
		controller.logger.Debug("stale music action skipped", "epoch", epoch, "current", controller.audioEpoch)
		return
	}
	controller.pendingMusic = nil
	controller.performMusicLocked(action)
}

func (controller *Controller) performMusicLocked(action musicAction) {
	if action == musicResume {
		controller.audio.ResumeMusic()
		return
	}
	controller.musicStarted = true
	if controller.cycleState == CycleBreak {
		controller.audio.PlayBreakMusic()
		return
	}
	controller.audio.PlayFocusMusic()
}

func (controller *Controller) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		CycleState:        controller.cycleState,
		RunStatus:         controller.runStatus,
		SecondsRemaining:  controller.remaining,
		TotalSeconds:      controller.total,
		SessionsCompleted: controller.sessions,
		MusicMuted:        controller.muted,
	}
	if controller.template != nil {
		template := *controller.template
		snapshot.ActiveTemplate = &template
	}
	return snapshot
}

func (controller *Controller) emitLocked(eventType EventType) {
	controller.emitEventLocked(Event{
		Type:     eventType,
		Snapshot: controller.snapshotLocked(),
		RunID:    controller.runID,
		At:       controller.clock.Now(),
	})
}

func (controller *Controller) emitEventLocked(event Event) {
	for _, ch := range controller.events {
		select {
		case ch <- event:
		default:
		}
	}
}
