// Package scheduler drives repeated generation calls under a
// Start/Pause/Step/Reset state machine with adaptive delay and
// stale-response protection.
//
// The scheduler owns the current board, the generation counter, and the
// state; nothing else writes them. All interaction flows through a command
// channel into a single goroutine, so there is never more than one
// outstanding generation call and every update is applied in order. An
// already-dispatched call cannot be aborted; commands that invalidate it
// (Pause, Reset, board replacement) bump an epoch token instead, and a
// result carrying a stale epoch is discarded without touching the board or
// the counter.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/cellforge/lifegrid/internal/board"
	"github.com/cellforge/lifegrid/internal/generate"
	"github.com/cellforge/lifegrid/internal/oracle"
	"github.com/cellforge/lifegrid/internal/rng"
)

// Config holds board generation parameters and animation cadence.
type Config struct {
	Width    int
	Height   int
	Density  float64
	Alphabet board.Alphabet

	// Interval is the target spacing between generation calls. The wait
	// after a call is Interval minus the call's elapsed time, floored at
	// zero, so slow oracles animate as fast as they can answer.
	Interval time.Duration

	// CallTimeout bounds a single generation call. Zero means no bound.
	CallTimeout time.Duration
}

// DefaultConfig returns the parameters used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Width:    60,
		Height:   20,
		Density:  0.3,
		Alphabet: board.DefaultAlphabet,
		Interval: 500 * time.Millisecond,
	}
}

// Snapshot is a read-only view of the scheduler at one moment.
type Snapshot struct {
	State       State
	Board       board.Board
	Generation  int
	Population  int
	LastLatency time.Duration
	Err         error
}

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdPause
	cmdStep
	cmdReset
	cmdSnapshot
	cmdSetInterval
	cmdSetBoard
	cmdClose
)

type command struct {
	kind     cmdKind
	interval time.Duration
	board    board.Board
	reply    chan Snapshot
}

type result struct {
	epoch   int
	board   board.Board
	elapsed time.Duration
	err     error
}

// Scheduler runs the animation state machine in its own goroutine.
type Scheduler struct {
	adapter *oracle.Adapter
	cfg     Config
	rand    *rng.Source

	cmds    chan command
	results chan result
	done    chan struct{}
}

// New starts a scheduler over the given adapter. A nil source falls back to
// ambient randomness.
func New(adapter *oracle.Adapter, cfg Config, r *rng.Source) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultConfig()
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if len(cfg.Alphabet) == 0 {
		cfg.Alphabet = board.DefaultAlphabet
	}
	if r == nil {
		r = rng.NewAmbient()
	}
	s := &Scheduler{
		adapter: adapter,
		cfg:     cfg,
		rand:    r,
		cmds:    make(chan command),
		// Capacity one: at most one call is ever in flight, so the worker
		// goroutine can always deliver its result and exit.
		results: make(chan result, 1),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Start begins or resumes animation, generating a board first if none
// exists yet.
func (s *Scheduler) Start() Snapshot { return s.send(command{kind: cmdStart}) }

// Pause stops the animation loop. A call already in flight keeps running;
// its eventual result is discarded.
func (s *Scheduler) Pause() Snapshot { return s.send(command{kind: cmdPause}) }

// Step performs exactly one generation call from any non-Running state,
// staying in that state. Ignored while Running.
func (s *Scheduler) Step() Snapshot { return s.send(command{kind: cmdStep}) }

// Reset returns to Idle with a fresh random board, a zeroed generation
// counter, and no error.
func (s *Scheduler) Reset() Snapshot { return s.send(command{kind: cmdReset}) }

// Snapshot reads the current state without changing it.
func (s *Scheduler) Snapshot() Snapshot { return s.send(command{kind: cmdSnapshot}) }

// SetInterval changes the animation cadence for subsequent waits.
func (s *Scheduler) SetInterval(d time.Duration) Snapshot {
	return s.send(command{kind: cmdSetInterval, interval: d})
}

// SetBoard replaces the current board, for seeding and pattern placement.
// A shape change zeroes the generation counter; any in-flight result is
// invalidated either way.
func (s *Scheduler) SetBoard(b board.Board) Snapshot {
	return s.send(command{kind: cmdSetBoard, board: b.Clone()})
}

// Close shuts the scheduler down. Pending timers stop; an in-flight call is
// abandoned.
func (s *Scheduler) Close() {
	s.send(command{kind: cmdClose})
}

func (s *Scheduler) send(c command) Snapshot {
	c.reply = make(chan Snapshot, 1)
	select {
	case s.cmds <- c:
		return <-c.reply
	case <-s.done:
		return Snapshot{}
	}
}

// loop state, owned exclusively by run.
type loopState struct {
	state     State
	board     board.Board
	haveBoard bool
	gen       int
	lastErr   error
	latency   time.Duration

	epoch       int
	inflight    bool
	pendingStep bool

	timer  *time.Timer
	timerC <-chan time.Time
}

func (s *Scheduler) run() {
	var ls loopState

	for {
		select {
		case c := <-s.cmds:
			if c.kind == cmdClose {
				ls.stopTimer()
				close(s.done)
				c.reply <- s.snapshot(&ls)
				return
			}
			s.handleCommand(&ls, c)
			c.reply <- s.snapshot(&ls)

		case res := <-s.results:
			s.handleResult(&ls, res)

		case <-ls.timerC:
			ls.timer = nil
			ls.timerC = nil
			if ls.state == Running && !ls.inflight {
				s.dispatch(&ls)
			}
		}
	}
}

func (s *Scheduler) handleCommand(ls *loopState, c command) {
	switch c.kind {
	case cmdStart:
		if ls.state == Running {
			return
		}
		if err := s.reachable(); err != nil {
			ls.lastErr = err
			return
		}
		if !ls.haveBoard {
			s.regenerate(ls)
		}
		ls.state = Running
		ls.pendingStep = false
		if !ls.inflight {
			s.dispatch(ls)
		}

	case cmdPause:
		if ls.state != Running {
			return
		}
		ls.state = Paused
		ls.stopTimer()
		// The in-flight call, if any, no longer reflects user intent.
		ls.epoch++

	case cmdStep:
		if ls.state == Running {
			return
		}
		if err := s.reachable(); err != nil {
			ls.lastErr = err
			return
		}
		if !ls.haveBoard {
			s.regenerate(ls)
		}
		if ls.inflight {
			// An abandoned call has not resolved yet; run the step once it
			// does, keeping a single call in flight.
			ls.pendingStep = true
			return
		}
		s.dispatch(ls)

	case cmdReset:
		ls.state = Idle
		ls.stopTimer()
		ls.epoch++
		ls.pendingStep = false
		s.regenerate(ls)
		ls.gen = 0
		ls.lastErr = nil

	case cmdSetInterval:
		if c.interval > 0 {
			s.cfg.Interval = c.interval
		}

	case cmdSetBoard:
		shapeChanged := !ls.haveBoard ||
			c.board.Width() != ls.board.Width() ||
			c.board.Height() != ls.board.Height()
		ls.board = c.board
		ls.haveBoard = true
		ls.epoch++
		if shapeChanged {
			ls.gen = 0
		}
		if ls.state == Running && !ls.inflight && ls.timerC == nil {
			s.dispatch(ls)
		}

	case cmdSnapshot:
		// Reply alone is enough.
	}
}

func (s *Scheduler) handleResult(ls *loopState, res result) {
	ls.inflight = false

	stale := res.epoch != ls.epoch
	if !stale {
		if res.err != nil {
			// Abort the running sequence, keep the last good board.
			ls.lastErr = res.err
			if ls.state == Running {
				ls.state = Paused
				ls.stopTimer()
			}
		} else {
			ls.latency = res.elapsed
			converged := res.board.Equal(ls.board)
			ls.board = res.board
			ls.gen++
			ls.lastErr = nil
			if ls.state == Running {
				if converged {
					// The population has stabilized; stepping further is a
					// no-op.
					ls.state = Paused
				} else {
					s.wait(ls, res.elapsed)
				}
			}
		}
	}

	// A stale result resolving may unblock work queued behind it.
	if ls.inflight {
		return
	}
	if ls.pendingStep && ls.state != Running {
		ls.pendingStep = false
		s.dispatch(ls)
		return
	}
	if ls.state == Running && ls.timerC == nil {
		s.dispatch(ls)
	}
}

// reachable rejects Start and Step before any call is attempted when the
// oracle was never configured.
func (s *Scheduler) reachable() error {
	if s.adapter == nil || !s.adapter.Configured() {
		return fmt.Errorf("%w: cannot start animation", oracle.ErrConfigMissing)
	}
	return nil
}

// dispatch launches one generation call for the current epoch.
func (s *Scheduler) dispatch(ls *loopState) {
	ls.inflight = true
	epoch := ls.epoch
	b := ls.board.Clone()
	timeout := s.cfg.CallTimeout

	go func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := time.Now()
		next, err := s.adapter.Advance(ctx, b)
		s.results <- result{
			epoch:   epoch,
			board:   next,
			elapsed: time.Since(start),
			err:     err,
		}
	}()
}

// wait arms the delay timer for the next call: the configured interval minus
// the time the last call already consumed, floored at zero.
func (s *Scheduler) wait(ls *loopState, elapsed time.Duration) {
	delay := s.cfg.Interval - elapsed
	if delay < 0 {
		delay = 0
	}
	ls.stopTimer()
	ls.timer = time.NewTimer(delay)
	ls.timerC = ls.timer.C
}

func (s *Scheduler) regenerate(ls *loopState) {
	ls.board = generate.Random(s.cfg.Width, s.cfg.Height, s.cfg.Density, s.cfg.Alphabet, s.rand)
	ls.haveBoard = true
}

func (s *Scheduler) snapshot(ls *loopState) Snapshot {
	snap := Snapshot{
		State:       ls.state,
		Generation:  ls.gen,
		LastLatency: ls.latency,
		Err:         ls.lastErr,
	}
	if ls.haveBoard {
		snap.Board = ls.board.Clone()
		snap.Population = ls.board.Population()
	}
	return snap
}

func (ls *loopState) stopTimer() {
	if ls.timer != nil {
		ls.timer.Stop()
		ls.timer = nil
		ls.timerC = nil
	}
}
