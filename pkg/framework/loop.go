package framework

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/jonboulle/clockwork"

	"github.com/robotalks/cfa533.go/internal/syncutil"
)

// DefaultInterval is the iteration interval if Loop.Interval is not set.
const DefaultInterval = 100 * time.Millisecond

// Loop runs controllers periodically and whenever triggered.
type Loop struct {
	Interval time.Duration
	Clock    clockwork.Clock

	controllers []Controller
	runners     []Runnable

	messages []Message
	lock     syncutil.Mutex

	wakeUpCh chan struct{}
}

type loopIteration struct {
	*Loop
	ctx      context.Context
	time     time.Time
	messages []Message
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultInterval,
		Clock:    clockwork.NewRealClock(),
		wakeUpCh: make(chan struct{}, 1),
	}
}

// AddController registers controllers, run in registration order.
// A controller also implementing Runnable is started with the loop.
func (l *Loop) AddController(ctls ...Controller) *Loop {
	l.controllers = append(l.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnables running along with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	clock := l.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner := NewRunnerWith(ctx).Go(l.runners...)
	defer runner.Wait()

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			l.runIteration(ctx, clock.Now())
		case <-l.wakeUpCh:
			l.runIteration(ctx, clock.Now())
		}
	}
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.messages = append(l.messages, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Post posts a message and runs the next iteration right away.
func (l *Loop) Post(msg Message) {
	l.PostMessage(msg)
	l.TriggerNext()
}

func (l *Loop) runIteration(ctx context.Context, now time.Time) {
	iter := &loopIteration{Loop: l, ctx: ctx, time: now}
	l.lock.Lock()
	iter.messages, l.messages = l.messages, nil
	l.lock.Unlock()
	for _, ctl := range l.controllers {
		if err := ctl.Control(iter); err != nil {
			glog.Errorf("controller error: %v", err)
		}
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) Messages() []Message {
	return t.messages
}
