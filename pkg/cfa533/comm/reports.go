package comm

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/cfa533.go/internal/syncutil"
)

// ReportEvent is an unsolicited report from the device.
type ReportEvent struct {
	ID   byte
	Data []byte
	// Action is set for key activity reports.
	Action KeypadAction
}

// IsKeyActivity tells if the report is a keypad event.
func (e ReportEvent) IsKeyActivity() bool {
	return e.ID == ReportKeyActivity && e.Action.Valid()
}

func newReportEvent(pkt *Packet) ReportEvent {
	evt := ReportEvent{ID: pkt.ID(), Data: pkt.Data}
	if evt.ID == ReportKeyActivity && len(pkt.Data) > 0 {
		evt.Action = KeypadAction(pkt.Data[0])
	}
	return evt
}

// ReportHandler is called when a report is received.
type ReportHandler interface {
	HandleReport(ReportEvent)
}

// HandleReportFunc is func type of ReportHandler.
type HandleReportFunc func(ReportEvent)

// HandleReport implements ReportHandler.
func (f HandleReportFunc) HandleReport(evt ReportEvent) {
	f(evt)
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	handler ReportHandler
}

type subscribers struct {
	lock syncutil.RWMutex
	list []*Subscription
}

func (s *subscribers) add(h ReportHandler) *Subscription {
	sub := &Subscription{handler: h}
	s.lock.Lock()
	s.list = append(s.list, sub)
	s.lock.Unlock()
	return sub
}

func (s *subscribers) remove(sub *Subscription) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	for n, item := range s.list {
		if item == sub {
			list := make([]*Subscription, 0, len(s.list)-1)
			list = append(list, s.list[:n]...)
			s.list = append(list, s.list[n+1:]...)
			return true
		}
	}
	return false
}

func (s *subscribers) snapshot() []*Subscription {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.list
}

func (s *subscribers) deliver(evt ReportEvent) {
	for _, sub := range s.snapshot() {
		sub.handler.HandleReport(evt)
	}
}

// reportQueue hands reports from the receive path to a delivery goroutine
// in arrival order. Pushing never blocks.
type reportQueue struct {
	lock   syncutil.Mutex
	cond   *sync.Cond
	events []ReportEvent
	closed bool
}

func newReportQueue() *reportQueue {
	q := &reportQueue{}
	q.cond = sync.NewCond(&q.lock)
	return q
}

func (q *reportQueue) push(evt ReportEvent) {
	q.lock.Lock()
	if !q.closed {
		q.events = append(q.events, evt)
	}
	q.lock.Unlock()
	q.cond.Signal()
}

func (q *reportQueue) close() {
	q.lock.Lock()
	q.closed = true
	q.lock.Unlock()
	q.cond.Broadcast()
}

// run delivers until closed. Events queued before close are still delivered.
func (q *reportQueue) run(subs *subscribers) {
	for {
		q.lock.Lock()
		for len(q.events) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.events) == 0 {
			q.lock.Unlock()
			return
		}
		events := q.events
		q.events = nil
		q.lock.Unlock()
		for _, evt := range events {
			glog.V(3).Infof("report 0x%02x %v", evt.ID, evt.Action)
			subs.deliver(evt)
		}
	}
}
