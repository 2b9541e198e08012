// Package demo has small programs showing off the display, each a
// controller of a framework Loop fed with keypad events.
package demo

import (
	"context"
	"time"

	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
	fx "github.com/robotalks/cfa533.go/pkg/framework"
)

// Display is what the demos draw on. *cfa533.Device implements it.
type Display interface {
	Clear(ctx context.Context) error
	SetContents(ctx context.Context, lineOne, lineTwo string) error
	SendData(ctx context.Context, col, row int, text string) error
}

// KeySource delivers keypad events. *cfa533.Device implements it.
type KeySource interface {
	SubscribeKeys(fn func(comm.KeypadAction)) *comm.Subscription
	Unsubscribe(sub *comm.Subscription)
}

// Run runs ctl every interval until ctx is done. Keypad events are posted
// to the loop as comm.KeypadAction messages.
func Run(ctx context.Context, keys KeySource, ctl fx.Controller, interval time.Duration) error {
	loop := fx.NewLoop()
	loop.Interval = interval
	loop.AddController(ctl)
	sub := keys.SubscribeKeys(func(action comm.KeypadAction) {
		loop.Post(action)
	})
	defer keys.Unsubscribe(sub)
	return loop.Run(ctx)
}

// KeyActions extracts keypad events from the posted messages.
func KeyActions(cc fx.ControlContext) []comm.KeypadAction {
	var actions []comm.KeypadAction
	for _, msg := range cc.Messages() {
		if action, ok := msg.(comm.KeypadAction); ok {
			actions = append(actions, action)
		}
	}
	return actions
}
