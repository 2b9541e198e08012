// Package bridge exposes a display to the network. Keypad events go out as
// KeyEvent messages and display commands come in as typed messages.
package bridge

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/cfa533.go/pkg/bridge/msgs"
	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
)

// Display is the part of *cfa533.Device served over the network.
type Display interface {
	Clear(ctx context.Context) error
	SetContents(ctx context.Context, lineOne, lineTwo string) error
	SendData(ctx context.Context, col, row int, text string) error
	SetContrast(ctx context.Context, contrast int) error
	SetBacklight(ctx context.Context, lcd, keypad int) error
	SubscribeKeys(fn func(comm.KeypadAction)) *comm.Subscription
	Unsubscribe(sub *comm.Subscription)
}

// Execute runs a command message against the display and returns
// CommandOK or CommandErr.
func Execute(ctx context.Context, d Display, msg msgs.SerializableMessage) msgs.SerializableMessage {
	var err error
	switch m := msg.(type) {
	case *msgs.Clear:
		err = d.Clear(ctx)
	case *msgs.SetContents:
		err = d.SetContents(ctx, m.Line1, m.Line2)
	case *msgs.SendData:
		err = d.SendData(ctx, int(m.Col), int(m.Row), m.Text)
	case *msgs.SetContrast:
		err = d.SetContrast(ctx, int(m.Contrast))
	case *msgs.SetBacklight:
		err = d.SetBacklight(ctx, int(m.Lcd), int(m.Keypad))
	default:
		err = msgs.ErrUnsupportedCommand
	}
	if err != nil {
		glog.Warningf("command %s failed: %v", msg, err)
		return msgs.NewCommandErr(err)
	}
	return msgs.NewCommandOK()
}

// ExecuteTyped decodes an encoded command, runs it and returns the encoded reply.
func ExecuteTyped(ctx context.Context, d Display, payload []byte) ([]byte, error) {
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		return nil, err
	}
	var reply msgs.SerializableMessage
	if !typed.IsCommand() || typed.IsReply() {
		reply = msgs.NewCommandErr(msgs.ErrUnsupportedCommand)
	} else if msg, err := typed.Decode(); err != nil {
		reply = msgs.NewCommandErr(err)
	} else {
		reply = Execute(ctx, d, msg)
	}
	return msgs.Marshal(reply)
}
