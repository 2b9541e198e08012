// Package websocket serves a display to browsers. Each connection receives
// keypad events as JSON frames and may send display commands.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/cfa533.go/pkg/bridge"
	"github.com/robotalks/cfa533.go/pkg/bridge/msgs"
	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
	fx "github.com/robotalks/cfa533.go/pkg/framework"
)

// Frame is the JSON form of a message, e.g.
//
//	{"type":"contents","message":{"line1":"hello","line2":"world"}}
type Frame struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message,omitempty"`
}

var frameTypes = map[string]uint32{
	"ok":        msgs.CommandOKTypeID,
	"error":     msgs.CommandErrTypeID,
	"clear":     msgs.ClearTypeID,
	"contents":  msgs.SetContentsTypeID,
	"send":      msgs.SendDataTypeID,
	"contrast":  msgs.SetContrastTypeID,
	"backlight": msgs.SetBacklightTypeID,
	"key":       msgs.KeyEventTypeID,
}

// FrameOf encodes a message into a Frame.
func FrameOf(msg msgs.SerializableMessage) (*Frame, error) {
	for name, typeID := range frameTypes {
		if typeID != msg.TypeID() {
			continue
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return nil, err
		}
		return &Frame{Type: name, Message: data}, nil
	}
	return nil, &msgs.ErrUnknownType{TypeID: msg.TypeID()}
}

// Decode decodes the message in the frame.
func (f *Frame) Decode() (msgs.SerializableMessage, error) {
	typeID, ok := frameTypes[f.Type]
	if !ok {
		return nil, fmt.Errorf("unknown frame type %q", f.Type)
	}
	msg := msgs.MessageTypes[typeID].NewMessage()
	if len(f.Message) > 0 {
		if err := json.Unmarshal(f.Message, msg); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// DefaultQueueSize is the number of frames buffered per connection.
const DefaultQueueSize = 16

// Server serves the display over websocket connections.
type Server struct {
	Display bridge.Display
	Addr    string
	Path    string
	// QueueSize bounds the pending frames of a slow client, key events
	// are dropped when it fills up.
	QueueSize int
}

// NewServer creates a Server listening on addr.
func NewServer(display bridge.Display, addr string) *Server {
	return &Server{Display: display, Addr: addr, Path: "/ws", QueueSize: DefaultQueueSize}
}

// Handler returns the websocket handler.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(s.serveConn)
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.Path, s.Handler())
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("websocket listening on %s%s", s.Addr, s.Path)
	return fx.RunWithContextCloser(ctx, srv, func() error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func (s *Server) serveConn(ws *websocket.Conn) {
	defer ws.Close()
	size := s.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	frameCh, doneCh := make(chan *Frame, size), make(chan struct{})
	defer close(doneCh)
	go func() {
		for {
			select {
			case <-doneCh:
				return
			case frame := <-frameCh:
				if err := websocket.JSON.Send(ws, frame); err != nil {
					glog.V(2).Infof("websocket %s: %v", ws.Request().RemoteAddr, err)
					ws.Close()
					return
				}
			}
		}
	}()

	sub := s.Display.SubscribeKeys(func(action comm.KeypadAction) {
		frame, err := FrameOf(msgs.KeyEventFrom(action))
		if err != nil {
			return
		}
		select {
		case frameCh <- frame:
		default:
			glog.Warningf("websocket %s: queue full, dropped %v", ws.Request().RemoteAddr, action)
		}
	})
	defer s.Display.Unsubscribe(sub)

	ctx := ws.Request().Context()
	for {
		var frame Frame
		if err := websocket.JSON.Receive(ws, &frame); err != nil {
			if err != io.EOF {
				glog.V(2).Infof("websocket %s: %v", ws.Request().RemoteAddr, err)
			}
			return
		}
		var reply msgs.SerializableMessage
		if msg, err := frame.Decode(); err != nil {
			reply = msgs.NewCommandErr(err)
		} else {
			reply = bridge.Execute(ctx, s.Display, msg)
		}
		out, err := FrameOf(reply)
		if err != nil {
			glog.Errorf("websocket reply: %v", err)
			return
		}
		select {
		case frameCh <- out:
		case <-ctx.Done():
			return
		}
	}
}
