package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/cfa533.go/pkg/bridge"
	"github.com/robotalks/cfa533.go/pkg/bridge/msgs"
	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
)

// Topics relative to <prefix><id>/.
const (
	TopicEvent = "event"
	TopicCmd   = "cmd"
	TopicReply = "reply"
	TopicMeta  = "meta"
)

// Meta is published retained on <id>/meta while the bridge is online.
type Meta struct {
	ID       string `json:"id"`
	Port     string `json:"port,omitempty"`
	BaudRate int    `json:"baud_rate,omitempty"`
	Version  string `json:"version,omitempty"`
	Columns  int    `json:"columns"`
	Rows     int    `json:"rows"`
}

type publisher interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Bridge publishes keypad events and serves display commands over MQTT.
type Bridge struct {
	Queue   *Queue
	Display bridge.Display
	Meta    Meta

	pub publisher
}

// NewBridge creates a Bridge. The broker clears <id>/meta if the bridge
// goes away without a clean shutdown.
func NewBridge(brokerURL string, display bridge.Display, meta Meta) (*Bridge, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+meta.ID+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("cfa533:" + meta.ID)
	}
	b := &Bridge{
		Queue:   NewQueue(opts, topicPrefix),
		Display: display,
		Meta:    meta,
	}
	b.pub = b.Queue
	b.Queue.OnConnect = func(*Queue) { b.publishMeta() }
	return b, nil
}

func (b *Bridge) topic(name string) string {
	return b.Meta.ID + "/" + name
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	cmdSub := b.Queue.Sub(b.topic(TopicCmd), func(topic string, payload []byte) {
		b.handleCommand(ctx, payload)
	})
	defer cmdSub.Close()

	if token := b.Queue.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer b.Queue.Close()

	keySub := b.Display.SubscribeKeys(b.publishKey)
	defer b.Display.Unsubscribe(keySub)

	<-ctx.Done()
	b.pub.PubWith(b.topic(TopicMeta), nil, 1, true).WaitTimeout(time.Second)
	return nil
}

func (b *Bridge) publishMeta() {
	data, err := json.Marshal(&b.Meta)
	if err != nil {
		glog.Errorf("meta: %v", err)
		return
	}
	b.pub.PubWith(b.topic(TopicMeta), data, 1, true)
}

func (b *Bridge) publishKey(action comm.KeypadAction) {
	data, err := msgs.Marshal(msgs.KeyEventFrom(action))
	if err != nil {
		glog.Errorf("encode key event: %v", err)
		return
	}
	b.pub.PubWith(b.topic(TopicEvent), data, 0, false)
}

func (b *Bridge) handleCommand(ctx context.Context, payload []byte) {
	reply, err := bridge.ExecuteTyped(ctx, b.Display, payload)
	if err != nil {
		glog.Warningf("%s: bad message: %v", b.topic(TopicCmd), err)
		return
	}
	b.pub.PubWith(b.topic(TopicReply), reply, 0, false)
}
