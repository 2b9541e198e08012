// Command lcdmon prints the messages of all displays on a broker.
package main

import (
	"context"
	"flag"
	"os"
	"reflect"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/cfa533.go/pkg/bridge/mqtt"
	"github.com/robotalks/cfa533.go/pkg/bridge/msgs"
	fx "github.com/robotalks/cfa533.go/pkg/framework"
)

var (
	mqttURL = "mqtt://localhost:1883/cfa533/"
)

func init() {
	if val := os.Getenv("LCD_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Set("logtostderr", "true")
	flag.Parse()

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}

	q.Sub("#", func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
			if len(payload) == 0 {
				glog.Infof("%s: offline", topic)
			} else {
				glog.Infof("%s: %s", topic, string(payload))
			}
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			glog.Warningf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			glog.Warningf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		glog.Infof("%s: [%s] %s", topic,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), msg.String())
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Exit(token.Error())
	}

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedFunc("monitor", func(ctx context.Context) error {
		<-ctx.Done()
		return q.Close()
	}))
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
