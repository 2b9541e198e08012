// Command lcdd serves a CFA533 to the network over MQTT and websocket.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/robotalks/cfa533.go/pkg/bridge/mqtt"
	"github.com/robotalks/cfa533.go/pkg/bridge/websocket"
	"github.com/robotalks/cfa533.go/pkg/cfa533"
	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
	"github.com/robotalks/cfa533.go/pkg/config"
	fx "github.com/robotalks/cfa533.go/pkg/framework"
)

var conf = config.Default()

func serve(*cobra.Command, []string) error {
	if conf.Bridge.MQTTURL == "" && conf.Bridge.WebsocketAddr == "" {
		return fmt.Errorf("nothing to serve, set -mqtt or -ws")
	}
	dev, err := conf.OpenDevice()
	if err != nil {
		return err
	}
	defer dev.Close()

	ctx, cancel := context.WithTimeout(context.Background(), conf.CommandTimeout())
	defer cancel()
	meta := mqtt.Meta{
		ID:       conf.DeviceID(),
		Port:     conf.Serial.Port,
		BaudRate: conf.Serial.BaudRate,
		Columns:  cfa533.Columns,
		Rows:     cfa533.Rows,
	}
	if meta.Version, err = dev.Version(ctx); err != nil {
		return err
	}
	if err := dev.ConfigureKeyReporting(ctx, comm.KeyAll, comm.KeyAll); err != nil {
		return err
	}
	glog.Infof("%s on %s: %s", meta.ID, meta.Port, meta.Version)

	runner := fx.NewRunner().HandleSignals()
	if conf.Bridge.MQTTURL != "" {
		b, err := mqtt.NewBridge(conf.Bridge.MQTTURL, dev, meta)
		if err != nil {
			return err
		}
		runner.Go(fx.NamedRun("mqtt", b))
	}
	if conf.Bridge.WebsocketAddr != "" {
		runner.Go(fx.NamedRun("websocket", websocket.NewServer(dev, conf.Bridge.WebsocketAddr)))
	}
	return runner.Wait()
}

func main() {
	conf.SetupFlags(flag.CommandLine)
	conf.SetupBridgeFlags(flag.CommandLine)

	cmd := &cobra.Command{
		Use:   "lcdd",
		Short: "Serve the display keypad and screen to the network.",
		Args:  cobra.ExactArgs(0),
		PersistentPreRun: func(*cobra.Command, []string) {
			// glog reads its flags from the go flag set.
			flag.CommandLine.Parse(nil)
		},
		RunE:         serve,
		SilenceUsage: true,
	}
	cmd.Flags().AddGoFlagSet(flag.CommandLine)

	if err := cmd.Execute(); err != nil {
		glog.Exit(err)
	}
}
