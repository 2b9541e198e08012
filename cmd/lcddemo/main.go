// Command lcddemo runs demos on a CFA533.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/robotalks/cfa533.go/pkg/cfa533"
	"github.com/robotalks/cfa533.go/pkg/config"
	"github.com/robotalks/cfa533.go/pkg/demo"
	fx "github.com/robotalks/cfa533.go/pkg/framework"
)

var (
	conf       = config.Default()
	fieldsFile string
)

func runDemo(name string, interval time.Duration, newCtl func(*cfa533.Device) (fx.Controller, error)) error {
	dev, err := conf.OpenDevice()
	if err != nil {
		return err
	}
	defer dev.Close()
	ctl, err := newCtl(dev)
	if err != nil {
		return err
	}
	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedFunc(name, func(ctx context.Context) error {
		return demo.Run(ctx, dev, ctl, interval)
	}))
	err = runner.Wait()
	ctx, cancel := context.WithTimeout(context.Background(), conf.CommandTimeout())
	defer cancel()
	if clearErr := dev.Clear(ctx); clearErr != nil {
		glog.Warningf("clear: %v", clearErr)
	}
	return err
}

func main() {
	conf.SetupFlags(flag.CommandLine)

	cmd := &cobra.Command{
		Use:  "lcddemo",
		Args: cobra.ExactArgs(0),
		PersistentPreRun: func(*cobra.Command, []string) {
			// glog reads its flags from the go flag set.
			flag.CommandLine.Parse(nil)
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	cmd.AddCommand(&cobra.Command{
		Use:   "knightrider",
		Short: "Character block tracing around the screen.",
		Args:  cobra.ExactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			return runDemo("knightrider", demo.KnightRiderInterval, func(dev *cfa533.Device) (fx.Controller, error) {
				return demo.NewKnightRider(dev), nil
			})
		},
	})

	multiField := &cobra.Command{
		Use:   "multifield",
		Short: "Multiple fields, selected with up and down, scrolled with left and right.",
		Args:  cobra.ExactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			return runDemo("multifield", time.Second, func(dev *cfa533.Device) (fx.Controller, error) {
				fields := demo.DefaultFields()
				if fieldsFile != "" {
					var err error
					if fields, err = demo.LoadFields(fieldsFile); err != nil {
						return nil, err
					}
				}
				return demo.NewMultiField(dev, fields), nil
			})
		},
	}
	multiField.Flags().StringVar(&fieldsFile, "file", fieldsFile, "JSON file with an array of {name, value} fields.")
	cmd.AddCommand(multiField)

	if err := cmd.Execute(); err != nil {
		glog.Exit(err)
	}
}
