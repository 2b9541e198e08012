// Package sh provides the interactive shell driving a display.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/cfa533.go/pkg/cfa533"
	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
	"github.com/robotalks/cfa533.go/pkg/cfa533/serial"
	"github.com/robotalks/cfa533.go/pkg/config"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *config.Config
	Device *cfa533.Device

	keySub *comm.Subscription
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Device == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// DoCommand runs fn against the connected device and prints the result.
// A nil result prints OK.
func DoCommand(c *ishell.Context, fn func(context.Context, *cfa533.Device) (interface{}, error)) error {
	s := ShellFrom(c)
	if s.Device == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	// a baud change waits for the ack and the reopen
	ctx, cancel := context.WithTimeout(context.Background(), 2*s.Config.CommandTimeout())
	defer cancel()
	res, err := fn(ctx, s.Device)
	if err != nil {
		c.Err(err)
		return err
	}
	if s.OutputJSON {
		out, err := json.Marshal(res)
		if err != nil {
			c.Err(err)
			return err
		}
		c.Println(string(out))
		return nil
	}
	if res == nil {
		c.Println("OK")
		return nil
	}
	c.Println(res)
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens the display on port at baud, replacing the current connection.
func (s *Shell) Connect(port string, baud comm.BaudRate) error {
	conf := *s.Config
	conf.Serial.Port, conf.Serial.BaudRate = port, int(baud)
	dev, err := conf.OpenDevice()
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Device = dev
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", port))
	return nil
}

// Disconnect disconnects current display.
func (s *Shell) Disconnect() {
	if s.Device != nil {
		s.EchoKeys(false)
		if err := s.Device.Close(); err != nil {
			glog.Warningf("disconnect: %v", err)
		}
		s.Device = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Listening tells if keypad events are printed.
func (s *Shell) Listening() bool {
	return s.keySub != nil
}

// EchoKeys turns printing of keypad events on or off.
func (s *Shell) EchoKeys(on bool) bool {
	if s.Device == nil || on == (s.keySub != nil) {
		return s.keySub != nil
	}
	if on {
		s.keySub = s.Device.SubscribeKeys(func(action comm.KeypadAction) {
			s.Shell.Printf("key %s\n", action)
		})
	} else {
		s.Device.Unsubscribe(s.keySub)
		s.keySub = nil
	}
	return on
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Serial.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Serial.Port)
		}
		baud, err := s.Config.BaudRate()
		if err == nil {
			err = s.Connect(s.Config.Serial.Port, baud)
		}
		if err != nil {
			glog.Exitf("connect %q failed: %v", s.Config.Serial.Port, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ports, err := serial.ListPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				out, err := json.Marshal(ports)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// ConnectCmd connects a display.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT [BAUD]]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			port := s.Config.Serial.Port
			baud, err := s.Config.BaudRate()
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if len(c.Args) > 1 {
				baud, err = comm.ParseBaudRate(c.Args[1])
			}
			if err != nil {
				c.Err(err)
				return
			}
			if port == "" {
				ports, err := serial.ListPorts()
				if err != nil {
					c.Err(err)
					return
				}
				if len(ports) == 0 {
					c.Err(fmt.Errorf("no serial port found"))
					return
				}
				if len(ports) > 1 && s.Interactive {
					port = ports[s.Shell.MultiChoice(ports, "Which one to connect?")]
				} else {
					port = ports[0]
				}
			}
			if err := s.Connect(port, baud); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current display.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// IntArg parses the n-th argument as an integer.
func IntArg(c *ishell.Context, n int, name string) (int, error) {
	if n >= len(c.Args) {
		return 0, fmt.Errorf("%s expected", name)
	}
	v, err := strconv.Atoi(c.Args[n])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, c.Args[n])
	}
	return v, nil
}

// Main is a helper to provide a single call in main.
func Main() {
	conf := config.Default()
	conf.SetupFlags(nil)
	flag.Parse()
	New(conf).WithAutoConnect(true).Run(flag.Args()...)
}
