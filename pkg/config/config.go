// Package config provides common options for the programs driving a CFA533.
// Values come from defaults, LCD_* environment variables, a TOML file and
// command line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/pelletier/go-toml/v2"

	"github.com/robotalks/cfa533.go/pkg/cfa533"
	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
	"github.com/robotalks/cfa533.go/pkg/cfa533/serial"
)

// Duration is a time.Duration written as "2s" in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// SerialConfig is the [serial] table.
type SerialConfig struct {
	Port     string   `toml:"port"`
	BaudRate int      `toml:"baud_rate"`
	Timeout  Duration `toml:"timeout"`
}

// BridgeConfig is the [bridge] table.
type BridgeConfig struct {
	// ID names the display on the network, defaults to one derived from the machine ID.
	ID string `toml:"id"`
	// MQTTURL specifies the broker and topic prefix.
	// e.g. mqtt://host:port/topic-prefix
	MQTTURL string `toml:"mqtt_url"`
	// WebsocketAddr is the listen address of the websocket endpoint, empty to disable.
	WebsocketAddr string `toml:"websocket_addr"`
}

// Config provides common options.
type Config struct {
	Serial SerialConfig `toml:"serial"`
	Bridge BridgeConfig `toml:"bridge"`
}

var defaultConfig = Config{
	Serial: SerialConfig{
		Port:     "/dev/ttyUSB0",
		BaudRate: int(comm.DefaultBaudRate),
		Timeout:  Duration(comm.DefaultTimeout),
	},
	Bridge: BridgeConfig{
		MQTTURL: "mqtt://localhost:1883/cfa533/",
	},
}

func init() {
	if path := os.Getenv("LCD_CONFIG"); path != "" {
		if err := defaultConfig.LoadFile(path); err != nil {
			glog.Errorf("LCD_CONFIG: %v", err)
		}
	}
	if err := defaultConfig.applyEnv(os.Getenv); err != nil {
		glog.Errorf("environment: %v", err)
	}
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if val := getenv("LCD_PORT"); val != "" {
		c.Serial.Port = val
	}
	if val := getenv("LCD_BAUD"); val != "" {
		baud, err := comm.ParseBaudRate(val)
		if err != nil {
			return fmt.Errorf("LCD_BAUD: %w", err)
		}
		c.Serial.BaudRate = int(baud)
	}
	if val := getenv("LCD_TIMEOUT"); val != "" {
		if err := c.Serial.Timeout.UnmarshalText([]byte(val)); err != nil {
			return fmt.Errorf("LCD_TIMEOUT: %w", err)
		}
	}
	if val := getenv("LCD_ID"); val != "" {
		c.Bridge.ID = val
	}
	if val := getenv("LCD_MQTT_URL"); val != "" {
		c.Bridge.MQTTURL = val
	}
	if val := getenv("LCD_WS_ADDR"); val != "" {
		c.Bridge.WebsocketAddr = val
	}
	return nil
}

// SetupFlags sets up command line flags on fs, flag.CommandLine if nil.
// Flags given after -config override values from the file.
func (c *Config) SetupFlags(fs *flag.FlagSet) {
	if fs == nil {
		fs = flag.CommandLine
	}
	fs.Func("config", "Load options from a TOML file.", c.LoadFile)
	fs.StringVar(&c.Serial.Port, "port", c.Serial.Port, "Serial port of the display.")
	fs.IntVar(&c.Serial.BaudRate, "baud", c.Serial.BaudRate, "Baud rate: 9600, 19200 or 115200.")
	fs.DurationVar((*time.Duration)(&c.Serial.Timeout), "timeout", time.Duration(c.Serial.Timeout), "Command reply timeout.")
}

// SetupBridgeFlags sets up flags for network bridging.
func (c *Config) SetupBridgeFlags(fs *flag.FlagSet) {
	if fs == nil {
		fs = flag.CommandLine
	}
	fs.StringVar(&c.Bridge.ID, "id", c.Bridge.ID, "Display ID on the network.")
	fs.StringVar(&c.Bridge.MQTTURL, "mqtt", c.Bridge.MQTTURL, "MQTT broker URL with topic prefix, empty to disable.")
	fs.StringVar(&c.Bridge.WebsocketAddr, "ws", c.Bridge.WebsocketAddr, "Websocket listen address, empty to disable.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile overlays options from a TOML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// BaudRate validates and returns the baud rate.
func (c *Config) BaudRate() (comm.BaudRate, error) {
	if baud := comm.BaudRate(c.Serial.BaudRate); baud.Valid() {
		return baud, nil
	}
	return 0, fmt.Errorf("unsupported baud rate %d", c.Serial.BaudRate)
}

// CommandTimeout returns the command reply timeout.
func (c *Config) CommandTimeout() time.Duration {
	if c.Serial.Timeout > 0 {
		return time.Duration(c.Serial.Timeout)
	}
	return comm.DefaultTimeout
}

// DeviceID returns the configured ID or one derived from the machine ID.
func (c *Config) DeviceID() string {
	if c.Bridge.ID != "" {
		return c.Bridge.ID
	}
	id, err := machineid.ProtectedID("cfa533")
	if err != nil {
		glog.Warningf("machine id: %v", err)
		if host, err := os.Hostname(); err == nil {
			return host
		}
		return "cfa533"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// Connect opens the packet link.
func (c *Config) Connect() (*comm.Conn, error) {
	baud, err := c.BaudRate()
	if err != nil {
		return nil, err
	}
	conn := comm.NewConn(serial.New())
	conn.Timeout = c.CommandTimeout()
	if err := conn.Connect(c.Serial.Port, baud); err != nil {
		return nil, err
	}
	return conn, nil
}

// OpenDevice connects to the display.
func (c *Config) OpenDevice() (*cfa533.Device, error) {
	conn, err := c.Connect()
	if err != nil {
		return nil, err
	}
	return cfa533.New(conn), nil
}

// MustOpenDevice connects to the display or exits.
func (c *Config) MustOpenDevice() *cfa533.Device {
	dev, err := c.OpenDevice()
	if err != nil {
		glog.Exitf("open %s: %v", c.Serial.Port, err)
	}
	return dev
}
