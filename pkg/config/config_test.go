package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcd.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[serial]
port = "/dev/ttyS3"
baud_rate = 115200
timeout = "500ms"

[bridge]
id = "hall"
websocket_addr = ":8533"
`), 0644))

	conf := NewConfig()
	conf.Bridge.MQTTURL = "mqtt://broker:1883/lcd/"
	require.NoError(t, conf.LoadFile(path))
	require.Equal(t, "/dev/ttyS3", conf.Serial.Port)
	require.Equal(t, Duration(500*time.Millisecond), conf.Serial.Timeout)
	require.Equal(t, "hall", conf.DeviceID())
	require.Equal(t, ":8533", conf.Bridge.WebsocketAddr)
	require.Equal(t, "mqtt://broker:1883/lcd/", conf.Bridge.MQTTURL)
	baud, err := conf.BaudRate()
	require.NoError(t, err)
	require.Equal(t, comm.Baud115200, baud)
}

func TestLoadFileErrors(t *testing.T) {
	conf := NewConfig()
	require.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.toml")))

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[serial]\ntimeout = \"soon\"\n"), 0644))
	require.Error(t, conf.LoadFile(path))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LCD_PORT":     "COM3",
		"LCD_BAUD":     "9600",
		"LCD_TIMEOUT":  "1s",
		"LCD_MQTT_URL": "mqtt://10.0.0.1:1883/",
	}
	conf := NewConfig()
	require.NoError(t, conf.applyEnv(func(key string) string { return env[key] }))
	require.Equal(t, "COM3", conf.Serial.Port)
	require.Equal(t, 9600, conf.Serial.BaudRate)
	require.Equal(t, Duration(time.Second), conf.Serial.Timeout)
	require.Equal(t, "mqtt://10.0.0.1:1883/", conf.Bridge.MQTTURL)

	env["LCD_BAUD"] = "4800"
	require.Error(t, conf.applyEnv(func(key string) string { return env[key] }))
}

func TestFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[serial]\nport = \"/dev/ttyS1\"\nbaud_rate = 9600\n"), 0644))

	conf := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	conf.SetupFlags(fs)
	conf.SetupBridgeFlags(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-baud", "115200", "-id", "desk"}))
	require.Equal(t, "/dev/ttyS1", conf.Serial.Port)
	require.Equal(t, 115200, conf.Serial.BaudRate)
	require.Equal(t, "desk", conf.DeviceID())

	conf.Serial.BaudRate = 1200
	_, err := conf.BaudRate()
	require.Error(t, err)
}

func TestCommandTimeout(t *testing.T) {
	conf := NewConfig()
	conf.Serial.Timeout = 0
	require.Equal(t, comm.DefaultTimeout, conf.CommandTimeout())
	conf.Serial.Timeout = Duration(500 * time.Millisecond)
	require.Equal(t, 500*time.Millisecond, conf.CommandTimeout())
}
