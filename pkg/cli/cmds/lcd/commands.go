// Package lcd adds the display commands to the shell.
package lcd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/cfa533.go/pkg/cfa533"
	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
	"github.com/robotalks/cfa533.go/pkg/cli/sh"
)

// parseBytes parses numbers like 0x1f, 31 or 0b11111 into bytes.
func parseBytes(args []string) ([]byte, error) {
	out := make([]byte, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q", arg)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func text(c *ishell.Context, from int) string {
	if from >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[from:], " ")
}

func run(c *ishell.Context, fn func(context.Context, *cfa533.Device) error) {
	sh.DoCommand(c, func(ctx context.Context, d *cfa533.Device) (interface{}, error) {
		return nil, fn(ctx, d)
	})
}

var (
	// PingCmd pings the display.
	PingCmd = ishell.Cmd{
		Name: "ping",
		Help: "[TEXT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			data := []byte(text(c, 0))
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.Ping(ctx, data)
			})
		}),
	}

	// VersionCmd reads hardware and firmware version.
	VersionCmd = ishell.Cmd{
		Name:    "version",
		Aliases: []string{"ver"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, d *cfa533.Device) (interface{}, error) {
				return d.Version(ctx)
			})
		}),
	}

	// ClearCmd clears the screen.
	ClearCmd = ishell.Cmd{
		Name:    "clear",
		Aliases: []string{"cls"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.Clear(ctx)
			})
		}),
	}

	// LineOneCmd sets the first line.
	LineOneCmd = ishell.Cmd{
		Name: "line1",
		Help: "TEXT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := text(c, 0)
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SetLineOne(ctx, s)
			})
		}),
	}

	// LineTwoCmd sets the second line.
	LineTwoCmd = ishell.Cmd{
		Name: "line2",
		Help: "TEXT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := text(c, 0)
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SetLineTwo(ctx, s)
			})
		}),
	}

	// ContentsCmd sets both lines.
	ContentsCmd = ishell.Cmd{
		Name: "contents",
		Help: "LINE1 [LINE2]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			var lines [2]string
			copy(lines[:], c.Args)
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SetContents(ctx, lines[0], lines[1])
			})
		}),
	}

	// SendCmd writes text at a position.
	SendCmd = ishell.Cmd{
		Name: "send",
		Help: "COL ROW TEXT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			col, err := sh.IntArg(c, 0, "column")
			if err != nil {
				c.Err(err)
				return
			}
			row, err := sh.IntArg(c, 1, "row")
			if err != nil {
				c.Err(err)
				return
			}
			s := text(c, 2)
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SendData(ctx, col, row, s)
			})
		}),
	}

	// CursorCmd moves the cursor.
	CursorCmd = ishell.Cmd{
		Name: "cursor",
		Help: "COL ROW",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			col, err := sh.IntArg(c, 0, "column")
			if err != nil {
				c.Err(err)
				return
			}
			row, err := sh.IntArg(c, 1, "row")
			if err != nil {
				c.Err(err)
				return
			}
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SetCursorPosition(ctx, col, row)
			})
		}),
	}

	// StyleCmd sets the cursor style.
	StyleCmd = ishell.Cmd{
		Name: "style",
		Help: "0-3 (none, blinking block, underscore, blinking underscore)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			style, err := sh.IntArg(c, 0, "style")
			if err != nil {
				c.Err(err)
				return
			}
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SetCursorStyle(ctx, cfa533.CursorStyle(style))
			})
		}),
	}

	// ContrastCmd sets the contrast.
	ContrastCmd = ishell.Cmd{
		Name: "contrast",
		Help: "0-200",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			v, err := sh.IntArg(c, 0, "contrast")
			if err != nil {
				c.Err(err)
				return
			}
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SetContrast(ctx, v)
			})
		}),
	}

	// BacklightCmd sets the backlight.
	BacklightCmd = ishell.Cmd{
		Name:    "backlight",
		Aliases: []string{"bl"},
		Help:    "LCD [KEYPAD], 0-100",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			lcd, err := sh.IntArg(c, 0, "brightness")
			if err != nil {
				c.Err(err)
				return
			}
			keypad := lcd
			if len(c.Args) > 1 {
				if keypad, err = sh.IntArg(c, 1, "keypad brightness"); err != nil {
					c.Err(err)
					return
				}
			}
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SetBacklight(ctx, lcd, keypad)
			})
		}),
	}

	// CharCmd defines a special character.
	CharCmd = ishell.Cmd{
		Name: "char",
		Help: "INDEX ROW0 ... ROW7",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			index, err := sh.IntArg(c, 0, "index")
			if err != nil {
				c.Err(err)
				return
			}
			bitmap, err := parseBytes(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SetSpecialCharacter(ctx, index, bitmap)
			})
		}),
	}

	// MemoryCmd reads controller memory.
	MemoryCmd = ishell.Cmd{
		Name:    "mem",
		Aliases: []string{"peek"},
		Help:    "ADDR",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			addr, err := parseBytes(c.Args)
			if err != nil || len(addr) != 1 {
				c.Err(fmt.Errorf("one address expected"))
				return
			}
			sh.DoCommand(c, func(ctx context.Context, d *cfa533.Device) (interface{}, error) {
				data, err := d.ReadMemory(ctx, addr[0])
				if err != nil {
					return nil, err
				}
				return fmt.Sprintf("% x", data), nil
			})
		}),
	}

	// FlashReadCmd reads the user flash area.
	FlashReadCmd = ishell.Cmd{
		Name: "flash.read",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, d *cfa533.Device) (interface{}, error) {
				data, err := d.ReadUserFlash(ctx)
				if err != nil {
					return nil, err
				}
				return fmt.Sprintf("%q", data), nil
			})
		}),
	}

	// FlashWriteCmd writes the user flash area.
	FlashWriteCmd = ishell.Cmd{
		Name: "flash.write",
		Help: "TEXT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			data := []byte(text(c, 0))
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.WriteUserFlash(ctx, data)
			})
		}),
	}

	// BootStateCmd stores the boot state.
	BootStateCmd = ishell.Cmd{
		Name: "bootstate",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.StoreBootState(ctx)
			})
		}),
	}

	// RebootCmd reboots the display.
	RebootCmd = ishell.Cmd{
		Name: "reboot",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.Reboot(ctx)
			})
		}),
	}

	// BaudCmd changes the baud rate.
	BaudCmd = ishell.Cmd{
		Name: "baud",
		Help: "19200|115200",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("baud rate expected"))
				return
			}
			baud, err := comm.ParseBaudRate(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			run(c, func(ctx context.Context, d *cfa533.Device) error {
				return d.SetBaudRate(ctx, baud)
			})
		}),
	}

	// KeysCmd polls the keypad.
	KeysCmd = ishell.Cmd{
		Name: "keys",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, d *cfa533.Device) (interface{}, error) {
				return d.ReadKeypadPolled(ctx)
			})
		}),
	}

	// ListenCmd toggles printing of keypad events.
	ListenCmd = ishell.Cmd{
		Name: "listen",
		Help: "[on|off]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			on := !s.Listening()
			if len(c.Args) > 0 {
				on = c.Args[0] == "on"
			}
			if s.EchoKeys(on) {
				c.Println("listening on keypad")
			} else {
				c.Println("not listening")
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&PingCmd,
		&VersionCmd,
		&ClearCmd,
		&LineOneCmd,
		&LineTwoCmd,
		&ContentsCmd,
		&SendCmd,
		&CursorCmd,
		&StyleCmd,
		&ContrastCmd,
		&BacklightCmd,
		&CharCmd,
		&MemoryCmd,
		&FlashReadCmd,
		&FlashWriteCmd,
		&BootStateCmd,
		&RebootCmd,
		&BaudCmd,
		&KeysCmd,
		&ListenCmd,
	)
}
