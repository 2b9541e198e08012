package demo

import (
	"time"

	"github.com/robotalks/cfa533.go/pkg/cfa533"
	fx "github.com/robotalks/cfa533.go/pkg/framework"
)

// KnightRiderInterval is the step interval of KnightRider.
const KnightRiderInterval = 200 * time.Millisecond

const (
	riderWidth = 4
	riderBlock = "\x00\x00\x00\x00"
	riderBlank = "    "
)

// KnightRider moves a block of characters clockwise around the screen:
// right along the top line, left along the bottom one.
type KnightRider struct {
	Display Display

	x, y    int
	cleared bool
}

// NewKnightRider creates a KnightRider.
func NewKnightRider(d Display) *KnightRider {
	return &KnightRider{Display: d}
}

// Position returns the column and row of the block.
func (k *KnightRider) Position() (int, int) {
	return k.x, k.y
}

func riderStep(x, y int) (int, int) {
	if y == 0 {
		x += riderWidth
	} else {
		x -= riderWidth
	}
	switch last := cfa533.Columns - riderWidth; {
	case x > last:
		return last, y + 1
	case x < 0:
		return 0, y - 1
	}
	return x, y
}

// Control implements Controller.
func (k *KnightRider) Control(cc fx.ControlContext) error {
	ctx := cc.Context()
	if !k.cleared {
		if err := k.Display.Clear(ctx); err != nil {
			return err
		}
		k.cleared = true
	}
	oldX, oldY := k.x, k.y
	k.x, k.y = riderStep(k.x, k.y)
	if err := k.Display.SendData(ctx, k.x, k.y, riderBlock); err != nil {
		return err
	}
	return k.Display.SendData(ctx, oldX, oldY, riderBlank)
}
