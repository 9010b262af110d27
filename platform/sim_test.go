//go:build !rp2040 && !rp2350

package platform

import (
	"testing"

	"camkernel-go/drivers/tcm8230"
)

func powerUp(t *testing.T, c *SimCamera) {
	t.Helper()
	c.ResetPin().Set(true)
	if err := c.Clock().Start(8_000_000); err != nil {
		t.Fatal(err)
	}
	if err := tcm8230.Init(c, 0, 4, 2); err != tcm8230.ErrSize {
		t.Fatalf("odd size accepted: %v", err)
	}
	for _, w := range tcm8230.InitSequence(tcm8230.SizeQQVGA) {
		if err := tcm8230.Write(c, 0, w); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSimCameraSilentUntilPoweredUp(t *testing.T) {
	c := NewSimCamera(4, 2, Solid(1, 2, 3))
	c.Arm(make([]uint16, 4))
	if c.VSyncPin().Get() || c.Done() {
		t.Fatal("streaming before power-up")
	}
}

func TestSimCameraFrameTiming(t *testing.T) {
	c := NewSimCamera(4, 2, Solid(0x1F, 0, 0))
	powerUp(t, c)

	v, h := c.VSyncPin(), c.HSyncPin()
	for i := 0; i < c.BlankPolls; i++ {
		if !v.Get() || h.Get() {
			t.Fatalf("poll %d: expected blanking", i)
		}
	}
	if v.Get() {
		t.Fatal("frame did not start")
	}

	buf := make([]uint16, 4)
	for row := 0; row < 2; row++ {
		c.Arm(buf)
		if !c.Done() {
			t.Fatalf("row %d not captured", row)
		}
		// red 0xF800 arrives byte-swapped
		if buf[0] != 0x00F8 {
			t.Fatalf("sample=%#04x", buf[0])
		}
	}
	if c.Frames() != 1 {
		t.Fatalf("frames=%d", c.Frames())
	}
	c.Arm(buf)
	if c.Done() {
		t.Fatal("captured during blanking")
	}
}

func TestSimCameraNack(t *testing.T) {
	c := NewSimCamera(4, 2, nil)
	c.NackNext(1)
	err := c.Tx(tcm8230.Address, []byte{0x02, 0x00}, nil)
	if e, ok := err.(*I2CError); !ok || !e.Nack() {
		t.Fatalf("err=%v", err)
	}
	if err := c.Tx(0x21, []byte{0x02, 0x00}, nil); err == nil {
		t.Fatal("wrong address acked")
	}
	if err := c.Tx(tcm8230.Address, []byte{0x02, 0x55}, nil); err != nil {
		t.Fatal(err)
	}
	r := make([]byte, 1)
	if err := c.Tx(tcm8230.Address, []byte{0x02}, r); err != nil || r[0] != 0x55 {
		t.Fatalf("read back %#x err=%v", r[0], err)
	}
	if len(c.Writes()) != 1 {
		t.Fatalf("writes=%v", c.Writes())
	}
}

func TestNormalizeFillsMissingPeripherals(t *testing.T) {
	b := &Board{Name: "bare", CameraLEDs: []Pin{nil, &FakePin{}}}
	b.Normalize()
	if b.Watchdog == nil || b.FaultLED == nil || b.HeartbeatLED == nil || b.Serial == nil {
		t.Fatalf("board not normalized: %+v", b)
	}
	if b.CameraLEDs[0] == nil {
		t.Fatal("nil LED kept")
	}
	b.Watchdog.Feed()
	b.FaultLED.Set(true)
	if b.FaultLED.Get() {
		t.Fatal("stand-in pin latched a level")
	}
}
