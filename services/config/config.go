// Package config resolves the embedded per-board configuration into typed
// settings.
package config

import (
	"encoding/json"

	"camkernel-go/errcode"
	"camkernel-go/x/timex"
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

type Camera struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	LuminanceMode uint8  `json:"luminance_mode"`
	Address       uint8  `json:"address"`
	InitRepeat    int    `json:"init_repeat"`
	GradientNoise uint8  `json:"gradient_noise"`
	PixelClockHz  uint32 `json:"pixel_clock_hz"`
}

type Serial struct {
	Baud  uint32 `json:"baud"`
	TXBuf int    `json:"tx_buf"`
	RXBuf int    `json:"rx_buf"`
}

type Heartbeat struct {
	PeriodMs uint32 `json:"period_ms"`
}

type Config struct {
	TickUS    uint32    `json:"tick_us"`
	MaxTasks  int       `json:"max_tasks"`
	I2CSettle uint32    `json:"i2c_settle_ms"`
	LEDDelay  uint32    `json:"led_delay_ms"`
	Camera    Camera    `json:"camera"`
	Serial    Serial    `json:"serial"`
	Heartbeat Heartbeat `json:"heartbeat"`
}

// Defaults returns the settings used for any field a board omits.
func Defaults() Config {
	return Config{
		TickUS:    1000,
		MaxTasks:  12,
		I2CSettle: 30,
		LEDDelay:  1000,
		Camera: Camera{
			Width:         160,
			Height:        120,
			InitRepeat:    1,
			GradientNoise: 20,
			PixelClockHz:  8_000_000,
		},
		Serial:    Serial{Baud: 115200, TXBuf: 200, RXBuf: 8},
		Heartbeat: Heartbeat{PeriodMs: 500},
	}
}

// Load decodes the embedded config for board over Defaults.
func Load(board string) (Config, error) {
	cfg := Defaults()
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return cfg, &errcode.E{C: errcode.InvalidParams, Op: "config.load", Msg: "no embedded config for board " + board}
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Defaults(), &errcode.E{C: errcode.InvalidParams, Op: "config.load", Msg: "decode", Err: err}
	}
	if cfg.MaxTasks <= 0 || cfg.TickUS == 0 {
		return Defaults(), &errcode.E{C: errcode.InvalidParams, Op: "config.load", Msg: "max_tasks and tick_us must be positive"}
	}
	return cfg, nil
}

// Ticks converts a delay in milliseconds to scheduler ticks.
func (c Config) Ticks(ms uint32) int { return timex.TicksFromMs(ms, c.TickUS) }
