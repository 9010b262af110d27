package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (platform.Board.Name)
// Val: raw JSON bytes for that board, decoded over Defaults()
// -----------------------------------------------------------------------------

// The software capture on the Pico reads a whole line inside one camera step:
// 320 bytes at a 1 MHz pixel clock plus the line processing must fit in a tick.
const cfgPico = `{
  "tick_us": 2000,
  "max_tasks": 12,
  "camera": {
    "width": 160,
    "height": 120,
    "luminance_mode": 0,
    "init_repeat": 1,
    "gradient_noise": 20,
    "pixel_clock_hz": 1000000
  },
  "serial": {
    "baud": 115200
  },
  "heartbeat": {
    "period_ms": 500
  }
}`

const cfgSim = `{
  "tick_us": 1000,
  "camera": {
    "init_repeat": 1
  },
  "heartbeat": {
    "period_ms": 500
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"sim":  []byte(cfgSim),
}
