package main

import (
	"context"
	"time"

	"camkernel-go/platform"
	"camkernel-go/services/config"
	"camkernel-go/services/firmware"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	board := platform.Default()
	cfg, err := config.Load(board.Name)
	if err != nil {
		println("[main] config:", err.Error(), "- using defaults")
	}

	sys, err := firmware.Build(board, cfg, nil)
	if err != nil {
		println("[main] build:", err.Error())
		for {
			board.Watchdog.Feed()
			board.FaultLED.Set(true)
			time.Sleep(100 * time.Millisecond)
		}
	}
	sys.Run(context.Background())
}
