// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// powerUp feeds the sensor board from two GPIO pins and waits for it to
// settle.
func powerUp(gnd, vcc gpio.PinOut, settle time.Duration) error {
	if err := gnd.Out(gpio.Low); err != nil {
		return fmt.Errorf("sensor ground %s: %w", gnd, err)
	}
	if err := vcc.Out(gpio.High); err != nil {
		return fmt.Errorf("sensor supply %s: %w", vcc, err)
	}
	time.Sleep(settle)
	return nil
}

func pinByName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no pin named %q", name)
	}
	return p, nil
}
