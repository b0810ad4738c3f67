// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// sweep is a synthetic sensor going back and forth between lo and hi.
type sweep struct {
	lo, hi, step physic.ElectricPotential
	v            physic.ElectricPotential
	up           bool
}

// newSweep returns a sweep reaching hi after steps reads.
func newSweep(lo, hi physic.ElectricPotential, steps int) (*sweep, error) {
	if hi <= lo || steps < 1 {
		return nil, fmt.Errorf("invalid sweep %s..%s in %d steps", lo, hi, steps)
	}
	return &sweep{lo: lo, hi: hi, step: (hi - lo) / physic.ElectricPotential(steps), v: lo, up: true}, nil
}

func (s *sweep) String() string {
	return fmt.Sprintf("sweep{%s..%s}", s.lo, s.hi)
}

// BusVoltage implements monitor.Sensor.
func (s *sweep) BusVoltage() (physic.ElectricPotential, error) {
	v := s.v
	if s.up {
		s.v += s.step
		if s.v >= s.hi {
			s.v, s.up = s.hi, false
		}
	} else {
		s.v -= s.step
		if s.v <= s.lo {
			s.v, s.up = s.lo, true
		}
	}
	return v, nil
}
