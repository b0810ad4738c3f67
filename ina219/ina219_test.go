// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina219

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

const addr = DefaultAddress

func initOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: addr, W: []byte{_REG_CALIBRATION, 0x10, 0x00}}, // 4096
		{Addr: addr, W: []byte{_REG_CONFIG, 0x39, 0x9f}},      // 32V, /8, 12 bit, continuous
	}
}

func TestNew(t *testing.T) {
	pb := &i2ctest.Playback{Ops: initOps(), DontPanic: true}
	d, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
	if d.currentLSB != 100*physic.MicroAmpere {
		t.Errorf("currentLSB = %s", d.currentLSB)
	}
	if d.powerLSB != 2*physic.MilliWatt {
		t.Errorf("powerLSB = %s", d.powerLSB)
	}
	if s := d.String(); len(s) == 0 {
		t.Error("invalid String() result")
	}
}

func TestNew_error(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	if _, err := New(pb, nil); err == nil {
		t.Error("expected error on an empty bus")
	}
}

func TestCalibration(t *testing.T) {
	tests := []struct {
		name    string
		opts    Opts
		cal     uint16
		lsb     physic.ElectricCurrent
		wantErr bool
	}{
		{"default", DefaultOpts, 4096, 100 * physic.MicroAmpere, false},
		{"derived", Opts{SenseResistor: 100 * physic.MilliOhm, MaxCurrent: 2 * physic.Ampere}, 6606, 62 * physic.MicroAmpere, false},
		{"no shunt", Opts{MaxCurrent: physic.Ampere}, 0, 0, true},
		{"no current", Opts{SenseResistor: physic.Ohm}, 0, 0, true},
		{"tiny shunt", Opts{SenseResistor: physic.MicroOhm, CurrentLSB: physic.MicroAmpere}, 0, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cal, lsb, err := calibration(&tc.opts)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if cal != tc.cal {
				t.Errorf("cal = %d, want %d", cal, tc.cal)
			}
			if lsb != tc.lsb {
				t.Errorf("lsb = %s, want %s", lsb, tc.lsb)
			}
		})
	}
}

func TestBusVoltage(t *testing.T) {
	tests := []struct {
		bits     []byte
		expected physic.ElectricPotential
	}{
		{[]byte{0x17, 0x72}, 3 * physic.Volt},
		{[]byte{0x1f, 0x40}, 4 * physic.Volt},
		{[]byte{0x00, 0x08}, 4 * physic.MilliVolt},
		{[]byte{0x00, 0x00}, 0},
	}
	ops := initOps()
	for _, test := range tests {
		ops = append(ops, i2ctest.IO{Addr: addr, W: []byte{_REG_BUSVOLTAGE}, R: test.bits})
	}
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	defer pb.Close()
	record := &i2ctest.Record{Bus: pb}
	d, err := New(record, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range tests {
		v, err := d.BusVoltage()
		if err != nil {
			t.Fatal(err)
		}
		if v != test.expected {
			t.Errorf("BusVoltage() = %s, expected %s", v, test.expected)
		}
	}
	t.Logf("record.ops=%#v", record.Ops)
}

func TestSense(t *testing.T) {
	ops := append(initOps(),
		i2ctest.IO{Addr: addr, W: []byte{_REG_CALIBRATION, 0x10, 0x00}},
		i2ctest.IO{Addr: addr, W: []byte{_REG_SHUNT}, R: []byte{0xfc, 0x18}},      // -1000 * 10µV
		i2ctest.IO{Addr: addr, W: []byte{_REG_BUSVOLTAGE}, R: []byte{0x5d, 0xc2}}, // 12V
		i2ctest.IO{Addr: addr, W: []byte{_REG_CURRENT}, R: []byte{0xfc, 0x18}},    // -1000 * 100µA
		i2ctest.IO{Addr: addr, W: []byte{_REG_POWER}, R: []byte{0x02, 0x58}},      // 600 * 2mW
	)
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	defer pb.Close()
	d, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	var p PowerMonitor
	if err := d.Sense(&p); err != nil {
		t.Fatal(err)
	}
	want := PowerMonitor{
		Shunt:   -10 * physic.MilliVolt,
		Voltage: 12 * physic.Volt,
		Current: -100 * physic.MilliAmpere,
		Power:   1200 * physic.MilliWatt,
	}
	if p != want {
		t.Errorf("Sense() = %+v, want %+v", p, want)
	}
}

func TestSense_overflow(t *testing.T) {
	ops := append(initOps(),
		i2ctest.IO{Addr: addr, W: []byte{_REG_CALIBRATION, 0x10, 0x00}},
		i2ctest.IO{Addr: addr, W: []byte{_REG_SHUNT}, R: []byte{0x7f, 0xff}},
		i2ctest.IO{Addr: addr, W: []byte{_REG_BUSVOLTAGE}, R: []byte{0x17, 0x73}},
		i2ctest.IO{Addr: addr, W: []byte{_REG_CURRENT}, R: []byte{0x00, 0x00}},
		i2ctest.IO{Addr: addr, W: []byte{_REG_POWER}, R: []byte{0x00, 0x00}},
	)
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	defer pb.Close()
	d, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	var p PowerMonitor
	if err := d.Sense(&p); !errors.Is(err, ErrOverflow) {
		t.Fatalf("Sense() error = %v, want ErrOverflow", err)
	}
	if p.Voltage != 3*physic.Volt {
		t.Errorf("Voltage = %s, want 3V", p.Voltage)
	}
}

func TestHalt(t *testing.T) {
	ops := append(initOps(),
		i2ctest.IO{Addr: addr, W: []byte{_REG_CONFIG, 0x39, 0x98}}, // power down
		i2ctest.IO{Addr: addr, W: []byte{_REG_CONFIG, 0x39, 0x9f}}, // woken up by the read
		i2ctest.IO{Addr: addr, W: []byte{_REG_BUSVOLTAGE}, R: []byte{0x1f, 0x40}},
	)
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	defer pb.Close()
	d, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	v, err := d.BusVoltage()
	if err != nil {
		t.Fatal(err)
	}
	if v != 4*physic.Volt {
		t.Errorf("BusVoltage() = %s, want 4V", v)
	}
}

func TestSenseContinuous(t *testing.T) {
	ops := initOps()
	for i := 0; i < 3; i++ {
		ops = append(ops,
			i2ctest.IO{Addr: addr, W: []byte{_REG_CALIBRATION, 0x10, 0x00}},
			i2ctest.IO{Addr: addr, W: []byte{_REG_SHUNT}, R: []byte{0x00, 0x64}},
			i2ctest.IO{Addr: addr, W: []byte{_REG_BUSVOLTAGE}, R: []byte{0x1f, 0x42}},
			i2ctest.IO{Addr: addr, W: []byte{_REG_CURRENT}, R: []byte{0x00, 0x0a}},
			i2ctest.IO{Addr: addr, W: []byte{_REG_POWER}, R: []byte{0x00, 0x02}},
		)
	}
	// Extra ticks after the last expected read are answered with errors by
	// the playback bus and dropped by the driver.
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	d, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.SenseContinuous(0); err == nil {
		t.Error("expected error on a zero interval")
	}
	ch, err := d.SenseContinuous(5 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		p := <-ch
		if p.Voltage != 4*physic.Volt {
			t.Errorf("reading %d: Voltage = %s, want 4V", i, p.Voltage)
		}
		if p.Current != physic.MilliAmpere {
			t.Errorf("reading %d: Current = %s, want 1mA", i, p.Current)
		}
	}
	// Halt writes the power down configuration, which the exhausted playback
	// rejects; the continuous read must stop regardless.
	_ = d.Halt()
	for range ch {
	}
}

func TestSenseContinuousHaltWhileWaiting(t *testing.T) {
	// Only writes are recorded; a read after the halt would first wake the
	// device with a configuration write.
	rec := &i2ctest.Record{}
	d, err := New(rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	ch, err := d.SenseContinuous(time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	// Let ticks pile up on the lock, then halt the way Halt does.
	d.mu.Lock()
	time.Sleep(10 * time.Millisecond)
	close(d.stop)
	d.stop = nil
	d.halted = true
	rec.Lock()
	n := len(rec.Ops)
	rec.Unlock()
	d.mu.Unlock()

	for range ch {
	}
	rec.Lock()
	defer rec.Unlock()
	if len(rec.Ops) != n {
		t.Fatalf("device accessed after halt: %v", rec.Ops[n:])
	}
}
