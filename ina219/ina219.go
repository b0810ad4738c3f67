// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina219

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	_REG_CONFIG      uint8 = 0x00 // CONFIGURATION REGISTER (R/W)
	_REG_SHUNT       uint8 = 0x01 // SHUNT VOLTAGE REGISTER (R)
	_REG_BUSVOLTAGE  uint8 = 0x02 // BUS VOLTAGE REGISTER (R)
	_REG_POWER       uint8 = 0x03 // POWER REGISTER (R)
	_REG_CURRENT     uint8 = 0x04 // CURRENT REGISTER (R)
	_REG_CALIBRATION uint8 = 0x05 // CALIBRATION REGISTER (R/W)

	_BUS_OVF  uint16 = 0x0001
	_BUS_CNVR uint16 = 0x0002

	_SHUNT_LSB = 10 * physic.MicroVolt
	_BUS_LSB   = 4 * physic.MilliVolt

	// calibrationScale is the fixed 0.04096 term of the calibration equation
	// (datasheet 8.5.1), expressed for currents in nA and resistances in nΩ.
	calibrationScale = 0.04096e18
)

// DefaultAddress is the address with A0 and A1 tied to GND.
const DefaultAddress uint16 = 0x40

// BusRange is the full scale range of the bus voltage ADC.
type BusRange uint16

// Bus voltage ranges.
const (
	Range16V BusRange = 0x00
	Range32V BusRange = 0x01
)

// Gain is the PGA setting of the shunt voltage ADC.
type Gain uint16

// Shunt voltage full scale ranges.
const (
	Gain40mV  Gain = 0x00
	Gain80mV  Gain = 0x01
	Gain160mV Gain = 0x02
	Gain320mV Gain = 0x03
)

// ADCMode is the resolution or averaging setting of one of the ADCs.
type ADCMode uint16

// Conversion times are from table 5 of the datasheet.
const (
	ADC9Bit       ADCMode = 0x00 //  84µs
	ADC10Bit      ADCMode = 0x01 // 148µs
	ADC11Bit      ADCMode = 0x02 // 276µs
	ADC12Bit      ADCMode = 0x03 // 532µs
	ADC2Samples   ADCMode = 0x09 // 1.06ms
	ADC4Samples   ADCMode = 0x0A // 2.13ms
	ADC8Samples   ADCMode = 0x0B // 4.26ms
	ADC16Samples  ADCMode = 0x0C // 8.51ms
	ADC32Samples  ADCMode = 0x0D // 17.02ms
	ADC64Samples  ADCMode = 0x0E // 34.05ms
	ADC128Samples ADCMode = 0x0F // 68.10ms
)

// Mode is the operating mode of the device.
type Mode uint16

// Operating modes.
const (
	PowerDown             Mode = 0x00
	ShuntTriggered        Mode = 0x01
	BusTriggered          Mode = 0x02
	ShuntAndBusTriggered  Mode = 0x03
	ADCOff                Mode = 0x04
	ShuntContinuous       Mode = 0x05
	BusContinuous         Mode = 0x06
	ShuntAndBusContinuous Mode = 0x07
)

// ErrOverflow is returned by Sense when the power or current calculation of
// the device overflowed. The voltages are still valid.
var ErrOverflow = errors.New("ina219: math overflow")

// Opts holds the configuration options.
type Opts struct {
	Address       uint16
	SenseResistor physic.ElectricResistance
	// MaxCurrent is the largest current expected through the shunt. It is
	// used to derive CurrentLSB when CurrentLSB is zero.
	MaxCurrent physic.ElectricCurrent
	// CurrentLSB overrides the current resolution.
	CurrentLSB physic.ElectricCurrent
	Range      BusRange
	Gain       Gain
	BusADC     ADCMode
	ShuntADC   ADCMode
	Mode       Mode
}

// DefaultOpts is the 32V, 2A setup of the common breakout boards with a 0.1Ω
// shunt: 100µA and 2mW resolution, calibration register 4096.
var DefaultOpts = Opts{
	Address:       DefaultAddress,
	SenseResistor: 100 * physic.MilliOhm,
	MaxCurrent:    2 * physic.Ampere,
	CurrentLSB:    100 * physic.MicroAmpere,
	Range:         Range32V,
	Gain:          Gain320mV,
	BusADC:        ADC12Bit,
	ShuntADC:      ADC12Bit,
	Mode:          ShuntAndBusContinuous,
}

// PowerMonitor represents measurements from the device.
type PowerMonitor struct {
	Shunt   physic.ElectricPotential
	Voltage physic.ElectricPotential
	Current physic.ElectricCurrent
	Power   physic.Power
}

// Dev is a handle to an ina219 sensor.
type Dev struct {
	mu         sync.Mutex
	c          *i2c.Dev
	config     uint16
	cal        uint16
	currentLSB physic.ElectricCurrent
	powerLSB   physic.Power
	halted     bool
	stop       chan struct{}
}

// New opens a handle to an ina219 sensor, writes its calibration and
// configuration.
//
// opts can be nil, in which case DefaultOpts is used.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Address == 0 {
		o.Address = DefaultAddress
	}
	cal, lsb, err := calibration(&o)
	if err != nil {
		return nil, err
	}
	d := &Dev{
		c:          &i2c.Dev{Bus: bus, Addr: o.Address},
		config:     configuration(&o),
		cal:        cal,
		currentLSB: lsb,
		powerLSB:   physic.Power(20 * lsb),
	}
	if err := d.writeRegister(_REG_CALIBRATION, d.cal); err != nil {
		return nil, err
	}
	if err := d.writeRegister(_REG_CONFIG, d.config); err != nil {
		return nil, err
	}
	return d, nil
}

// calibration returns the calibration register value and the matching
// current resolution.
func calibration(o *Opts) (uint16, physic.ElectricCurrent, error) {
	if o.SenseResistor <= 0 {
		return 0, 0, fmt.Errorf("ina219: invalid sense resistor %s", o.SenseResistor)
	}
	lsb := o.CurrentLSB
	if lsb == 0 {
		if o.MaxCurrent <= 0 {
			return 0, 0, fmt.Errorf("ina219: invalid max current %s", o.MaxCurrent)
		}
		// Smallest LSB for a 15 bit signed result, rounded up to 1µA.
		lsb = (o.MaxCurrent + 32767) / 32768
		lsb = ((lsb + physic.MicroAmpere - 1) / physic.MicroAmpere) * physic.MicroAmpere
	}
	if lsb < 0 {
		return 0, 0, fmt.Errorf("ina219: invalid current resolution %s", lsb)
	}
	cal := math.Trunc(calibrationScale / (float64(lsb) * float64(o.SenseResistor)))
	if cal < 2 || cal > 0xfffe {
		return 0, 0, fmt.Errorf("ina219: calibration %g out of range for shunt %s and resolution %s", cal, o.SenseResistor, lsb)
	}
	// Bit 0 of the calibration register is not used.
	return uint16(cal) &^ 1, lsb, nil
}

func configuration(o *Opts) uint16 {
	return uint16(o.Range&0x01)<<13 |
		uint16(o.Gain&0x03)<<11 |
		uint16(o.BusADC&0x0f)<<7 |
		uint16(o.ShuntADC&0x0f)<<3 |
		uint16(o.Mode&0x07)
}

// BusVoltage reads the voltage between the bus input and ground.
func (d *Dev) BusVoltage() (physic.ElectricPotential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.wake(); err != nil {
		return 0, err
	}
	raw, err := d.readRegister(_REG_BUSVOLTAGE)
	if err != nil {
		return 0, err
	}
	return busToVoltage(raw), nil
}

// Sense reads the shunt voltage, bus voltage, current and power from the
// device.
func (d *Dev) Sense(p *PowerMonitor) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sense(p)
}

// sense does Sense. d.mu must be held.
func (d *Dev) sense(p *PowerMonitor) error {
	if err := d.wake(); err != nil {
		return err
	}
	// A power on reset clears the calibration, rewrite it so current and power
	// are never silently zero.
	if err := d.writeRegister(_REG_CALIBRATION, d.cal); err != nil {
		return err
	}
	shunt, err := d.readRegister(_REG_SHUNT)
	if err != nil {
		return err
	}
	bus, err := d.readRegister(_REG_BUSVOLTAGE)
	if err != nil {
		return err
	}
	current, err := d.readRegister(_REG_CURRENT)
	if err != nil {
		return err
	}
	power, err := d.readRegister(_REG_POWER)
	if err != nil {
		return err
	}
	p.Shunt = physic.ElectricPotential(int16(shunt)) * _SHUNT_LSB
	p.Voltage = busToVoltage(bus)
	p.Current = physic.ElectricCurrent(int16(current)) * d.currentLSB
	p.Power = physic.Power(power) * d.powerLSB
	if bus&_BUS_OVF != 0 {
		return ErrOverflow
	}
	return nil
}

// SenseContinuous reads from the device every interval and writes the value
// to the returned channel. Call Halt to stop.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan PowerMonitor, error) {
	if interval < time.Millisecond {
		return nil, errors.New("ina219: invalid interval, minimum 1ms")
	}
	d.mu.Lock()
	if d.stop != nil {
		close(d.stop)
	}
	stop := make(chan struct{})
	d.stop = stop
	d.mu.Unlock()

	const channelSize = 16
	ch := make(chan PowerMonitor, channelSize)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Halt may have run while this tick waited for the lock; a read
				// now would wake the device back up.
				d.mu.Lock()
				if d.stop != stop {
					d.mu.Unlock()
					return
				}
				var p PowerMonitor
				err := d.sense(&p)
				d.mu.Unlock()
				if err != nil && !errors.Is(err, ErrOverflow) {
					continue
				}
				select {
				case ch <- p:
				default:
				}
			}
		}
	}()
	return ch, nil
}

// Halt stops continuous sensing and puts the device in power down mode. The
// next read wakes it up.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	if err := d.writeRegister(_REG_CONFIG, d.config&^0x07); err != nil {
		return err
	}
	d.halted = true
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ina219{%s}", d.c)
}

// wake restores the configuration after Halt. d.mu must be held.
func (d *Dev) wake() error {
	if !d.halted {
		return nil
	}
	if err := d.writeRegister(_REG_CONFIG, d.config); err != nil {
		return err
	}
	d.halted = false
	return nil
}

func (d *Dev) readRegister(reg uint8) (uint16, error) {
	r := make([]byte, 2)
	if err := d.c.Tx([]byte{reg}, r); err != nil {
		return 0, fmt.Errorf("ina219: read register 0x%02x: %w", reg, err)
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

func (d *Dev) writeRegister(reg uint8, v uint16) error {
	if err := d.c.Tx([]byte{reg, byte(v >> 8), byte(v)}, nil); err != nil {
		return fmt.Errorf("ina219: write register 0x%02x: %w", reg, err)
	}
	return nil
}

func busToVoltage(raw uint16) physic.ElectricPotential {
	return physic.ElectricPotential(raw>>3) * _BUS_LSB
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
