// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermistor

import (
	"errors"
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

// ErrOutOfRange is returned when a measurement cannot be mapped to a
// physical resistance or temperature, typically because the sensor is
// disconnected or shorted.
var ErrOutOfRange = errors.New("thermistor: out of range")

// Divider maps the voltage measured on a thermistor divider to the
// thermistor resistance.
type Divider interface {
	Resistance(v physic.ElectricPotential) (physic.ElectricResistance, error)
}

// SimpleDivider computes R = Series / (Ref - V).
//
// The headroom Ref-V is used in volts as a plain number, so the result is
// only meaningful with constants fitted for this form.
type SimpleDivider struct {
	Series physic.ElectricResistance
	Ref    physic.ElectricPotential
}

// Resistance implements Divider.
func (d SimpleDivider) Resistance(v physic.ElectricPotential) (physic.ElectricResistance, error) {
	head := volts(d.Ref - v)
	if head <= 0 {
		return 0, fmt.Errorf("%w: %s at or above reference %s", ErrOutOfRange, v, d.Ref)
	}
	return toResistance(ohms(d.Series) / head)
}

// RatioDivider computes R = Series / (Ref/V - 1), the resistance of a
// thermistor on the low side of a divider fed with Ref.
type RatioDivider struct {
	Series physic.ElectricResistance
	Ref    physic.ElectricPotential
}

// Resistance implements Divider.
func (d RatioDivider) Resistance(v physic.ElectricPotential) (physic.ElectricResistance, error) {
	if v <= 0 || v >= d.Ref {
		return 0, fmt.Errorf("%w: %s outside (0, %s)", ErrOutOfRange, v, d.Ref)
	}
	return toResistance(ohms(d.Series) / (volts(d.Ref)/volts(v) - 1))
}

// Beta holds the thermistor constants of the Beta equation.
type Beta struct {
	// Nominal is the resistance at NominalTemp.
	Nominal     physic.ElectricResistance
	NominalTemp physic.Temperature
	B           float64
}

// Temperature returns the temperature of a thermistor of resistance r.
func (b Beta) Temperature(r physic.ElectricResistance) (physic.Temperature, error) {
	if b.Nominal <= 0 || b.NominalTemp <= 0 || b.B <= 0 {
		return 0, fmt.Errorf("thermistor: invalid constants %+v", b)
	}
	if r <= 0 {
		return 0, fmt.Errorf("%w: resistance %s", ErrOutOfRange, r)
	}
	inv := math.Log(ohms(r)/ohms(b.Nominal))/b.B + 1/kelvin(b.NominalTemp)
	if inv <= 0 || math.IsNaN(inv) || math.IsInf(inv, 0) {
		return 0, fmt.Errorf("%w: resistance %s", ErrOutOfRange, r)
	}
	k := 1 / inv
	if k*float64(physic.Kelvin) >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: resistance %s", ErrOutOfRange, r)
	}
	return physic.Temperature(math.Round(k * float64(physic.Kelvin))), nil
}

// Calibration is a named divider and thermistor pair.
type Calibration struct {
	Name    string
	Divider Divider
	Beta    Beta
}

// Convert returns the temperature for the divider voltage v.
func (c *Calibration) Convert(v physic.ElectricPotential) (physic.Temperature, error) {
	if c.Divider == nil {
		return 0, fmt.Errorf("thermistor: %s: no divider", c.Name)
	}
	r, err := c.Divider.Resistance(v)
	if err != nil {
		return 0, err
	}
	return c.Beta.Temperature(r)
}

func (c *Calibration) String() string {
	return fmt.Sprintf("%s{%+v, %+v}", c.Name, c.Divider, c.Beta)
}

var lineaMiniThermistor = Beta{
	Nominal:     50 * physic.KiloOhm,
	NominalTemp: physic.ZeroCelsius + 25*physic.Kelvin,
	B:           4400,
}

// LineaMini is the boiler probe of a La Marzocco Linea Mini read through its
// 6.96kΩ divider, in the simple form.
var LineaMini = Calibration{
	Name:    "Linea Mini",
	Divider: SimpleDivider{Series: 6960 * physic.Ohm, Ref: 4585 * physic.MilliVolt},
	Beta:    lineaMiniThermistor,
}

// LineaMiniRatio is the same probe computed with the full divider equation.
var LineaMiniRatio = Calibration{
	Name:    "Ratio",
	Divider: RatioDivider{Series: 6960 * physic.Ohm, Ref: 4585 * physic.MilliVolt},
	Beta:    lineaMiniThermistor,
}

// LineaMiniDatasheet uses the generic datasheet beta of 50kΩ NTC probes.
var LineaMiniDatasheet = Calibration{
	Name:    "Datasheet",
	Divider: RatioDivider{Series: 6960 * physic.Ohm, Ref: 4585 * physic.MilliVolt},
	Beta: Beta{
		Nominal:     50 * physic.KiloOhm,
		NominalTemp: physic.ZeroCelsius + 25*physic.Kelvin,
		B:           3950,
	},
}

func volts(v physic.ElectricPotential) float64 {
	return float64(v) / float64(physic.Volt)
}

func ohms(r physic.ElectricResistance) float64 {
	return float64(r) / float64(physic.Ohm)
}

func kelvin(t physic.Temperature) float64 {
	return float64(t) / float64(physic.Kelvin)
}

func toResistance(o float64) (physic.ElectricResistance, error) {
	n := o * float64(physic.Ohm)
	if n <= 0 || n >= math.MaxInt64 || math.IsNaN(n) {
		return 0, fmt.Errorf("%w: resistance %g Ω", ErrOutOfRange, o)
	}
	return physic.ElectricResistance(math.Round(n)), nil
}
