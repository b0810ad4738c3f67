// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the wiring and calibration of a thermometer from a
// YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/GermanBionicSystems/lmtemp/ina219"
	"github.com/GermanBionicSystems/lmtemp/monitor"
	"github.com/GermanBionicSystems/lmtemp/oledtext"
	"github.com/GermanBionicSystems/lmtemp/readout"
	"github.com/GermanBionicSystems/lmtemp/thermistor"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
	"periph.io/x/conn/v3/physic"
)

// Divider forms accepted in Calibration.Form.
const (
	FormSimple = "simple"
	FormRatio  = "ratio"
)

// Config is the content of the configuration file.
type Config struct {
	Sensor       Sensor        `yaml:"sensor"`
	Display      Display       `yaml:"display"`
	Label        string        `yaml:"label"`
	Samples      int           `yaml:"samples"`
	Calibrations []Calibration `yaml:"calibrations"`
}

// Sensor is the INA219 wiring. Empty names select the first bus or leave
// the sensor powered by the board.
type Sensor struct {
	Bus     string        `yaml:"bus"`
	Address uint16        `yaml:"address"`
	VCC     string        `yaml:"vcc_pin"`
	GND     string        `yaml:"gnd_pin"`
	Settle  time.Duration `yaml:"settle"`
}

// Display is the SSD1306 wiring and look.
type Display struct {
	Port     string  `yaml:"port"`
	DC       string  `yaml:"dc_pin"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Font     string  `yaml:"font"`
	FontSize float64 `yaml:"font_size"`
}

// Calibration describes a thermistor and its divider in plain units.
type Calibration struct {
	Name string `yaml:"name"`
	// Form is FormSimple or FormRatio.
	Form     string  `yaml:"form"`
	Series   float64 `yaml:"series_ohm"`
	Ref      float64 `yaml:"ref_volt"`
	Nominal  float64 `yaml:"nominal_ohm"`
	NominalC float64 `yaml:"nominal_celsius"`
	B        float64 `yaml:"b"`
}

// Default returns the configuration of the stock single probe build.
func Default() *Config {
	return &Config{
		Sensor: Sensor{
			Address: ina219.DefaultAddress,
			VCC:     "GPIO27",
			GND:     "GPIO22",
			Settle:  100 * time.Millisecond,
		},
		Display: Display{
			DC:     "GPIO25",
			Width:  128,
			Height: 64,
			Font:   "bold",
		},
		Label:   readout.DefaultLabel,
		Samples: 1,
		Calibrations: []Calibration{{
			Name:     "Linea Mini",
			Form:     FormSimple,
			Series:   6960,
			Ref:      4.585,
			Nominal:  50000,
			NominalC: 25,
			B:        4400,
		}},
	}
}

// Load reads the file at path on fs over the defaults. An empty path
// returns the defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	d := yaml.NewDecoder(f)
	d.SetStrict(true)
	// An empty document leaves the defaults in place.
	if err := d.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Validate reports the first inconsistency found.
func (c *Config) Validate() error {
	if c.Sensor.Address == 0 || c.Sensor.Address > 0x7f {
		return fmt.Errorf("invalid sensor address %#x", c.Sensor.Address)
	}
	if (c.Sensor.VCC == "") != (c.Sensor.GND == "") {
		return errors.New("vcc_pin and gnd_pin must be both set or both empty")
	}
	if c.Sensor.Settle < 0 {
		return fmt.Errorf("invalid settle delay %s", c.Sensor.Settle)
	}
	if c.Display.DC == "" {
		return errors.New("dc_pin is required")
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 || c.Display.Height%8 != 0 {
		return fmt.Errorf("invalid display size %dx%d", c.Display.Width, c.Display.Height)
	}
	if _, err := oledtext.Face(c.Display.Font, c.Display.FontSize); err != nil {
		return err
	}
	if c.Samples < 1 {
		return fmt.Errorf("invalid samples %d", c.Samples)
	}
	if n := len(c.Calibrations); n < 1 || n > monitor.MaxCalibrations {
		return fmt.Errorf("%d calibrations, want 1 to %d", n, monitor.MaxCalibrations)
	}
	for i := range c.Calibrations {
		if _, err := c.Calibrations[i].Thermistor(); err != nil {
			return fmt.Errorf("calibration %d: %w", i, err)
		}
	}
	return nil
}

// Thermistors converts all the calibrations.
func (c *Config) Thermistors() ([]thermistor.Calibration, error) {
	out := make([]thermistor.Calibration, 0, len(c.Calibrations))
	for i := range c.Calibrations {
		t, err := c.Calibrations[i].Thermistor()
		if err != nil {
			return nil, fmt.Errorf("config: calibration %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Thermistor converts c.
func (c *Calibration) Thermistor() (thermistor.Calibration, error) {
	if c.Series <= 0 || c.Ref <= 0 || c.Nominal <= 0 || c.B <= 0 {
		return thermistor.Calibration{}, fmt.Errorf("%q: series_ohm, ref_volt, nominal_ohm and b must be positive", c.Name)
	}
	nominal := physic.ZeroCelsius + physic.Temperature(math.Round(c.NominalC*float64(physic.Kelvin)))
	if nominal <= 0 {
		return thermistor.Calibration{}, fmt.Errorf("%q: nominal_celsius %g below absolute zero", c.Name, c.NominalC)
	}
	series := physic.ElectricResistance(math.Round(c.Series * float64(physic.Ohm)))
	ref := physic.ElectricPotential(math.Round(c.Ref * float64(physic.Volt)))
	var d thermistor.Divider
	switch c.Form {
	case FormSimple:
		d = thermistor.SimpleDivider{Series: series, Ref: ref}
	case FormRatio:
		d = thermistor.RatioDivider{Series: series, Ref: ref}
	default:
		return thermistor.Calibration{}, fmt.Errorf("%q: unknown form %q", c.Name, c.Form)
	}
	return thermistor.Calibration{
		Name:    c.Name,
		Divider: d,
		Beta: thermistor.Beta{
			Nominal:     physic.ElectricResistance(math.Round(c.Nominal * float64(physic.Ohm))),
			NominalTemp: nominal,
			B:           c.B,
		},
	}, nil
}
