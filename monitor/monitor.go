// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/GermanBionicSystems/lmtemp/readout"
	"github.com/GermanBionicSystems/lmtemp/thermistor"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"periph.io/x/conn/v3/physic"
)

// Interval is the refresh period.
const Interval = time.Second

// MaxCalibrations is how many temperatures fit on the display with the
// voltage and the label.
const MaxCalibrations = 2

// errorLogPeriod throttles repeated failure messages.
const errorLogPeriod = 10 * time.Second

// Sensor measures the thermistor divider voltage.
type Sensor interface {
	BusVoltage() (physic.ElectricPotential, error)
}

// Opts holds the loop configuration.
type Opts struct {
	Calibrations []thermistor.Calibration
	// Label is printed under the values. Defaults to readout.DefaultLabel.
	Label string
	// Samples is the number of voltage reads averaged per refresh. Defaults
	// to 1.
	Samples int
	// Logger defaults to the logrus standard logger.
	Logger *logrus.Entry
}

// Monitor reads, converts and displays.
type Monitor struct {
	sensor   Sensor
	display  readout.TextWriter
	cals     []thermistor.Calibration
	label    string
	samples  int
	log      *logrus.Entry
	interval time.Duration

	// Failure logs are throttled per kind, and per calibration.
	sensorLimit *rate.Limiter
	rangeLimits []*rate.Limiter
	renderLimit *rate.Limiter
}

// New returns a Monitor reading s and rendering on d.
func New(s Sensor, d readout.TextWriter, opts *Opts) (*Monitor, error) {
	if s == nil || d == nil {
		return nil, errors.New("monitor: sensor and display are required")
	}
	if opts == nil {
		opts = &Opts{}
	}
	cals := opts.Calibrations
	if len(cals) == 0 {
		cals = []thermistor.Calibration{thermistor.LineaMini}
	}
	if len(cals) > MaxCalibrations {
		return nil, fmt.Errorf("monitor: %d calibrations, at most %d fit on the display", len(cals), MaxCalibrations)
	}
	samples := opts.Samples
	if samples == 0 {
		samples = 1
	}
	if samples < 0 {
		return nil, fmt.Errorf("monitor: invalid samples %d", samples)
	}
	label := opts.Label
	if label == "" {
		label = readout.DefaultLabel
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	m := &Monitor{
		sensor:      s,
		display:     d,
		cals:        cals,
		label:       label,
		samples:     samples,
		log:         log,
		interval:    Interval,
		sensorLimit: newLimiter(),
		renderLimit: newLimiter(),
	}
	for range cals {
		m.rangeLimits = append(m.rangeLimits, newLimiter())
	}
	return m, nil
}

func newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(errorLogPeriod), 1)
}

// Measure reads the sensor and converts the voltage with every calibration.
func (m *Monitor) Measure() readout.Reading {
	v, err := m.sample()
	r := readout.Reading{Voltage: v, Err: err, Temps: make([]readout.Temp, 0, len(m.cals))}
	for i := range m.cals {
		t := readout.Temp{Label: m.cals[i].Name, Err: err}
		if err == nil {
			t.Value, t.Err = m.cals[i].Convert(v)
		}
		r.Temps = append(r.Temps, t)
	}
	return r
}

func (m *Monitor) sample() (physic.ElectricPotential, error) {
	var mean runningMean
	for i := 0; i < m.samples; i++ {
		v, err := m.sensor.BusVoltage()
		if err != nil {
			return 0, fmt.Errorf("monitor: read bus voltage: %w", err)
		}
		mean.update(float64(v))
	}
	return physic.ElectricPotential(math.Round(mean.mean)), nil
}

// Step does one measure and display cycle.
func (m *Monitor) Step() (readout.Reading, error) {
	r := m.Measure()
	m.report(r)
	if err := readout.Render(m.display, r, m.label); err != nil {
		return r, fmt.Errorf("monitor: render: %w", err)
	}
	return r, nil
}

func (m *Monitor) report(r readout.Reading) {
	if r.Err != nil {
		if m.sensorLimit.Allow() {
			m.log.WithError(r.Err).Warn("sensor read failed")
		}
		return
	}
	fields := logrus.Fields{"voltage": r.Voltage.String()}
	for i, t := range r.Temps {
		if t.Err != nil {
			if m.rangeLimits[i].Allow() {
				m.log.WithError(t.Err).WithField("calibration", t.Label).Warn("temperature out of range")
			}
			continue
		}
		fields[t.Label] = fmt.Sprintf("%.1f°C", t.Value.Celsius())
	}
	m.log.WithFields(fields).Debug("reading")
}

// Run calls Step right away then every Interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		if _, err := m.Step(); err != nil && m.renderLimit.Allow() {
			m.log.WithError(err).Error("display update failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
