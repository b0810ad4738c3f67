// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lmtemp shows the boiler temperature of an espresso machine on an SSD1306
// OLED, measured with a thermistor divider read by an INA219.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/lmtemp/config"
	"github.com/GermanBionicSystems/lmtemp/ina219"
	"github.com/GermanBionicSystems/lmtemp/monitor"
	"github.com/GermanBionicSystems/lmtemp/oledtext"
	"github.com/GermanBionicSystems/lmtemp/readout"
	"github.com/GermanBionicSystems/lmtemp/termscreen"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

const splashDuration = 2 * time.Second

// hardware is the opened sensor and panel.
type hardware struct {
	sensor  monitor.Sensor
	panel   display.Drawer
	closers []io.Closer
}

func (h *hardware) close(log *logrus.Entry) {
	if err := h.panel.Halt(); err != nil {
		log.WithError(err).Warn("halt display")
	}
	if s, ok := h.sensor.(*ina219.Dev); ok {
		if err := s.Halt(); err != nil {
			log.WithError(err).Warn("halt sensor")
		}
	}
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i].Close(); err != nil {
			log.WithError(err).Warn("close bus")
		}
	}
}

func openHardware(cfg *config.Config, log *logrus.Entry) (h *hardware, err error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	h = &hardware{}
	defer func() {
		if err != nil {
			for _, c := range h.closers {
				c.Close()
			}
		}
	}()

	if cfg.Sensor.VCC != "" {
		gnd, err := pinByName(cfg.Sensor.GND)
		if err != nil {
			return nil, err
		}
		vcc, err := pinByName(cfg.Sensor.VCC)
		if err != nil {
			return nil, err
		}
		if err := powerUp(gnd, vcc, cfg.Sensor.Settle); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"gnd": gnd, "vcc": vcc}).Debug("sensor powered")
	}

	bus, err := i2creg.Open(cfg.Sensor.Bus)
	if err != nil {
		return nil, err
	}
	h.closers = append(h.closers, bus)
	opts := ina219.DefaultOpts
	opts.Address = cfg.Sensor.Address
	s, err := ina219.New(bus, &opts)
	if err != nil {
		return nil, err
	}
	h.sensor = s

	port, err := spireg.Open(cfg.Display.Port)
	if err != nil {
		return nil, err
	}
	h.closers = append(h.closers, port)
	dc, err := pinByName(cfg.Display.DC)
	if err != nil {
		return nil, err
	}
	o := ssd1306.DefaultOpts
	o.W = cfg.Display.Width
	o.H = cfg.Display.Height
	panel, err := ssd1306.NewSPI(port, dc, &o)
	if err != nil {
		return nil, err
	}
	h.panel = panel
	log.WithFields(logrus.Fields{"sensor": s, "display": panel}).Info("hardware ready")
	return h, nil
}

// openFake returns a synthetic sensor and a panel drawn on out, stdout
// when nil.
func openFake(cfg *config.Config, out io.Writer) (*hardware, error) {
	// Room temperature up to brewing temperature with the stock probe.
	s, err := newSweep(2400*physic.MilliVolt, 4450*physic.MilliVolt, 60)
	if err != nil {
		return nil, err
	}
	panel := termscreen.New(&termscreen.Opts{W: cfg.Display.Width, H: cfg.Display.Height, Out: out})
	return &hardware{sensor: s, panel: panel}, nil
}

func mainImpl() error {
	cfgPath := flag.String("config", "", "YAML configuration file")
	fake := flag.Bool("fake", false, "simulate the sensor and draw in the terminal")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if *fake {
		// The terminal is the display.
		logger.SetOutput(io.Discard)
		if *verbose {
			logger.SetOutput(os.Stderr)
		}
	}
	log := logrus.NewEntry(logger)

	cfg, err := config.Load(afero.NewOsFs(), *cfgPath)
	if err != nil {
		return err
	}
	cals, err := cfg.Thermistors()
	if err != nil {
		return err
	}
	face, err := oledtext.Face(cfg.Display.Font, cfg.Display.FontSize)
	if err != nil {
		return err
	}

	var h *hardware
	if *fake {
		h, err = openFake(cfg, nil)
	} else {
		h, err = openHardware(cfg, log)
	}
	if err != nil {
		return err
	}
	defer h.close(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := readout.Splash(h.panel, face, readout.SplashLines...); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(splashDuration):
	}

	console := oledtext.New(h.panel, face)
	if err := console.Clear(); err != nil {
		return err
	}
	m, err := monitor.New(h.sensor, console, &monitor.Opts{
		Calibrations: cals,
		Label:        cfg.Label,
		Samples:      cfg.Samples,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	for _, c := range cals {
		log.WithField("calibration", c.String()).Debug("using")
	}
	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("stopped")
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "lmtemp: %s.\n", err)
		os.Exit(1)
	}
}
