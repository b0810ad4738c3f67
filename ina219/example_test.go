// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina219_test

import (
	"fmt"
	"log"

	"github.com/GermanBionicSystems/lmtemp/ina219"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	sensor, err := ina219.New(bus, &ina219.DefaultOpts)
	if err != nil {
		log.Fatalln(err)
	}

	var p ina219.PowerMonitor
	if err := sensor.Sense(&p); err != nil {
		log.Fatalln(err)
	}
	fmt.Println(p.Voltage, p.Current, p.Power)
}
