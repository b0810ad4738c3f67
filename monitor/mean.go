// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

// runningMean is Welford's running mean, stable over many samples.
type runningMean struct {
	n    int
	mean float64
}

func (r *runningMean) update(x float64) {
	r.n++
	r.mean += (x - r.mean) / float64(r.n)
}
