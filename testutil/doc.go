// Package testutil provides testing utilities for segbench.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Records
//
//	rng := testutil.NewRNG(seed)
//	segs := rng.Segments(1000)              // realistic, reproducible records
//	a.AppendBulk(n, model.RealisticFactory(rng))
//
// # Images
//
//	img := rng.Image(32, 32, true)          // random NRGBA with varying alpha
//	data := testutil.EncodePNG(t, img)
package testutil
