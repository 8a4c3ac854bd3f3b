// Package harness drives identical bulk-insert workloads against an arena and
// against the reference collection and reports their footprints.
//
// Measured runs only ever build model.Default records, so two runs with the
// same n produce the same arena figures. The heap figures come from
// runtime.MemStats after a forced collection and are representative, not exact.
//
//	h := harness.New()
//	cmp, err := h.Compare(1_000_000)
//	if err != nil { ... }
//	fmt.Println(cmp)              // humanized report
//	fmt.Println(cmp.ArenaSmaller())
//
// RunRealistic fills an arena with randomized records for demos. Its output
// depends on the source and is never a measurement.
package harness
