// Package wiring runs a plan file end to end: load, compose, validate and
// write the campaign document.
package wiring

import (
	"fmt"

	"campaigner/internal/plan"
)

// Run loads the plan at planPath, builds it with b and writes the campaign
// document to outPath. seed overrides the plan's seed when non-zero.
func Run(b *plan.Builder, planPath, outPath string, seed uint64) (*plan.Result, error) {
	p, err := plan.LoadFromPath(planPath)
	if err != nil {
		return nil, err
	}
	res, err := b.Build(p, seed)
	if err != nil {
		return nil, err
	}
	if err := res.Document.WriteFile(outPath); err != nil {
		return nil, fmt.Errorf("write campaign %s: %w", outPath, err)
	}
	return res, nil
}
