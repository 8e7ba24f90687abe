package main

import (
	"fmt"
	"os"

	"campaigner/internal/format"
	"campaigner/internal/plan"
	"campaigner/internal/presets"
)

func tableMode() format.Mode {
	m, _ := format.ParseMode(cfg.Table)
	return m
}

func newBuilder() (*plan.Builder, error) {
	f, err := cfg.Factory()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return plan.NewBuilder(f), nil
}

// resolvePlan loads arg as a plan file when one exists at that path and as
// a preset name otherwise.
func resolvePlan(arg string) (*plan.Plan, error) {
	if _, err := os.Stat(arg); err == nil {
		return plan.LoadFromPath(arg)
	}
	return presets.Load(arg)
}

// buildOne resolves and builds a single plan argument with the configured
// seed.
func buildOne(arg string) (*plan.Result, error) {
	p, err := resolvePlan(arg)
	if err != nil {
		return nil, err
	}
	b, err := newBuilder()
	if err != nil {
		return nil, err
	}
	return b.Build(p, cfg.Seed)
}
