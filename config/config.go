// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config loads the small set of engine-wide tunables arbor
// needs at process startup: the default par threshold, the default
// rolling min_periods, whether stable (Kahan) summation is on by
// default, and an optional override of the shared worker pool's size
// (spec.md §5). It follows the teacher's habit of a YAML-backed
// definition file (db/sync.go's "definition.yaml") decoded with
// sigs.k8s.io/yaml, which re-marshals through encoding/json so plain
// Go structs with `json` tags work without a bespoke yaml.v2 struct
// tag set.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/arborql/arbor/internal/cpu"
)

// Engine holds the tunables read from a YAML config file. Load and
// Parse start from Default() and overwrite only the fields the file
// sets, so a config file only needs to mention the fields it overrides;
// a field the file sets explicitly to zero stays zero.
type Engine struct {
	// ParThreshold is the minimum lane count at which callers should
	// default par to true when they have no better signal (spec.md §5:
	// "The user opts in per operation via an explicit par flag"; this
	// is only a suggested default for callers building that flag from
	// shape, not a hidden override of it).
	ParThreshold int `json:"parThreshold"`
	// DefaultMinPeriods is the rolling min_periods used when a caller
	// does not specify one (spec.md §4.3: "default 1").
	DefaultMinPeriods int `json:"defaultMinPeriods"`
	// StableByDefault sets whether aggregation/rolling kernels use
	// Kahan-compensated summation when a caller does not pass stable
	// explicitly.
	StableByDefault bool `json:"stableByDefault"`
	// WorkerPoolSize overrides the shared work-stealing pool's size
	// (spec.md §5: "a work-stealing pool sized to the host's logical
	// CPU count"). Zero means "use the host's logical CPU count".
	WorkerPoolSize int `json:"workerPoolSize"`
}

// Default returns the engine's built-in tunables, used when no config
// file is supplied.
func Default() Engine {
	return Engine{
		ParThreshold:      1 << 14,
		DefaultMinPeriods: 1,
		StableByDefault:   false,
		WorkerPoolSize:    0,
	}
}

// Load reads and decodes a YAML config file at path, starting from
// Default() and overwriting only the fields the file sets.
func Load(path string) (Engine, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes raw YAML bytes into an Engine, starting from Default().
func Parse(raw []byte) (Engine, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Engine{}, fmt.Errorf("config: parsing yaml: %w", err)
	}
	return cfg, nil
}

// Apply pushes e.WorkerPoolSize into arbor's shared worker pool. Call
// it once at process startup after Load/Parse; it is a no-op when
// WorkerPoolSize is zero, leaving the cgroup/GOMAXPROCS-derived default
// in place.
func (e Engine) Apply() {
	cpu.Configure(e.WorkerPoolSize)
}
