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

package config

import "testing"

func TestParseOverridesOnlySetFields(t *testing.T) {
	cfg, err := Parse([]byte("defaultMinPeriods: 3\nstableByDefault: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultMinPeriods != 3 {
		t.Errorf("DefaultMinPeriods = %d, want 3", cfg.DefaultMinPeriods)
	}
	if !cfg.StableByDefault {
		t.Errorf("StableByDefault = false, want true")
	}
	if cfg.ParThreshold != Default().ParThreshold {
		t.Errorf("ParThreshold = %d, want default %d unchanged", cfg.ParThreshold, Default().ParThreshold)
	}
}

func TestParseEmptyYieldsDefault(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("Parse(\"\") = %+v, want Default() %+v", cfg, Default())
	}
}
