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

// Package cpu provides the work-stealing-flavored fork-join pool that
// backs every par=true kernel invocation (spec.md §5): "Parallelism is
// expressed as a per-lane fork-join over the non-reduction axis, using
// a work-stealing pool sized to the host's logical CPU count."
//
// The pool's shape (persistent worker goroutines draining a shared
// request queue guarded by a condition variable) follows the teacher's
// sorting.ThreadPool; arbor repurposes it for generic index-at-a-time
// fan-out instead of sort-range dispatch. Sizing prefers a container's
// cgroupv2 CPU quota over the host's full logical CPU count, the way
// the teacher's cgroup package scopes process placement to a
// delegated cgroup rather than assuming the whole machine is available.
package cpu

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

type request struct {
	i  int
	fn func(int)
}

type pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	requests []request
	workers  int
}

var shared = newPool(defaultWorkers())

// defaultWorkers returns the cgroupv2 CPU quota (cpu.max, rounded up)
// when the process runs inside a delegated cgroup with one configured,
// falling back to runtime.GOMAXPROCS(0) otherwise.
func defaultWorkers() int {
	if n, ok := cgroupQuota(); ok && n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// cgroupQuota reads /sys/fs/cgroup/cpu.max, the cgroupv2 CPU-bandwidth
// control file (two space-separated fields: quota and period in
// microseconds, or the literal "max" for an unconstrained quota). It
// only consults the cgroup this process's own mount is rooted at,
// mirroring the read-only subset of the teacher's cgroup.Self/Root
// without any of the process-placement machinery arbor has no use for.
func cgroupQuota() (int, bool) {
	f, err := os.Open("/sys/fs/cgroup/cpu.max")
	if err != nil {
		return 0, false
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		return 0, false
	}
	fields := strings.Fields(s.Text())
	if len(fields) != 2 || fields[0] == "max" {
		return 0, false
	}
	quota, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	period, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || period == 0 {
		return 0, false
	}
	n := int(quota / period)
	if float64(n) < quota/period {
		n++ // round up: a 1.5-CPU quota still needs 2 worker goroutines
	}
	return n, true
}

// Configure resizes the shared pool to n workers (n <= 0 leaves the
// cgroup/GOMAXPROCS-derived default in place), so config.Engine's
// optional WorkerPoolSize override (SPEC_FULL.md §A) can take effect
// before the first par=true kernel call. Not safe to call concurrently
// with in-flight ForEach work.
func Configure(n int) {
	if n <= 0 {
		return
	}
	shared = newPool(n)
}

func newPool(workers int) *pool {
	if workers < 1 {
		workers = 1
	}
	p := &pool{workers: workers}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *pool) worker() {
	for {
		p.mu.Lock()
		for len(p.requests) == 0 {
			p.cond.Wait()
		}
		n := len(p.requests)
		req := p.requests[n-1]
		p.requests = p.requests[:n-1]
		p.mu.Unlock()
		req.fn(req.i)
	}
}

// Workers reports the pool's fixed worker count: the startup default
// (cgroup CPU quota or GOMAXPROCS) unless Configure replaced it.
func Workers() int { return shared.workers }

// Partitions returns the next power of two at or above Workers(), the
// partition-size heuristic groupby/join use to size their per-thread
// hash maps (spec.md §4.4.1).
func Partitions() int {
	n := Workers()
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// ForEach invokes fn(i) for every i in [0, n), fanning out across the
// shared worker pool and blocking until every invocation has completed.
// Lane order is unspecified, matching spec.md §5's ordering guarantee
// ("Lane iteration order over the non-reduction axis is unspecified
// under par=true").
func ForEach(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	var wg sync.WaitGroup
	wg.Add(n)
	wrapped := func(i int) {
		defer wg.Done()
		fn(i)
	}
	shared.mu.Lock()
	for i := 0; i < n; i++ {
		shared.requests = append(shared.requests, request{i: i, fn: wrapped})
	}
	shared.cond.Broadcast()
	shared.mu.Unlock()
	wg.Wait()
}
