package vm

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hetu-lang/hetu/opcodes"
)

// HotSpot describes an instruction pointer that was executed frequently
// (§3 "Supplemented Features: hot-spot profiling generalization").
type HotSpot struct {
	IP    int
	Count int
}

type profileState struct {
	mu sync.Mutex

	instructionCounts map[int]int
	opcodeCounts      map[opcodes.Opcode]int

	started time.Time
	ticks   int64

	debug []string
}

func newProfileState() *profileState {
	return &profileState{
		instructionCounts: make(map[int]int),
		opcodeCounts:      make(map[opcodes.Opcode]int),
		started:           time.Time{},
		debug:             make([]string, 0, 64),
	}
}

func (ps *profileState) observe(ip int, opcode opcodes.Opcode) {
	ps.mu.Lock()
	if ps.ticks == 0 {
		ps.started = time.Now()
	}
	ps.instructionCounts[ip]++
	ps.opcodeCounts[opcode]++
	ps.ticks++
	ps.mu.Unlock()
}

func (ps *profileState) addDebug(message string) {
	ps.mu.Lock()
	ps.debug = append(ps.debug, message)
	ps.mu.Unlock()
}

func (ps *profileState) debugRecords() []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make([]string, len(ps.debug))
	copy(out, ps.debug)
	return out
}

func (ps *profileState) hotSpots(n int) []HotSpot {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	spots := make([]HotSpot, 0, len(ps.instructionCounts))
	for ip, count := range ps.instructionCounts {
		spots = append(spots, HotSpot{IP: ip, Count: count})
	}
	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Count == spots[j].Count {
			return spots[i].IP < spots[j].IP
		}
		return spots[i].Count > spots[j].Count
	})
	if n <= 0 || n >= len(spots) {
		return spots
	}
	return spots[:n]
}

// render produces a human-readable profiling summary for the CLI's
// `analyze --profile` output, using go-humanize to print the tick count and
// elapsed wall time the way a person reads them rather than raw numbers.
func (ps *profileState) render() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.ticks == 0 {
		return "(no profiling data)"
	}
	elapsed := time.Since(ps.started)
	return fmt.Sprintf(
		"%s instructions executed across %s unique ips in %s",
		humanize.Comma(ps.ticks),
		humanize.Comma(int64(len(ps.instructionCounts))),
		humanize.RelTime(ps.started, ps.started.Add(elapsed), "", ""),
	)
}
