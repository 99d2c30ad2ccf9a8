// Package kstat accumulates kernel-wide counters — syscalls dispatched,
// context switches, timer ticks, page faults serviced, pages evicted — and
// dumps them through reflection the way biscuit's stats package turns any
// struct of Counter_t/Cycles_t fields into a printable report
// (biscuit/src/stats/stats.go's Stats2String). A single-hart teaching
// kernel has no per-CPU stats array to shard (spec.md excludes SMP), so
// this keeps one global Stats_t instead of biscuit's per-CPU slice of them.
package kstat

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
)

// Counter_t is a monotonically increasing event counter, safe to bump from
// the scheduling loop and the syscall dispatcher.
type Counter_t struct {
	v int64
}

// Inc increments the counter by one.
func (c *Counter_t) Inc() {
	atomic.AddInt64(&c.v, 1)
}

// Add increments the counter by n.
func (c *Counter_t) Add(n int64) {
	atomic.AddInt64(&c.v, n)
}

// Get returns the current value.
func (c *Counter_t) Get() int64 {
	return atomic.LoadInt64(&c.v)
}

// Stats_t is every counter the kernel maintains. Fields are exported so
// Stats2String can enumerate them through reflection, exactly as biscuit's
// Stats_t does.
type Stats_t struct {
	Syscalls   Counter_t
	Switches   Counter_t
	Ticks      Counter_t
	Faults     Counter_t
	Evictions  Counter_t
	Forks      Counter_t
	Execs      Counter_t
	Exits      Counter_t
}

// Global is the kernel-wide counter block, bumped by proc and syscalls
// and rendered by Stats2String.
var Global Stats_t

// Stats2String renders every Counter_t field of s as "Name: value\n",
// mirroring biscuit's reflection-based dump so new counters added to
// Stats_t need no change here.
func Stats2String(s *Stats_t) string {
	ret := ""
	v := reflect.ValueOf(s).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		c, ok := f.Addr().Interface().(*Counter_t)
		if !ok {
			continue
		}
		ret += fmt.Sprintf("%s: %d\n", t.Field(i).Name, c.Get())
	}
	return ret
}

// Event is one entry of the trace log cmd/ktrace converts into a pprof
// profile: a named counter sample taken at a given tick.
type Event struct {
	Tick int64
	Name string
	Val  int64
}

// Trace accumulates Events when tracing is enabled; nil (the default)
// means tracing is off and Record is a no-op, so the hot scheduling path
// pays nothing unless a trace was requested.
var Trace []Event

// Record appends an event to Trace if tracing is enabled.
func Record(tick int64, name string, val int64) {
	if Trace == nil {
		return
	}
	Trace = append(Trace, Event{Tick: tick, Name: name, Val: val})
}

// EncodeTrace writes events as tab-separated "tick\tname\tval" lines, the
// format cmd/ktrace reads back to build a pprof profile.
func EncodeTrace(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for _, e := range events {
		if _, err := fmt.Fprintf(bw, "%d\t%s\t%d\n", e.Tick, e.Name, e.Val); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeTrace parses EncodeTrace's output back into Events.
func DecodeTrace(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed trace line %q", line)
		}
		tick, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, err
		}
		val, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, err
		}
		events = append(events, Event{Tick: tick, Name: parts[1], Val: val})
	}
	return events, sc.Err()
}
