package proc

// timerEntry is one {deadline_tick, callback} pair in the sleep timer
// wheel (spec.md §3).
type timerEntry struct {
	deadline uint64
	cb       func()
}

// timerWheel is an unordered list of pending timer entries, scanned
// linearly on every tick. A teaching kernel's tick rate and thread count
// are both small enough that a linear scan never shows up next to the
// scheduling overhead it sits beside; a real wheel (bucketed by
// deadline) would only pay for itself at a scale this kernel never
// reaches.
type timerWheel struct {
	entries []timerEntry
}

// add arms a new entry.
func (w *timerWheel) add(deadline uint64, cb func()) {
	w.entries = append(w.entries, timerEntry{deadline: deadline, cb: cb})
}

// tick fires and removes every entry whose deadline is now due.
func (w *timerWheel) tick(now uint64) {
	kept := w.entries[:0]
	for _, e := range w.entries {
		if now >= e.deadline {
			e.cb()
		} else {
			kept = append(kept, e)
		}
	}
	w.entries = kept
}
