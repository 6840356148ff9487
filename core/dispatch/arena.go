package dispatch

// entry is the driver-side state of one in-flight request. The policy
// never sees any of it; the request only carries the slot index.
type entry struct {
	tenant    uint16
	echo      uint64
	replyTo   any
	admitted  uint64
	cost      float64
	remaining float64
	live      bool
}

// arena holds in-flight entries in a slab with a free list, so slot
// handles stay stable while alloc and release run in amortized constant
// time.
type arena struct {
	entries []entry
	free    []uint64
}

func newArena(hint int) *arena {
	if hint < 1 {
		hint = 1
	}
	return &arena{
		entries: make([]entry, 0, hint),
		free:    make([]uint64, 0, hint),
	}
}

// alloc reserves a slot and returns its handle plus the entry to fill.
func (a *arena) alloc() (uint64, *entry) {
	if n := len(a.free); n > 0 {
		tag := a.free[n-1]
		a.free = a.free[:n-1]
		ent := &a.entries[tag]
		*ent = entry{live: true}
		return tag, ent
	}
	a.entries = append(a.entries, entry{live: true})
	return uint64(len(a.entries) - 1), &a.entries[len(a.entries)-1]
}

// at returns the live entry for tag, or nil for a released or unknown
// handle.
func (a *arena) at(tag uint64) *entry {
	if tag >= uint64(len(a.entries)) || !a.entries[tag].live {
		return nil
	}
	return &a.entries[tag]
}

// release returns the slot to the free list. Releasing a dead slot is a
// no-op.
func (a *arena) release(tag uint64) {
	if tag >= uint64(len(a.entries)) || !a.entries[tag].live {
		return
	}
	a.entries[tag] = entry{}
	a.free = append(a.free, tag)
}

// inFlight counts live entries.
func (a *arena) inFlight() int {
	return len(a.entries) - len(a.free)
}
