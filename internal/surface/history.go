package surface

// History is a linear undo/redo timeline of snapshots. step indexes the
// snapshot currently on screen; pushing after an undo discards the redo
// branch.
//
// MaxDepth and MaxBytes bound memory use; the oldest snapshots are evicted
// first and at least one snapshot is always kept. Zero disables a bound.
type History struct {
	MaxDepth int
	MaxBytes int

	snaps []*Snapshot
	step  int
	bytes int
}

// NewHistory returns an empty history with the given bounds.
func NewHistory(maxDepth, maxBytes int) *History {
	return &History{MaxDepth: maxDepth, MaxBytes: maxBytes}
}

// Capture records the surface's current pixels as the newest entry.
func (h *History) Capture(s *Surface) {
	h.Push(s.Capture())
}

// Push truncates everything after the cursor, appends snap and moves the
// cursor onto it.
func (h *History) Push(snap *Snapshot) {
	if snap == nil {
		return
	}
	if len(h.snaps) > 0 {
		for _, dropped := range h.snaps[h.step+1:] {
			h.bytes -= dropped.Size()
		}
		clear(h.snaps[h.step+1:])
		h.snaps = h.snaps[:h.step+1]
	}
	h.snaps = append(h.snaps, snap)
	h.bytes += snap.Size()
	h.step = len(h.snaps) - 1
	h.evict()
}

func (h *History) evict() {
	for len(h.snaps) > 1 {
		overDepth := h.MaxDepth > 0 && len(h.snaps) > h.MaxDepth
		overBytes := h.MaxBytes > 0 && h.bytes > h.MaxBytes
		if !overDepth && !overBytes {
			return
		}
		h.bytes -= h.snaps[0].Size()
		h.snaps[0] = nil
		h.snaps = h.snaps[1:]
		h.step--
	}
}

// Undo moves the cursor back and returns the snapshot to restore. At the
// oldest entry it returns false and changes nothing.
func (h *History) Undo() (*Snapshot, bool) {
	if len(h.snaps) == 0 || h.step == 0 {
		return nil, false
	}
	h.step--
	return h.snaps[h.step], true
}

// Redo moves the cursor forward and returns the snapshot to restore. At the
// newest entry it returns false and changes nothing.
func (h *History) Redo() (*Snapshot, bool) {
	if h.step >= len(h.snaps)-1 {
		return nil, false
	}
	h.step++
	return h.snaps[h.step], true
}

// Current returns the snapshot under the cursor.
func (h *History) Current() (*Snapshot, bool) {
	if len(h.snaps) == 0 {
		return nil, false
	}
	return h.snaps[h.step], true
}

// At returns the i-th snapshot, oldest first.
func (h *History) At(i int) *Snapshot {
	if i < 0 || i >= len(h.snaps) {
		return nil
	}
	return h.snaps[i]
}

func (h *History) Len() int { return len(h.snaps) }
func (h *History) Step() int { return h.step }
func (h *History) Bytes() int { return h.bytes }
func (h *History) CanUndo() bool { return len(h.snaps) > 0 && h.step > 0 }
func (h *History) CanRedo() bool { return h.step < len(h.snaps)-1 }
