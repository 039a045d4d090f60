package geometry

// snapshot is an immutable stroke list. Snapshots are never modified after
// they are appended to the arena; the stacks hold indexes into it.
type snapshot struct {
	strokes []Stroke
}

// History is the stroke-level undo/redo history of one drawing.
//
// Each committed change appends a new snapshot; undo and redo only move
// snapshot references between stacks, so an undo followed by a redo restores
// exactly the prior state.
type History struct {
	arena   []snapshot
	current int
	undo    []int
	redo    []int
	limit   int
}

// NewHistory returns an empty history. limit bounds the undo depth; zero or
// negative means unbounded.
func NewHistory(limit int) *History {
	h := &History{limit: limit}
	h.arena = []snapshot{{}}
	return h
}

// NewHistoryFrom seeds the history with an existing drawing that cannot be
// undone.
func NewHistoryFrom(d DrawingData, limit int) *History {
	h := &History{limit: limit}
	h.arena = []snapshot{{strokes: d.Clone().Strokes}}
	return h
}

// Commit appends a stroke as one undoable action and clears the redo stack.
func (h *History) Commit(stroke Stroke) {
	next := make([]Stroke, 0, len(h.arena[h.current].strokes)+1)
	for _, s := range h.arena[h.current].strokes {
		next = append(next, s.Clone())
	}
	next = append(next, stroke.Clone())
	h.push(next)
}

// Clear removes every stroke as one undoable action. Clearing an empty
// drawing records nothing.
func (h *History) Clear() {
	if len(h.arena[h.current].strokes) == 0 {
		return
	}
	h.push(nil)
}

// Undo restores the previous state. It reports false when there is nothing
// to undo.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, h.current)
	h.current = prev
	return true
}

// Redo reapplies the most recently undone state. It reports false when there
// is nothing to redo.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, h.current)
	h.current = next
	return true
}

// CanUndo reports whether Undo would change the state.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would change the state.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Strokes returns a copy of the current stroke list.
func (h *History) Strokes() []Stroke {
	return h.Drawing().Strokes
}

// Drawing returns the current state as drawing data.
func (h *History) Drawing() DrawingData {
	return DrawingData{Strokes: h.arena[h.current].strokes}.Clone()
}

func (h *History) push(strokes []Stroke) {
	h.arena = append(h.arena, snapshot{strokes: strokes})
	h.undo = append(h.undo, h.current)
	h.current = len(h.arena) - 1
	h.redo = h.redo[:0]
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = append(h.undo[:0], h.undo[len(h.undo)-h.limit:]...)
	}
	h.compact()
}

// compact drops snapshots no stack or the current state refers to, so a long
// session does not grow the arena without bound.
func (h *History) compact() {
	live := make(map[int]int, len(h.undo)+len(h.redo)+1)
	refs := make([]int, 0, len(h.undo)+len(h.redo)+1)
	refs = append(refs, h.undo...)
	refs = append(refs, h.current)
	refs = append(refs, h.redo...)
	if len(refs) == len(h.arena) {
		return
	}
	arena := make([]snapshot, 0, len(refs))
	for _, idx := range refs {
		if _, ok := live[idx]; ok {
			continue
		}
		live[idx] = len(arena)
		arena = append(arena, h.arena[idx])
	}
	for i, idx := range h.undo {
		h.undo[i] = live[idx]
	}
	for i, idx := range h.redo {
		h.redo[i] = live[idx]
	}
	h.current = live[h.current]
	h.arena = arena
}
