package fleet

// WaitingQueue is the FIFO dispatch line. It stores plates only and
// holds at most one entry per plate: duty toggles and dispatch removals
// keep membership consistent with vehicle status.
type WaitingQueue struct {
	plates []string
}

func NewWaitingQueue() *WaitingQueue {
	return &WaitingQueue{}
}

// Enqueue appends a plate to the tail and reports whether it was added.
// A plate already in line stays where it is.
func (q *WaitingQueue) Enqueue(plate string) bool {
	if q.Contains(plate) {
		return false
	}
	q.plates = append(q.plates, plate)
	return true
}

// Remove drops a plate from any position and reports whether it was
// present.
func (q *WaitingQueue) Remove(plate string) bool {
	for i, p := range q.plates {
		if p == plate {
			q.plates = append(q.plates[:i], q.plates[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether a plate is in line.
func (q *WaitingQueue) Contains(plate string) bool {
	for _, p := range q.plates {
		if p == plate {
			return true
		}
	}
	return false
}

// Peek returns the plate next in line without removing it.
func (q *WaitingQueue) Peek() (string, bool) {
	if len(q.plates) == 0 {
		return "", false
	}
	return q.plates[0], true
}

// Rename swaps a plate in place, keeping the queue position.
func (q *WaitingQueue) Rename(oldPlate, newPlate string) bool {
	for i, p := range q.plates {
		if p == oldPlate {
			q.plates[i] = newPlate
			return true
		}
	}
	return false
}

func (q *WaitingQueue) Len() int { return len(q.plates) }

// Plates returns a copy of the line in dispatch order.
func (q *WaitingQueue) Plates() []string {
	out := make([]string, len(q.plates))
	copy(out, q.plates)
	return out
}
