package game

// TurnOrder is the seat sequence governing play, with an explicit cursor and
// traversal direction instead of tracking "players left to act" by list
// removal. The cursor always points at the current seat while a game is in
// progress.
type TurnOrder struct {
	seats     []PlayerID
	cursor    int
	direction int // +1 or -1
	skips     map[PlayerID]bool
}

// Append seats an identity at the end of the order. Re-appending a seated
// identity is a no-op.
func (t *TurnOrder) Append(id PlayerID) {
	if t.Contains(id) {
		return
	}
	t.seats = append(t.seats, id)
}

// Remove unseats an identity, keeping the cursor on the seat that should act
// next.
func (t *TurnOrder) Remove(id PlayerID) {
	idx := -1
	for i, s := range t.seats {
		if s == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	t.seats = append(t.seats[:idx], t.seats[idx+1:]...)
	delete(t.skips, id)
	if len(t.seats) == 0 {
		t.cursor = 0
		return
	}
	switch {
	case idx == t.cursor && t.dir() < 0:
		// Removing the current seat while traversing backwards: the seat
		// that acts next sits before the removed one.
		t.cursor = idx - 1
		if t.cursor < 0 {
			t.cursor = len(t.seats) - 1
		}
	case idx < t.cursor:
		t.cursor--
	}
	if t.cursor >= len(t.seats) {
		t.cursor = 0
	}
}

// Contains reports whether the identity is seated.
func (t *TurnOrder) Contains(id PlayerID) bool {
	for _, s := range t.seats {
		if s == id {
			return true
		}
	}
	return false
}

// Len returns the number of seats.
func (t *TurnOrder) Len() int {
	return len(t.seats)
}

// Seats returns a copy of the seat sequence.
func (t *TurnOrder) Seats() []PlayerID {
	out := make([]PlayerID, len(t.seats))
	copy(out, t.seats)
	return out
}

// Current returns the seat the cursor points at.
func (t *TurnOrder) Current() (PlayerID, bool) {
	if len(t.seats) == 0 {
		return "", false
	}
	return t.seats[t.cursor], true
}

// Reset moves the cursor back to the first seat and restores forward
// traversal.
func (t *TurnOrder) Reset() {
	t.cursor = 0
	t.direction = 0
}

// Reverse inverts the traversal direction.
func (t *TurnOrder) Reverse() {
	if t.dir() == 1 {
		t.direction = -1
	} else {
		t.direction = 1
	}
}

// SkipNext flags the seat after the current one to be skipped exactly once.
func (t *TurnOrder) SkipNext() {
	next, ok := t.Peek()
	if !ok {
		return
	}
	if t.skips == nil {
		t.skips = make(map[PlayerID]bool)
	}
	t.skips[next] = true
}

// Peek returns the seat that would act after the current one, without moving
// the cursor and without consuming skip flags.
func (t *TurnOrder) Peek() (PlayerID, bool) {
	if len(t.seats) == 0 {
		return "", false
	}
	i := t.step(t.cursor)
	for t.skips[t.seats[i]] && t.seats[i] != t.seats[t.cursor] {
		i = t.step(i)
	}
	return t.seats[i], true
}

// Advance moves the cursor to the next seat, wrapping around. A seat flagged
// by SkipNext is passed over exactly once, consuming the flag.
func (t *TurnOrder) Advance() (PlayerID, bool) {
	if len(t.seats) == 0 {
		return "", false
	}
	t.cursor = t.step(t.cursor)
	for t.skips[t.seats[t.cursor]] {
		delete(t.skips, t.seats[t.cursor])
		t.cursor = t.step(t.cursor)
	}
	return t.seats[t.cursor], true
}

func (t *TurnOrder) dir() int {
	if t.direction == 0 {
		return 1
	}
	return t.direction
}

func (t *TurnOrder) step(i int) int {
	n := len(t.seats)
	return ((i+t.dir())%n + n) % n
}
