package sinerider

// drawEntry is one slot in the frame's draw list.
type drawEntry struct {
	id    EntityID
	order Layer
	seq   uint64 // insertion sequence, breaks ties between equal layers
}

// --- Merge sort ---

// entryLessOrEqual returns true if a should sort before or at the same
// position as b. Using <= for seq keeps the sort stable.
func entryLessOrEqual(a, b drawEntry) bool {
	if a.order != b.order {
		return a.order < b.order
	}
	return a.seq <= b.seq
}

// mergeSort sorts s.drawList in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches
// high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.drawList)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]drawEntry, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.drawList
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.drawList, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []drawEntry, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if entryLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], src[i:mid])
	copy(dst[k:], src[j:hi])
}

// DrawOrder returns the handles of every entity the next Draw would visit,
// in draw order.
func (s *Scene) DrawOrder() []EntityID {
	s.drawList = s.drawList[:0]
	s.collectDraws(s.root)
	s.mergeSort()
	out := make([]EntityID, len(s.drawList))
	for i, d := range s.drawList {
		out[i] = d.id
	}
	return out
}
