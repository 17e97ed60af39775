package reconciliation

// Window is the slice of the ordered company list processed by one run
type Window struct {
	// Start is inclusive, End is exclusive
	Start int
	End   int
	// NextCursor is the value persisted after the run
	NextCursor int
}

// Len returns the number of companies in the window
func (w Window) Len() int {
	return w.End - w.Start
}

// ComputeWindow returns the window following cursor in a list of listLen
// companies. The window starts right after the cursor and wraps to 0 once the
// cursor reaches the end of the list, including when the list has shrunk
// below the cursor. The next cursor is the last processed offset, so it always
// lies in [0, listLen) for a non-empty list.
func ComputeWindow(cursor, listLen, batchSize int) Window {
	if listLen <= 0 {
		return Window{}
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	start := cursor + 1
	if cursor < 0 || start >= listLen {
		start = 0
	}
	end := min(start+batchSize, listLen)

	return Window{Start: start, End: end, NextCursor: end - 1}
}
