package docsmd

// IndexTracker holds the document index where the next insertion lands.
// It only ever moves forward.
type IndexTracker struct {
	current int
}

func NewIndexTracker(start int) *IndexTracker {
	return &IndexTracker{current: start}
}

// Current returns the insertion index.
func (t *IndexTracker) Current() int { return t.current }

// Advance moves the insertion index forward by n. Negative values are ignored.
func (t *IndexTracker) Advance(n int) {
	if n > 0 {
		t.current += n
	}
}

// Range converts a line-relative interval into absolute document indexes
// without moving the tracker.
func (t *IndexTracker) Range(localStart, localEnd int) (int, int) {
	return t.current + localStart, t.current + localEnd
}
