package executor

import (
	"github.com/Cyclone1070/preprint/internal/contentutil"
)

// sniffBytes is how much of a stream is checked for binary content.
const sniffBytes = 8000

// tailBuffer keeps the last limit bytes written to it. latexmk and friends
// report the failure that matters at the end of a long log, so the head is
// what gets dropped.
type tailBuffer struct {
	data    []byte
	limit   int
	dropped bool

	sniffed    int
	sniffLimit int
	binary     bool
}

func newTailBuffer(limit, sniffLimit int) *tailBuffer {
	return &tailBuffer{limit: limit, sniffLimit: sniffLimit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if t.binary || n == 0 {
		return n, nil
	}

	if t.sniffed < t.sniffLimit {
		head := p[:min(n, t.sniffLimit-t.sniffed)]
		if contentutil.IsBinaryContent(head) {
			t.binary, t.dropped, t.data = true, true, nil
			return n, nil
		}
		t.sniffed += len(head)
	}

	if t.limit <= 0 {
		t.dropped = true
		return n, nil
	}
	if n >= t.limit {
		t.dropped = t.dropped || len(t.data) > 0 || n > t.limit
		t.data = append(t.data[:0], p[n-t.limit:]...)
		return n, nil
	}
	if over := len(t.data) + n - t.limit; over > 0 {
		t.data = append(t.data[:0], t.data[over:]...)
		t.dropped = true
	}
	t.data = append(t.data, p...)
	return n, nil
}

func (t *tailBuffer) String() string {
	if t.binary {
		return "[binary output]"
	}
	return string(t.data)
}

// Truncated reports whether any output was discarded.
func (t *tailBuffer) Truncated() bool {
	return t.dropped
}
