package tex

import "slices"

// includeChain tracks the files currently being inlined, outermost first.
type includeChain struct {
	files    []string
	maxDepth int
}

// enter returns the chain extended by key and "" when key may be inlined,
// or the reason it may not.
func (c includeChain) enter(key string) (includeChain, string) {
	if slices.Contains(c.files, key) {
		return c, "include cycle"
	}
	if len(c.files) >= c.maxDepth {
		return c, "include depth limit reached"
	}
	next := includeChain{maxDepth: c.maxDepth, files: make([]string, len(c.files), len(c.files)+1)}
	copy(next.files, c.files)
	next.files = append(next.files, key)
	return next, ""
}

// masterChain starts a chain at the root document. The root does not count
// towards maxDepth.
func masterChain(key string, maxDepth int) includeChain {
	return includeChain{files: []string{key}, maxDepth: maxDepth + 1}
}
