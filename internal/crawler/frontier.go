package crawler

// Frontier is the FIFO queue of pending URLs together with the set of every
// URL discovered so far.
//
// URLs are stored in one slice that only grows; head separates visited
// entries from pending ones. Because known covers both sides, Push never
// accepts a URL that is pending or already visited.
type Frontier struct {
	urls  []string
	head  int
	known map[string]struct{}
}

// NewFrontier creates a frontier holding the given seeds.
// Duplicate seeds are enqueued once.
func NewFrontier(seeds ...string) *Frontier {
	f := &Frontier{
		urls:  make([]string, 0, len(seeds)),
		known: make(map[string]struct{}, len(seeds)),
	}
	for _, s := range seeds {
		f.Push(s)
	}
	return f
}

// Push appends u to the tail unless it was seen before.
// It reports whether u was enqueued.
func (f *Frontier) Push(u string) bool {
	if _, ok := f.known[u]; ok {
		return false
	}
	f.known[u] = struct{}{}
	f.urls = append(f.urls, u)
	return true
}

// Pop removes and returns the head of the queue.
// ok is false when nothing is pending.
func (f *Frontier) Pop() (u string, ok bool) {
	if f.head >= len(f.urls) {
		return "", false
	}
	u = f.urls[f.head]
	f.head++
	return u, true
}

// Unpop puts the most recently popped URL back at the head.
// It is used when processing was interrupted before the URL was visited.
func (f *Frontier) Unpop() {
	if f.head > 0 {
		f.head--
	}
}

// Len returns the number of pending URLs.
func (f *Frontier) Len() int {
	return len(f.urls) - f.head
}

// Visited returns the number of popped URLs.
func (f *Frontier) Visited() int {
	return f.head
}

// Known reports whether u was ever enqueued.
func (f *Frontier) Known(u string) bool {
	_, ok := f.known[u]
	return ok
}

// Pending returns a copy of the pending URLs in queue order.
func (f *Frontier) Pending() []string {
	pending := make([]string, f.Len())
	copy(pending, f.urls[f.head:])
	return pending
}
