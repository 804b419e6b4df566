package crawler

import "time"

// Progress is a snapshot of a run taken after each iteration.
type Progress struct {
	// Seed identifies the run when several seeds are crawled.
	Seed string

	// URL is the URL processed in this iteration.
	URL string

	// Visited is the number of URLs processed so far.
	Visited int

	// Pending is the number of URLs still in the frontier.
	Pending int

	// Records is the number of records collected so far.
	Records int

	// Elapsed is the time since the run started.
	Elapsed time.Duration
}

// Known returns the number of URLs discovered so far.
func (p Progress) Known() int {
	return p.Visited + p.Pending
}

// Fraction returns the share of known URLs already visited, in [0, 1].
func (p Progress) Fraction() float64 {
	known := p.Known()
	if known == 0 {
		return 1
	}
	return float64(p.Visited) / float64(known)
}

// ProgressFunc observes a run. It is called synchronously from the crawl
// loop and must not block for long; it has no influence on the crawl.
type ProgressFunc func(Progress)
