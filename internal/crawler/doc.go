// Package crawler walks a member directory from a seed URL.
//
// # Architecture
//
// The Engine owns a Frontier: an index-stable list of every URL discovered
// during a run plus a set of the URLs it has seen. Entries before the head
// have been visited, entries after it are pending. A URL enters the list at
// most once, so it is fetched at most once per run and URL equality is exact
// string equality (no normalization).
//
// Each iteration pops the head, fetches it, enqueues the pagination and
// detail links the page yields that were never seen, and keeps the member
// record if the page had one. A failed fetch is logged, stored in the result
// and still counts as visited. The loop ends when the frontier is empty, when
// the record budget is reached or when the context is cancelled.
//
// # Concurrency
//
// One Engine run is strictly sequential: one URL is fetched and processed
// before the next is popped. Batch runs several independent engines, one per
// seed, with a bounded number in flight. Engines share nothing.
//
// # Usage
//
//	engine := crawler.New(fetcher, extract.Default(), crawler.WithMaxRecords(100))
//	result, err := engine.Run(ctx, "https://directory.example/socios")
package crawler
