// Package model defines the core data structures used throughout dirscrape.
//
// This package contains the following main types:
//   - Record: One business extracted from a directory detail page
//   - CrawlResult: Everything a single crawl run produced
//   - Failure: A URL that could not be fetched, with the reason
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, sink, database and report packages all need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for database storage.
package model
