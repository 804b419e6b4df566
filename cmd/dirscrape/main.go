// Package main provides the entry point for the dirscrape CLI.
//
// dirscrape crawls a paginated member directory website, extracts one
// contact record per member detail page and writes the records as CSV.
//
// Usage:
//
//	dirscrape crawl --url <seed-url>
//	dirscrape crawl --url <seed-url> --csv members.csv --max-records 100
//
// See --help for all available options.
package main

// main is the entry point for dirscrape.
func main() {
	Execute()
}
