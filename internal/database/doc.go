// Package database provides the SQLite run archive for dirscrape.
//
// When a crawl is started with --save, the finished run is stored in
// $XDG_DATA_HOME/dirscrape/dirscrape.db:
//   - runs: seed, start and end time, outcome, counters, visited and
//     pending URL lists
//   - records: every record of each run in discovery order, with a
//     SHA3-256 fingerprint to look up identical records across runs
//   - failures: the URLs whose fetch failed and why
//
// The archive is a history for the history and report subcommands. A crawl
// never reads it back, so runs never resume from it.
//
// We use SQLite via modernc.org/sqlite: a single file and no CGO.
package database
