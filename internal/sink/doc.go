// Package sink writes collected records as CSV.
//
// The destination is a Target chosen from configuration: standard output or
// a file path. A Target is opened lazily, so a run that collected nothing
// neither creates a file nor prints a header.
//
// Every field, header included, is enclosed in double quotes and embedded
// quotes are doubled. Rows follow the order the records were discovered in.
package sink
