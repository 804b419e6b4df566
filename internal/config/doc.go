// Package config provides configuration structures and utilities for dirscrape.
// It defines the options for a crawl run (seeds, budget, timeouts, output),
// and the YAML site profiles that describe how a member directory is marked up.
package config
