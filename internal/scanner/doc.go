// Package scanner lists a remote repository's file tree and filters it
// down to the files worth indexing.
//
// Filtering applies in order: ignore patterns, supported extension,
// maximum file size. Results are sorted by path so a scan of an
// unchanged tree is deterministic.
//
//	sc, err := scanner.New(provider, cfg.Scanner, log)
//	files, stats, err := sc.ScanWithStats(ctx, "acme", "demo")
//
// Ignore patterns match either the whole path or any single path
// segment, and support at most one '*' wildcard per pattern:
//
//	node_modules    matches any node_modules directory at any depth
//	*.min.js        matches minified assets by suffix
//	test_*_fixture  matches by prefix and suffix
package scanner
