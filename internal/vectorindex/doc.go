// Package vectorindex stores embedding vectors and answers similarity
// searches over them.
//
// The SQLite backend keeps one logical collection per repository and
// computes cosine similarity in Go over the repository's candidate set,
// which is the right trade-off for per-repository collections of tens of
// thousands of points.
//
// # Ranking
//
// Search orders by descending similarity; ties break by insertion
// recency and then by point id, so results are stable across calls.
// Points whose stored dimension does not match the query vector are
// skipped rather than erroring, which lets a provider switch coexist
// with a pending re-index.
package vectorindex
