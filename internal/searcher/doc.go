// Package searcher answers natural-language queries against a
// repository's vector index: embed the query with the same provider that
// indexed the code, rank by cosine similarity, return code blocks.
package searcher
