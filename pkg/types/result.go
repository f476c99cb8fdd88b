package types

// SearchMatch is a single ranked result from a repository code search.
type SearchMatch struct {
	Block CodeBlock `json:"block"`
	Score float64   `json:"score"` // cosine similarity, descending
}
