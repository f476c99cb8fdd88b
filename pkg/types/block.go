package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// BlockType classifies a code block by what the parser recognized it as.
type BlockType string

const (
	BlockFunction BlockType = "function"
	BlockMethod   BlockType = "method"
	BlockClass    BlockType = "class"
	BlockTypeDecl BlockType = "type"
	// BlockWindow is the generic fallback kind for fixed line-window chunks
	// and for file regions between recognized declarations.
	BlockWindow BlockType = "block"
)

// CodeBlock is the atomic indexed unit: a contiguous, semantically
// meaningful chunk of source code within one file.
type CodeBlock struct {
	FilePath   string    // repository-relative path
	Identifier string    // symbol name; empty for non-symbol chunks
	Type       BlockType // block kind
	StartLine  int       // 1-based, inclusive
	EndLine    int       // 1-based, inclusive, >= StartLine
	Content    string    // exact source text of the block

	FileHash    string // content hash of the whole source file at scan time
	SegmentHash string // content hash of this block's text alone
}

// ComputeSegmentHash fills SegmentHash from Content. The hash is stable
// across runs iff Content is byte-identical.
func (b *CodeBlock) ComputeSegmentHash() {
	b.SegmentHash = HashText(b.Content)
}

// Validate checks structural invariants of the block.
func (b *CodeBlock) Validate() error {
	if b.Content == "" {
		return errors.New("block content cannot be empty")
	}
	if b.StartLine <= 0 || b.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if b.StartLine > b.EndLine {
		return errors.New("start line must be before or equal to end line")
	}
	if b.FilePath == "" {
		return errors.New("file path is required")
	}
	return nil
}

// HashText computes the hex-encoded SHA-256 hash of a string.
func HashText(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// HashBytes computes the hex-encoded SHA-256 hash of a byte slice.
func HashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
