package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// PointPayload carries the searchable fields persisted alongside a vector.
type PointPayload struct {
	RepositoryID   int64  `json:"repository_id"`
	RepositoryName string `json:"repository_name"`
	FilePath       string `json:"file_path"`
	Identifier     string `json:"identifier,omitempty"`
	BlockType      string `json:"block_type"`
	StartLine      int    `json:"start_line"`
	EndLine        int    `json:"end_line"`
	Content        string `json:"content"`
	FileHash       string `json:"file_hash"`
	SegmentHash    string `json:"segment_hash"`
}

// IndexPoint is the unit persisted to the vector index.
type IndexPoint struct {
	ID      string
	Vector  []float32
	Payload PointPayload
}

// PointID derives a deterministic point id from the identity triple, so
// re-indexing the same unchanged block is an idempotent overwrite.
func PointID(repositoryID int64, filePath, segmentHash string) string {
	h := sha256.Sum256([]byte(strconv.FormatInt(repositoryID, 10) + ":" + filePath + ":" + segmentHash))
	return hex.EncodeToString(h[:])
}

// PointFromBlock builds an IndexPoint for a block and its embedding vector.
func PointFromBlock(repositoryID int64, repositoryName string, block CodeBlock, vector []float32) IndexPoint {
	return IndexPoint{
		ID:     PointID(repositoryID, block.FilePath, block.SegmentHash),
		Vector: vector,
		Payload: PointPayload{
			RepositoryID:   repositoryID,
			RepositoryName: repositoryName,
			FilePath:       block.FilePath,
			Identifier:     block.Identifier,
			BlockType:      string(block.Type),
			StartLine:      block.StartLine,
			EndLine:        block.EndLine,
			Content:        block.Content,
			FileHash:       block.FileHash,
			SegmentHash:    block.SegmentHash,
		},
	}
}

// Block reconstructs the CodeBlock view of a payload, used to surface
// search results to callers.
func (p PointPayload) Block() CodeBlock {
	return CodeBlock{
		FilePath:    p.FilePath,
		Identifier:  p.Identifier,
		Type:        BlockType(p.BlockType),
		StartLine:   p.StartLine,
		EndLine:     p.EndLine,
		Content:     p.Content,
		FileHash:    p.FileHash,
		SegmentHash: p.SegmentHash,
	}
}
