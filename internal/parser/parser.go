package parser

import (
	"path"
	"strings"

	"github.com/reviewlens/reviewlens/internal/config"
	"github.com/reviewlens/reviewlens/pkg/types"
)

// Parser splits a source file into code blocks. Go files get structural
// AST-based extraction; everything else falls back to fixed line
// windows. A file that fails structural parsing is windowed too, so a
// syntax error in one file never blocks indexing.
type Parser struct {
	minLines int
	maxLines int
}

// New builds a Parser from settings.
func New(cfg config.ParserSettings) *Parser {
	min := cfg.WindowMinLines
	max := cfg.WindowMaxLines
	if min <= 0 {
		min = 5
	}
	if max < min {
		max = min
	}
	return &Parser{minLines: min, maxLines: max}
}

// Parse extracts blocks from one file. Results are ordered by start
// line, every block has its segment hash computed, and blank files
// produce no blocks and no error.
func (p *Parser) Parse(filePath string, content []byte, fileHash string) ([]types.CodeBlock, error) {
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil, nil
	}

	var blocks []types.CodeBlock
	if strings.ToLower(path.Ext(filePath)) == ".go" {
		blocks = p.parseGo(filePath, content)
	}
	if blocks == nil {
		blocks = p.windowBlocks(filePath, string(content))
	}

	for i := range blocks {
		blocks[i].FileHash = fileHash
		blocks[i].ComputeSegmentHash()
	}
	return blocks, nil
}
