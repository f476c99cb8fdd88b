package parser

import (
	"strings"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// windowBlocks chunks an entire file into line windows.
func (p *Parser) windowBlocks(filePath, content string) []types.CodeBlock {
	lines := splitLines(content)
	return p.windowRange(filePath, lines, 1, len(lines))
}

// windowRange chunks lines[startLine..endLine] (1-based, inclusive) into
// non-overlapping windows of at most maxLines. When a window must be
// cut, a blank line in the window's final third is preferred as the cut
// point so blocks tend to end at natural boundaries. A trailing window
// shorter than minLines is merged into the previous one. Windows of
// only blank lines are dropped.
func (p *Parser) windowRange(filePath string, lines []string, startLine, endLine int) []types.CodeBlock {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > endLine {
		return nil
	}

	var blocks []types.CodeBlock
	cur := startLine
	for cur <= endLine {
		end := cur + p.maxLines - 1
		if end > endLine {
			end = endLine
		} else if end < endLine {
			end = p.preferBlankCut(lines, cur, end)
		}

		remaining := endLine - end
		if remaining > 0 && remaining < p.minLines && len(blocks) > 0 {
			// Too little left for its own window; extend this one.
			end = endLine
		}

		if b, ok := p.windowBlock(filePath, lines, cur, end); ok {
			// Merge an undersized tail into the previous window.
			if end == endLine && b.EndLine-b.StartLine+1 < p.minLines && len(blocks) > 0 {
				prev := &blocks[len(blocks)-1]
				prev.EndLine = b.EndLine
				prev.Content = joinLines(lines, prev.StartLine, prev.EndLine)
			} else {
				blocks = append(blocks, b)
			}
		}
		cur = end + 1
	}
	return blocks
}

// preferBlankCut moves the window end back to the nearest blank line
// within the window's final third, if one exists.
func (p *Parser) preferBlankCut(lines []string, start, end int) int {
	window := end - start + 1
	floor := end - window/3
	if floor < start {
		floor = start
	}
	for i := end; i > floor; i-- {
		if strings.TrimSpace(lines[i-1]) == "" {
			return i
		}
	}
	return end
}

func (p *Parser) windowBlock(filePath string, lines []string, start, end int) (types.CodeBlock, bool) {
	content := joinLines(lines, start, end)
	if strings.TrimSpace(content) == "" {
		return types.CodeBlock{}, false
	}
	return types.CodeBlock{
		FilePath:  filePath,
		Type:      types.BlockWindow,
		StartLine: start,
		EndLine:   end,
		Content:   content,
	}, true
}

func splitLines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

func joinLines(lines []string, start, end int) string {
	return strings.Join(lines[start-1:end], "\n")
}
