package parser

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"sort"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// parseGo extracts structural blocks from a Go file: one block per
// top-level function, method and type declaration, with the regions
// between declarations covered by window blocks so the whole file stays
// searchable. Returns nil when the file cannot be parsed, which sends
// the caller down the window fallback.
func (p *Parser) parseGo(filePath string, content []byte) []types.CodeBlock {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, filePath, content, goparser.ParseComments)
	if err != nil || file == nil {
		return nil
	}

	lines := splitLines(string(content))

	var decls []types.CodeBlock
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			decls = append(decls, goDeclBlock(fset, lines, filePath, d, d.Doc,
				funcBlockType(d), funcIdentifier(d)))
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			if len(d.Specs) == 1 {
				spec := d.Specs[0].(*ast.TypeSpec)
				decls = append(decls, goDeclBlock(fset, lines, filePath, d, d.Doc,
					types.BlockTypeDecl, spec.Name.Name))
				continue
			}
			// A grouped type declaration yields one block per spec.
			for _, s := range d.Specs {
				spec := s.(*ast.TypeSpec)
				decls = append(decls, goDeclBlock(fset, lines, filePath, spec, spec.Doc,
					types.BlockTypeDecl, spec.Name.Name))
			}
		}
	}

	sort.Slice(decls, func(i, j int) bool { return decls[i].StartLine < decls[j].StartLine })

	// Window the stretches the declarations do not cover: package clause,
	// imports, vars, consts and any inter-declaration text.
	var blocks []types.CodeBlock
	cursor := 1
	for _, d := range decls {
		if d.StartLine > cursor {
			blocks = append(blocks, p.windowRange(filePath, lines, cursor, d.StartLine-1)...)
		}
		blocks = append(blocks, d)
		if d.EndLine+1 > cursor {
			cursor = d.EndLine + 1
		}
	}
	if cursor <= len(lines) {
		blocks = append(blocks, p.windowRange(filePath, lines, cursor, len(lines))...)
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].StartLine < blocks[j].StartLine })
	return blocks
}

// goDeclBlock builds a block spanning a declaration, including its doc
// comment when present.
func goDeclBlock(fset *token.FileSet, lines []string, filePath string,
	node ast.Node, doc *ast.CommentGroup, kind types.BlockType, identifier string) types.CodeBlock {

	start := fset.Position(node.Pos()).Line
	if doc != nil {
		if docStart := fset.Position(doc.Pos()).Line; docStart < start {
			start = docStart
		}
	}
	end := fset.Position(node.End()).Line
	if end > len(lines) {
		end = len(lines)
	}

	return types.CodeBlock{
		FilePath:   filePath,
		Identifier: identifier,
		Type:       kind,
		StartLine:  start,
		EndLine:    end,
		Content:    joinLines(lines, start, end),
	}
}

func funcBlockType(d *ast.FuncDecl) types.BlockType {
	if d.Recv != nil {
		return types.BlockMethod
	}
	return types.BlockFunction
}

// funcIdentifier names a function, qualifying methods by receiver type.
func funcIdentifier(d *ast.FuncDecl) string {
	name := d.Name.Name
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return name
	}
	if recv := receiverTypeName(d.Recv.List[0].Type); recv != "" {
		return recv + "." + name
	}
	return name
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	}
	return ""
}
