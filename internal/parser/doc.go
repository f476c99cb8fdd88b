// Package parser splits file content into code blocks for embedding.
//
// Go files are parsed with go/ast: each function, method, and type
// declaration becomes one block carrying its identifier and doc comment,
// with the gaps between declarations covered by line windows. Files in
// other languages, and Go files that fail to parse, fall back to
// fixed-size line windows that prefer to cut at blank lines.
//
//	p := parser.New(cfg.Parser)
//	blocks, err := p.Parse("pkg/math/add.go", content, fileHash)
//
// Every block is stamped with the file's content hash and its own
// segment hash, which together make point ids deterministic across runs.
package parser
