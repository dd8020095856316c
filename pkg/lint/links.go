package lint

import (
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractLinks parses markdown and returns every link and image destination
// in document order. The frontmatter block is excluded from parsing.
func ExtractLinks(content []byte) []string {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)
	doc := md.Parser().Parse(text.NewReader(content))

	var destinations []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			destinations = append(destinations, string(node.Destination))
		case *ast.Image:
			destinations = append(destinations, string(node.Destination))
		}
		return ast.WalkContinue, nil
	})

	return destinations
}
