package application

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	uploadsPath = "/blog/uploads/"
	postsPath   = "/blog/"
)

// Heading is one table-of-contents entry.
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// RenderedContent is a post body converted to HTML.
type RenderedContent struct {
	HTML     string
	Headings []Heading
}

// MarkdownRenderer defines the interface for converting markdown to HTML.
type MarkdownRenderer interface {
	Render(markdown string) (*RenderedContent, error)
}

// relativeLinkTransformer points relative image paths at the upload
// directory and relative links to other post files at their blog URL.
type relativeLinkTransformer struct{}

func (t *relativeLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Image:
			dest := string(v.Destination)
			if isRelativeLink(dest) {
				v.Destination = []byte(uploadsPath + path.Base(dest))
			}
		case *ast.Link:
			dest := string(v.Destination)
			if !isRelativeLink(dest) {
				break
			}
			file := path.Base(dest)
			for _, ext := range []string{".mdx", ".md"} {
				if slug, ok := strings.CutSuffix(file, ext); ok {
					v.Destination = []byte(postsPath + slug)
					break
				}
			}
		}

		return ast.WalkContinue, nil
	})
}

// isRelativeLink reports whether dest is relative to the current document.
// Site-absolute paths, fragments and anything with a scheme are left alone.
func isRelativeLink(dest string) bool {
	if dest == "" {
		return false
	}
	if strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return false
	}
	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}
	return !strings.Contains(dest, ":")
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
}

func NewMarkdownRenderer() MarkdownRenderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&relativeLinkTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &MarkdownRendererImpl{
		renderer: renderer,
	}
}

func (r *MarkdownRendererImpl) Render(markdown string) (*RenderedContent, error) {
	source := []byte(markdown)
	doc := r.renderer.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	if err := r.renderer.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return &RenderedContent{
		HTML:     buf.String(),
		Headings: extractHeadings(doc, source),
	}, nil
}

// extractHeadings collects h2 and h3 headings for the table of contents.
func extractHeadings(doc ast.Node, source []byte) []Heading {
	headings := []Heading{}
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Level == 2 || h.Level == 3 {
			var id string
			if v, found := h.AttributeString("id"); found {
				if b, ok := v.([]byte); ok {
					id = string(b)
				}
			}
			headings = append(headings, Heading{
				Level: h.Level,
				ID:    id,
				Text:  strings.TrimSpace(nodeText(h, source)),
			})
		}
		return ast.WalkSkipChildren, nil
	})
	return headings
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		default:
			b.WriteString(nodeText(c, source))
		}
	}
	return b.String()
}
