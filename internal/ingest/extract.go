package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Extractor turns a raw upload into plain text suitable for chunking.
type Extractor interface {
	// Extract returns the plain text content of the file. fileType is the
	// lowercase extension without the dot.
	Extract(ctx context.Context, fileType string, data []byte) (string, error)
}

// PageExtractor extracts per-page text from paginated formats.
// Implementations wrap an external PDF library or service.
type PageExtractor interface {
	// ExtractPages returns the text of each page in order. Pages with no
	// extractable text may be empty strings.
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
}

// TextExtractor extracts plain text from txt, md, and pdf uploads.
// Markdown is flattened through an AST walk so formatting syntax does not
// leak into the search index. PDF support requires a PageExtractor; when
// none is configured, PDF uploads are rejected.
type TextExtractor struct {
	parser goldmark.Markdown
	pdf    PageExtractor
}

// NewTextExtractor creates an extractor. pdf may be nil.
func NewTextExtractor(pdf PageExtractor) *TextExtractor {
	return &TextExtractor{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
		pdf: pdf,
	}
}

// Extract returns the plain text content of the file.
func (e *TextExtractor) Extract(ctx context.Context, fileType string, data []byte) (string, error) {
	switch fileType {
	case "txt":
		return string(data), nil
	case "md":
		return e.extractMarkdown(data)
	case "pdf":
		return e.extractPDF(ctx, data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", fileType)
	}
}

// extractMarkdown parses the markdown and collects the text content of
// every node, dropping formatting syntax.
func (e *TextExtractor) extractMarkdown(content []byte) (string, error) {
	reader := text.NewReader(content)
	doc := e.parser.Parser().Parse(reader)

	var sb strings.Builder

	appendBreak := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteString("\n")
		}
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			appendBreak()
			sb.WriteString(extractTextFromNode(node, content))
			sb.WriteString("\n")
			// Children already collected above
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			segment := node.Segment
			sb.Write(segment.Value(content))
			return ast.WalkContinue, nil

		case *ast.String:
			sb.Write(node.Value)
			return ast.WalkContinue, nil

		case *ast.CodeSpan:
			sb.WriteString(extractTextFromNode(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				sb.Write(line.Value(content))
			}
			return ast.WalkContinue, nil

		case *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				sb.Write(line.Value(content))
			}
			return ast.WalkContinue, nil

		case *ast.Paragraph, *ast.List, *ast.ListItem:
			appendBreak()
			return ast.WalkContinue, nil

		default:
			// Table extension nodes have kind names containing "Table"
			kindName := n.Kind().String()
			if strings.Contains(kindName, "TableRow") || strings.Contains(kindName, "TableHeader") {
				appendBreak()
			} else if strings.Contains(kindName, "TableCell") {
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
					sb.WriteString(" ")
				}
			}
			return ast.WalkContinue, nil
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk markdown AST: %w", err)
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("no text content extracted from markdown")
	}
	return out, nil
}

// extractPDF joins per-page text with [Page N] markers. The chunker
// strips the markers during cleaning; they exist for debugging raw
// extracted text.
func (e *TextExtractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	if e.pdf == nil {
		return "", fmt.Errorf("pdf extraction is not configured")
	}

	pages, err := e.pdf.ExtractPages(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf pages: %w", err)
	}

	var parts []string
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Page %d]\n%s", i+1, page))
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text content extracted from pdf")
	}
	return strings.Join(parts, "\n\n"), nil
}

// extractTextFromNode collects all text content under a node.
func extractTextFromNode(node ast.Node, content []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch textNode := n.(type) {
		case *ast.Text:
			segment := textNode.Segment
			sb.Write(segment.Value(content))
		case *ast.String:
			sb.Write(textNode.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
