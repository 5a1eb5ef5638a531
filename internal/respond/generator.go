// Package respond generates candidate reply text for postings. Generators are
// opaque collaborators to the orchestrator: a posting goes in, reply text or
// "no reply produced" comes out, and a failure never blocks the batch.
package respond

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/andrii-d/autoapply/internal/types"
)

// Generator maps a posting to reply text. An empty string with a nil error
// means no reply was produced; the posting continues through the pipeline
// with ReplyGenerated left false.
type Generator interface {
	Generate(ctx context.Context, posting *types.Posting) (string, error)
	Close() error
}

// DefaultCategory is the template key used when no category keywords match.
const DefaultCategory = "default"

// SelectCategory picks the template category whose keywords match the posting
// title or description, falling back to DefaultCategory.
func SelectCategory(posting *types.Posting, categories map[string][]string) string {
	text := strings.ToLower(posting.Title + " " + posting.Description)
	for category, keywords := range categories {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return category
			}
		}
	}
	return DefaultCategory
}

// templateContext is the data available to reply templates.
type templateContext struct {
	Title       string
	Description string
	Price       string
	Source      string
	Link        string
}

// renderTemplate executes a reply template against a posting.
func renderTemplate(name, text string, posting *types.Posting) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %q: %w", name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, templateContext{
		Title:       posting.Title,
		Description: posting.Description,
		Price:       posting.Price,
		Source:      posting.Source,
		Link:        posting.Link,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute template %q: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}
