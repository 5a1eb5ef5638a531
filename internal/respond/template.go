package respond

import (
	"context"

	"github.com/andrii-d/autoapply/internal/types"
)

// TemplateGenerator produces replies by plain template substitution, without
// calling any model. It is the generator of choice when no API key is
// configured, and keeps the pipeline usable offline.
type TemplateGenerator struct {
	templates  map[string]string
	categories map[string][]string
}

// NewTemplateGenerator creates an offline generator from category-keyed
// templates.
func NewTemplateGenerator(templates map[string]string, categories map[string][]string) *TemplateGenerator {
	return &TemplateGenerator{templates: templates, categories: categories}
}

// Generate renders the matching category template. A posting with no matching
// template produces no reply rather than an error, so the batch keeps moving.
func (g *TemplateGenerator) Generate(_ context.Context, posting *types.Posting) (string, error) {
	category := SelectCategory(posting, g.categories)
	templateText, ok := g.templates[category]
	if !ok {
		templateText, ok = g.templates[DefaultCategory]
	}
	if !ok || templateText == "" {
		return "", nil
	}

	return renderTemplate(category, templateText, posting)
}

// Close implements Generator; there is nothing to release.
func (g *TemplateGenerator) Close() error {
	return nil
}
