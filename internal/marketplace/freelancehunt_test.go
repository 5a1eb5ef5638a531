package marketplace

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardSelection(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	sel := doc.Find(freelanceHuntCardSelector).First()
	require.Equal(t, 1, sel.Length())
	return sel
}

func TestParseFreelanceHuntCard(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sel := cardSelection(t, `<div class="project-card">
		<div class="project-card__title"><a href="/project/sverstat-lending/987654.html">Сверстать лендинг</a></div>
		<div class="project-card__description">Одностраничник по макету</div>
		<div class="project-card__budget">4000 UAH</div>
	</div>`)

	p, err := parseFreelanceHuntCard(sel, now)
	require.NoError(t, err)

	assert.Equal(t, "987654.html", p.ID)
	assert.Equal(t, "freelancehunt", p.Source)
	assert.Equal(t, "Сверстать лендинг", p.Title)
	assert.Equal(t, "Одностраничник по макету", p.Description)
	assert.Equal(t, "4000 UAH", p.Price)
	require.NotNil(t, p.PriceValue)
	assert.InDelta(t, 4000, *p.PriceValue, 0.001)
	assert.Equal(t, "https://freelancehunt.com/project/sverstat-lending/987654.html", p.Link)
	assert.Equal(t, now, p.DiscoveredAt)
}

func TestParseFreelanceHuntCardAbsoluteLink(t *testing.T) {
	sel := cardSelection(t, `<div class="project-card">
		<div class="project-card__title"><a href="https://freelancehunt.com/project/bot/123.html">Бот</a></div>
	</div>`)

	p, err := parseFreelanceHuntCard(sel, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "https://freelancehunt.com/project/bot/123.html", p.Link)
	assert.Nil(t, p.PriceValue)
}

func TestParseFreelanceHuntCardWithoutTitle(t *testing.T) {
	sel := cardSelection(t, `<div class="project-card">
		<div class="project-card__budget">500 UAH</div>
	</div>`)

	_, err := parseFreelanceHuntCard(sel, time.Now().UTC())

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "freelancehunt", parseErr.Source)
}
