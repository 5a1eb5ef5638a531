package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrii-d/autoapply/internal/config"
	"github.com/andrii-d/autoapply/internal/filter"
	"github.com/andrii-d/autoapply/internal/marketplace"
	"github.com/andrii-d/autoapply/internal/submit"
	"github.com/andrii-d/autoapply/internal/types"
)

type fakeAdapter struct {
	name     string
	postings []types.Posting
	err      error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) FetchListings(context.Context, marketplace.FetchOptions) ([]types.Posting, error) {
	return f.postings, f.err
}

func (f *fakeAdapter) Selectors() marketplace.Selectors { return marketplace.Selectors{} }

// fakeGenerator replies with a fixed prefix; IDs in failIDs raise an error and
// IDs in emptyIDs decline to reply.
type fakeGenerator struct {
	failIDs  map[string]bool
	emptyIDs map[string]bool
	calls    int
}

func (g *fakeGenerator) Generate(_ context.Context, p *types.Posting) (string, error) {
	g.calls++
	if g.failIDs[p.ID] {
		return "", errors.New("model unavailable")
	}
	if g.emptyIDs[p.ID] {
		return "", nil
	}
	return "Отклик на " + p.Title, nil
}

func (g *fakeGenerator) Close() error { return nil }

type fakeEngine struct {
	outcome submit.Outcome
	err     error

	links  []string
	closed bool
}

func (e *fakeEngine) Submit(_ context.Context, link, _ string) (submit.Outcome, error) {
	e.links = append(e.links, link)
	return e.outcome, e.err
}

func (e *fakeEngine) Close() { e.closed = true }

func testPosting(source, id, title, price string) types.Posting {
	return types.Posting{
		ID:               id,
		Source:           source,
		Title:            title,
		Price:            price,
		PriceValue:       filter.ParsePrice(price),
		Link:             "https://" + source + ".test/" + id,
		SubmissionStatus: types.StatusNotAttempted,
	}
}

func registryWith(adapters ...marketplace.Marketplace) *marketplace.Registry {
	r := marketplace.NewRegistry()
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

func testConfig(t *testing.T, names ...string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	for _, name := range names {
		cfg.Marketplaces = append(cfg.Marketplaces, config.MarketplaceConfig{Name: name, Enabled: true})
	}
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	adapter := &fakeAdapter{name: "fake", postings: []types.Posting{
		testPosting("fake", "1", "Лендинг", "1000"),
		testPosting("fake", "2", "Бот", "2000"),
	}}
	cfg := testConfig(t, "fake")
	cfg.AutoSubmit = true

	engine := &fakeEngine{outcome: submit.Outcome{Status: types.StatusPrepared, Message: "test mode"}}
	gen := &fakeGenerator{}

	result, err := Run(context.Background(), Options{
		Config:    cfg,
		Registry:  registryWith(adapter),
		Generator: gen,
		NewEngine: func(marketplace.Marketplace, string, bool) Submitter { return engine },
	})
	require.NoError(t, err)

	require.Len(t, result.Postings, 2)
	for _, p := range result.Postings {
		assert.True(t, p.ReplyGenerated)
		assert.NotEmpty(t, p.ReplyText)
		assert.Equal(t, types.StatusPrepared, p.SubmissionStatus)
	}
	assert.Equal(t, []string{"https://fake.test/1", "https://fake.test/2"}, engine.links)
	assert.True(t, engine.closed)

	// The snapshot is on disk and decodes back to the run's postings.
	data, err := os.ReadFile(result.SnapshotPath)
	require.NoError(t, err)
	var saved []types.Posting
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Len(t, saved, 2)
}

func TestRunUnknownMarketplace(t *testing.T) {
	cfg := testConfig(t, "upwork")

	_, err := Run(context.Background(), Options{Config: cfg})

	var unknownErr *marketplace.UnknownError
	require.ErrorAs(t, err, &unknownErr)
}

func TestRunAdapterFailureIsolated(t *testing.T) {
	healthy := &fakeAdapter{name: "good", postings: []types.Posting{testPosting("good", "1", "Лендинг", "1000")}}
	broken := &fakeAdapter{name: "bad", err: &marketplace.NavigationError{Source: "bad", Message: "unreachable"}}
	cfg := testConfig(t, "bad", "good")

	result, err := Run(context.Background(), Options{
		Config:   cfg,
		Registry: registryWith(healthy, broken),
	})
	require.NoError(t, err)

	require.Len(t, result.Postings, 1)
	assert.Equal(t, "good", result.Postings[0].Source)
}

func TestRunFlattensInConfigOrder(t *testing.T) {
	first := &fakeAdapter{name: "first", postings: []types.Posting{testPosting("first", "1", "a", "")}}
	second := &fakeAdapter{name: "second", postings: []types.Posting{testPosting("second", "2", "b", "")}}
	cfg := testConfig(t, "first", "second")

	result, err := Run(context.Background(), Options{
		Config:   cfg,
		Registry: registryWith(first, second),
	})
	require.NoError(t, err)

	require.Len(t, result.Postings, 2)
	assert.Equal(t, "first", result.Postings[0].Source)
	assert.Equal(t, "second", result.Postings[1].Source)
}

func TestRunAppliesFilter(t *testing.T) {
	adapter := &fakeAdapter{name: "fake", postings: []types.Posting{
		testPosting("fake", "1", "Лендинг под ключ", "1000"),
		testPosting("fake", "2", "Дизайн логотипа", "1000"),
	}}
	cfg := testConfig(t, "fake")

	result, err := Run(context.Background(), Options{
		Config:   cfg,
		Registry: registryWith(adapter),
		Criteria: filter.Criteria{IncludeKeywords: []string{"лендинг"}},
	})
	require.NoError(t, err)

	require.Len(t, result.Postings, 1)
	assert.Equal(t, "1", result.Postings[0].ID)
}

func TestRunGenerationFailureIsolated(t *testing.T) {
	adapter := &fakeAdapter{name: "fake", postings: []types.Posting{
		testPosting("fake", "1", "Лендинг", "1000"),
		testPosting("fake", "2", "Бот", "2000"),
		testPosting("fake", "3", "Парсер", "3000"),
	}}
	cfg := testConfig(t, "fake")
	gen := &fakeGenerator{
		failIDs:  map[string]bool{"1": true},
		emptyIDs: map[string]bool{"2": true},
	}

	result, err := Run(context.Background(), Options{
		Config:    cfg,
		Registry:  registryWith(adapter),
		Generator: gen,
	})
	require.NoError(t, err)

	require.Len(t, result.Postings, 3)
	assert.False(t, result.Postings[0].ReplyGenerated)
	assert.False(t, result.Postings[1].ReplyGenerated)
	assert.True(t, result.Postings[2].ReplyGenerated)
	assert.Equal(t, 3, gen.calls)
}

func TestRunSubmitsOnlyGeneratedReplies(t *testing.T) {
	adapter := &fakeAdapter{name: "fake", postings: []types.Posting{
		testPosting("fake", "1", "Лендинг", "1000"),
		testPosting("fake", "2", "Бот", "2000"),
	}}
	cfg := testConfig(t, "fake")
	cfg.AutoSubmit = true

	engine := &fakeEngine{outcome: submit.Outcome{Status: types.StatusSubmitted}}
	gen := &fakeGenerator{emptyIDs: map[string]bool{"1": true}}

	result, err := Run(context.Background(), Options{
		Config:    cfg,
		Registry:  registryWith(adapter),
		Generator: gen,
		NewEngine: func(marketplace.Marketplace, string, bool) Submitter { return engine },
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://fake.test/2"}, engine.links)
	assert.Equal(t, types.StatusNotAttempted, result.Postings[0].SubmissionStatus)
	assert.Equal(t, types.StatusSubmitted, result.Postings[1].SubmissionStatus)
}

func TestRunAuthExpiredStopsMarketplace(t *testing.T) {
	adapter := &fakeAdapter{name: "fake", postings: []types.Posting{
		testPosting("fake", "1", "Лендинг", "1000"),
		testPosting("fake", "2", "Бот", "2000"),
		testPosting("fake", "3", "Парсер", "3000"),
	}}
	cfg := testConfig(t, "fake")
	cfg.AutoSubmit = true

	engine := &fakeEngine{
		outcome: submit.Outcome{
			Status:  types.StatusFailed,
			Reason:  submit.ReasonAuthExpired,
			Message: "not logged in, authentication required",
		},
		err: submit.ErrAuthExpired,
	}

	result, err := Run(context.Background(), Options{
		Config:    cfg,
		Registry:  registryWith(adapter),
		Generator: &fakeGenerator{},
		NewEngine: func(marketplace.Marketplace, string, bool) Submitter { return engine },
	})
	require.NoError(t, err)

	// Only the first posting reaches the engine; the rest are failed locally.
	assert.Len(t, engine.links, 1)
	assert.Equal(t, types.StatusFailed, result.Postings[0].SubmissionStatus)
	for _, p := range result.Postings[1:] {
		assert.Equal(t, types.StatusFailed, p.SubmissionStatus)
		assert.Contains(t, p.SubmissionMessage, "authentication expired")
	}
	assert.True(t, engine.closed)
}

func TestRunWithoutAutoSubmit(t *testing.T) {
	adapter := &fakeAdapter{name: "fake", postings: []types.Posting{testPosting("fake", "1", "Лендинг", "1000")}}
	cfg := testConfig(t, "fake")

	created := 0
	result, err := Run(context.Background(), Options{
		Config:    cfg,
		Registry:  registryWith(adapter),
		Generator: &fakeGenerator{},
		NewEngine: func(marketplace.Marketplace, string, bool) Submitter {
			created++
			return &fakeEngine{}
		},
	})
	require.NoError(t, err)

	assert.Zero(t, created)
	assert.Equal(t, types.StatusNotAttempted, result.Postings[0].SubmissionStatus)
}
