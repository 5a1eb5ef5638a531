package marketplace

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/andrii-d/autoapply/internal/filter"
	"github.com/andrii-d/autoapply/internal/types"
)

const (
	freelanceHuntName              = "freelancehunt"
	freelanceHuntBaseURL           = "https://freelancehunt.com"
	freelanceHuntDefaultListingURL = "https://freelancehunt.com/projects"
	freelanceHuntCardSelector      = ".project-card"

	freelanceHuntUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// FreelanceHunt scrapes the FreelanceHunt project list. The list is
// server-rendered, so plain HTTP scraping is enough and no browser is started.
type FreelanceHunt struct{}

// NewFreelanceHunt returns the FreelanceHunt adapter.
func NewFreelanceHunt() *FreelanceHunt {
	return &FreelanceHunt{}
}

// Name returns the marketplace identifier.
func (f *FreelanceHunt) Name() string {
	return freelanceHuntName
}

// Selectors returns the FreelanceHunt DOM surface for the submission engine.
func (f *FreelanceHunt) Selectors() Selectors {
	return Selectors{
		LoginProbeURL:   freelanceHuntBaseURL + "/my/profile",
		LoginFormMarker: "form[action*='login']",

		LoginURL:      freelanceHuntBaseURL + "/login",
		UsernameField: `input[name="login"]`,
		PasswordField: `input[name="password"]`,
		LoginSubmit:   `button[type="submit"]`,

		ReplyButton:   ".btn-add-bid, a[href*='#add-bid']",
		ReplyForm:     "#add-bid form, form.bid-form",
		ReplyTextarea: "#add-bid textarea, form.bid-form textarea",
		SubmitButton:  "#add-bid button[type='submit'], form.bid-form button[type='submit']",

		SuccessMarker:        ".bid-sent, .alert-success",
		ErrorMarker:          ".alert-danger, .has-error .help-block",
		AlreadyRepliedMarker: ".your-bid, .bid-sent",
		ClosedMarker:         ".project-closed, .label-closed",
		AccessDeniedMarker:   ".only-for-plus, .alert-warning",
	}
}

// FetchListings visits up to opts.MaxPages project-list pages and parses the
// project cards. The page limit bounds scrape cost; a failed later page ends
// pagination early with whatever was collected.
func (f *FreelanceHunt) FetchListings(ctx context.Context, opts FetchOptions) ([]types.Posting, error) {
	listingURL := opts.URL
	if listingURL == "" {
		listingURL = freelanceHuntDefaultListingURL
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	c := colly.NewCollector(
		colly.AllowedDomains("freelancehunt.com", "www.freelancehunt.com"),
		colly.UserAgent(freelanceHuntUserAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(30 * time.Second)
	_ = c.Limit(&colly.LimitRule{
		DomainGlob: "*freelancehunt.com*",
		Delay:      1 * time.Second,
	})

	var postings []types.Posting
	dropped := 0
	var navErr error

	c.OnHTML(freelanceHuntCardSelector, func(e *colly.HTMLElement) {
		posting, err := parseFreelanceHuntCard(e.DOM, time.Now().UTC())
		if err != nil {
			log.Printf("[FREELANCEHUNT] %v", err)
			dropped++
			return
		}
		postings = append(postings, posting)
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("[FREELANCEHUNT] request to %s failed: %v", r.Request.URL, err)
		if navErr == nil {
			navErr = err
		}
	})

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return postings, err
		}

		before := len(postings)
		if err := c.Visit(pageURL(listingURL, page)); err != nil && navErr == nil {
			navErr = err
		}

		if navErr != nil {
			if page == 1 && len(postings) == 0 {
				return nil, &NavigationError{
					Source:  freelanceHuntName,
					URL:     listingURL,
					Message: "project list is unreachable",
					Cause:   navErr,
				}
			}
			log.Printf("[FREELANCEHUNT] page %d failed, stopping pagination", page)
			break
		}
		// No cards on a page means we ran past the last page.
		if len(postings) == before {
			break
		}
	}

	if dropped > 0 {
		log.Printf("[FREELANCEHUNT] dropped %d unparsable cards", dropped)
	}

	return postings, nil
}

func parseFreelanceHuntCard(card *goquery.Selection, discoveredAt time.Time) (types.Posting, error) {
	titleLink := card.Find(".project-card__title a").First()
	href, ok := titleLink.Attr("href")
	if !ok || strings.TrimSpace(titleLink.Text()) == "" {
		return types.Posting{}, &ParseError{
			Source:  freelanceHuntName,
			Message: "project card has no title link",
		}
	}

	link := href
	if strings.HasPrefix(link, "/") {
		link = freelanceHuntBaseURL + link
	}

	// Project URLs end with /<slug>/<numeric-id>.html or /<id>/; the id is the
	// last non-empty numeric-looking segment.
	segments := strings.Split(strings.TrimRight(link, "/"), "/")
	id := segments[len(segments)-1]
	if len(segments) >= 2 && !strings.ContainsAny(id, "0123456789") {
		id = segments[len(segments)-2]
	}
	if id == "" {
		return types.Posting{}, &ParseError{
			Source:  freelanceHuntName,
			Message: "cannot derive posting id from link " + link,
		}
	}

	price := strings.TrimSpace(card.Find(".project-card__budget").First().Text())

	return types.Posting{
		ID:               id,
		Source:           freelanceHuntName,
		Title:            strings.TrimSpace(titleLink.Text()),
		Description:      strings.TrimSpace(card.Find(".project-card__description").First().Text()),
		Price:            price,
		PriceValue:       filter.ParsePrice(price),
		Link:             link,
		DiscoveredAt:     discoveredAt,
		SubmissionStatus: types.StatusNotAttempted,
	}, nil
}
