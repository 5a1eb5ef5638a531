package marketplace

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/andrii-d/autoapply/internal/filter"
	"github.com/andrii-d/autoapply/internal/types"
)

const (
	kworkName              = "kwork"
	kworkBaseURL           = "https://kwork.ru"
	kworkDefaultListingURL = "https://kwork.ru/projects"
	kworkCardSelector      = ".card__content"

	// kworkPageTimeout bounds one listing-page render. The project feed is
	// JavaScript-rendered, so the page is only usable once the card container
	// appears.
	kworkPageTimeout = 30 * time.Second
)

// Kwork scrapes the Kwork project feed. The feed is a JavaScript application,
// so listings are rendered in a headless browser before parsing.
type Kwork struct{}

// NewKwork returns the Kwork adapter.
func NewKwork() *Kwork {
	return &Kwork{}
}

// Name returns the marketplace identifier.
func (k *Kwork) Name() string {
	return kworkName
}

// Selectors returns the Kwork DOM surface for the submission engine.
func (k *Kwork) Selectors() Selectors {
	return Selectors{
		LoginProbeURL:   kworkBaseURL + "/user/settings",
		LoginFormMarker: ".js-signin-form",

		LoginURL:      kworkBaseURL + "/login",
		UsernameField: `input[name="l_username"]`,
		PasswordField: `input[name="l_password"]`,
		LoginSubmit:   "button.js-signin-button",

		ReplyButton:   ".js-wants-offer-button, .btn_offer",
		ReplyForm:     ".kwork-submit-offer-form, .js-kwork-submit-offer-form",
		ReplyTextarea: ".form-textarea-wrapper textarea, .submit-offer-comment-field textarea",
		SubmitButton:  "button.kwork-submit-offer-form__submit, .js-wants-offer-send-button",

		SuccessMarker:        ".already-offer-alert, .js-success-offer-sent",
		ErrorMarker:          ".js-error-text, .error-text",
		AlreadyRepliedMarker: ".already-offer-alert",
		ClosedMarker:         ".want-closed",
		AccessDeniedMarker:   ".want-no-access",
	}
}

// FetchListings renders up to opts.MaxPages feed pages in an adapter-owned
// headless browser and parses the project cards. A failure to render the first
// page is a NavigationError; a failure on a later page ends pagination early
// with whatever was collected.
func (k *Kwork) FetchListings(ctx context.Context, opts FetchOptions) ([]types.Posting, error) {
	listingURL := opts.URL
	if listingURL == "" {
		listingURL = kworkDefaultListingURL
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var postings []types.Posting
	for page := 1; page <= maxPages; page++ {
		html, err := k.renderListingPage(browserCtx, pageURL(listingURL, page))
		if err != nil {
			if page == 1 {
				return nil, &NavigationError{
					Source:  kworkName,
					URL:     listingURL,
					Message: "listing feed did not render",
					Cause:   err,
				}
			}
			log.Printf("[KWORK] page %d failed, stopping pagination: %v", page, err)
			break
		}

		parsed, dropped := parseKworkCards(html, time.Now().UTC())
		if dropped > 0 {
			log.Printf("[KWORK] dropped %d unparsable cards on page %d", dropped, page)
		}
		postings = append(postings, parsed...)
	}

	return postings, nil
}

func (k *Kwork) renderListingPage(browserCtx context.Context, url string) (string, error) {
	pageCtx, cancel := context.WithTimeout(browserCtx, kworkPageTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(kworkCardSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}

// parseKworkCards extracts postings from a rendered feed page. Each card is
// parsed independently; the second return value counts cards that were logged
// and dropped.
func parseKworkCards(html string, discoveredAt time.Time) ([]types.Posting, int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[KWORK] failed to parse page HTML: %v", err)
		return nil, 0
	}

	var postings []types.Posting
	dropped := 0
	doc.Find(kworkCardSelector).Each(func(_ int, card *goquery.Selection) {
		posting, err := parseKworkCard(card, discoveredAt)
		if err != nil {
			log.Printf("[KWORK] %v", err)
			dropped++
			return
		}
		postings = append(postings, posting)
	})

	return postings, dropped
}

func parseKworkCard(card *goquery.Selection, discoveredAt time.Time) (types.Posting, error) {
	titleLink := card.Find("a.wants-card__header-title").First()
	href, ok := titleLink.Attr("href")
	if !ok || strings.TrimSpace(titleLink.Text()) == "" {
		return types.Posting{}, &ParseError{
			Source:  kworkName,
			Message: "card has no title link",
		}
	}

	link := href
	if strings.HasPrefix(link, "/") {
		link = kworkBaseURL + link
	}

	segments := strings.Split(strings.TrimRight(link, "/"), "/")
	id := segments[len(segments)-1]
	if id == "" {
		return types.Posting{}, &ParseError{
			Source:  kworkName,
			Message: fmt.Sprintf("cannot derive posting id from link %q", link),
		}
	}

	price := strings.TrimSpace(card.Find(".wants-card__header-price").First().Text())

	return types.Posting{
		ID:               id,
		Source:           kworkName,
		Title:            strings.TrimSpace(titleLink.Text()),
		Description:      strings.TrimSpace(card.Find(".wants-card__description-text").First().Text()),
		Price:            price,
		PriceValue:       filter.ParsePrice(price),
		Link:             link,
		DiscoveredAt:     discoveredAt,
		SubmissionStatus: types.StatusNotAttempted,
	}, nil
}

// pageURL appends the page query parameter, keeping page 1 as the bare URL.
func pageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", base, sep, page)
}
