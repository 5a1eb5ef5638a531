package submit

import (
	"context"
	"strings"
)

// captchaSelectors are defense-widget elements known to appear when a
// marketplace challenges automated traffic.
var captchaSelectors = []string{
	".captcha",
	".g-recaptcha",
	`iframe[src*="recaptcha"]`,
	`iframe[src*="captcha"]`,
}

// captchaPhrases are challenge texts scanned for in the rendered page,
// case-insensitively.
var captchaPhrases = []string{
	"captcha",
	"подтвердите, что вы не робот",
	"проверка безопасности",
}

// detectCaptcha scans the page for anti-automation markers. A positive match
// is terminal for the posting: retrying after a bot challenge risks account
// suspension, so the outcome always requires operator intervention.
func detectCaptcha(ctx context.Context, pg page) (bool, error) {
	for _, selector := range captchaSelectors {
		found, err := pg.Exists(ctx, selector)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}

	html, err := pg.HTML(ctx)
	if err != nil {
		return false, err
	}
	return ContainsCaptchaText(html), nil
}

// ContainsCaptchaText reports whether any known challenge phrase occurs in the
// given page content.
func ContainsCaptchaText(html string) bool {
	lower := strings.ToLower(html)
	for _, phrase := range captchaPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
