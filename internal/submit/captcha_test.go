package submit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsCaptchaText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected bool
	}{
		{"Russian challenge phrase", "<p>Подтвердите, что вы не робот</p>", true},
		{"Mixed case", "<p>ПРОВЕРКА БЕЗОПАСНОСТИ</p>", true},
		{"Latin keyword", `<div id="x">Please solve the CAPTCHA below</div>`, true},
		{"Ordinary page", "<p>Нужен лендинг, бюджет 5000</p>", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsCaptchaText(tt.html))
		})
	}
}

func TestDetectCaptchaBySelector(t *testing.T) {
	pg := newFakePage()
	pg.exists[`iframe[src*="recaptcha"]`] = true

	detected, err := detectCaptcha(context.Background(), pg)
	require.NoError(t, err)
	assert.True(t, detected)
}

func TestDetectCaptchaCleanPage(t *testing.T) {
	pg := newFakePage()
	pg.html = "<html><body>Обычная страница заказа</body></html>"

	detected, err := detectCaptcha(context.Background(), pg)
	require.NoError(t, err)
	assert.False(t, detected)
}
