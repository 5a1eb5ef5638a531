package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostingKey(t *testing.T) {
	p := Posting{ID: "123456", Source: "kwork"}
	assert.Equal(t, "kwork/123456", p.Key())
}

func TestPostingSnapshotSchema(t *testing.T) {
	price := 1000.0
	replied := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := Posting{
		ID:               "123456",
		Source:           "kwork",
		Title:            "Лендинг",
		Description:      "верстка",
		Price:            "1 000 ₽",
		Link:             "https://kwork.ru/projects/123456",
		DiscoveredAt:     time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
		PriceValue:       &price,
		ReplyText:        "Здравствуйте!",
		ReplyGenerated:   true,
		ReplyTimestamp:   &replied,
		SubmissionStatus: StatusPrepared,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, key := range []string{
		"id", "source", "title", "description", "price", "link", "timestamp",
		"price_value", "response", "response_generated", "response_timestamp",
		"submission_status",
	} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "prepared", fields["submission_status"])
}

func TestPostingOmitsUnsetOptionalFields(t *testing.T) {
	data, err := json.Marshal(Posting{ID: "1", Source: "kwork", SubmissionStatus: StatusNotAttempted})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.NotContains(t, fields, "price_value")
	assert.NotContains(t, fields, "response")
	assert.NotContains(t, fields, "response_timestamp")
	assert.NotContains(t, fields, "submission_message")
}
