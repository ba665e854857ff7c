package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VConnct/global"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(global.HuggingFaceConfig{
		Token:          "test-token",
		SummaryModel:   "sum-model",
		SentimentModel: "sent-model",
	})
	c.http.SetBaseURL(srv.URL)
	return c
}

func TestSummarizeNotConfigured(t *testing.T) {
	c := NewClient(global.HuggingFaceConfig{})
	_, err := c.Summarize(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.Sentiment(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSummarize(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sum-model", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"summary_text":"a short summary"}]`))
	})

	got, err := c.Summarize(context.Background(), "a long transcript")
	require.NoError(t, err)
	assert.Equal(t, "a short summary", got)
}

func TestSummarizeServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Summarize(context.Background(), "text")
	assert.Error(t, err)
}

func TestSummarizeEmptyResult(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	_, err := c.Summarize(context.Background(), "text")
	assert.Error(t, err)
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"positive wins", `[[{"label":"NEGATIVE","score":0.1},{"label":"POSITIVE","score":0.9}]]`, "Positive"},
		{"negative wins", `[[{"label":"POSITIVE","score":0.2},{"label":"NEGATIVE","score":0.8}]]`, "Negative"},
		{"unknown label", `[[{"label":"MIXED","score":0.9}]]`, "Neutral"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/sent-model", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			})

			got, err := c.Sentiment(context.Background(), "text")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
