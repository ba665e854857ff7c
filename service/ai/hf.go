package ai

import (
	"context"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"VConnct/global"
)

const inferenceBaseURL = "https://api-inference.huggingface.co/models/"

// ErrNotConfigured signals that no API token is present; callers fall back to
// mock data.
var ErrNotConfigured = errors.New("huggingface token not configured")

// Client calls the Hugging Face hosted inference API for conversation
// summaries and sentiment. Correctness of the models is out of scope; any
// failure here is absorbed by the caller's fallback.
type Client struct {
	cfg  global.HuggingFaceConfig
	http *resty.Client
}

func NewClient(cfg global.HuggingFaceConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		cfg: cfg,
		http: resty.New().
			SetBaseURL(inferenceBaseURL).
			SetTimeout(timeout).
			SetAuthToken(cfg.Token),
	}
}

type summaryResult struct {
	SummaryText string `json:"summary_text"`
}

// Summarize condenses the transcript into a short summary.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if c.cfg.Token == "" {
		return "", ErrNotConfigured
	}
	var out []summaryResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"inputs": text,
			"parameters": map[string]any{
				"max_length": 50,
				"min_length": 10,
			},
		}).
		SetResult(&out).
		Post(c.cfg.SummaryModel)
	if err != nil {
		return "", errors.Wrap(err, "hf summarization")
	}
	if resp.IsError() {
		return "", errors.Errorf("hf summarization: %s", resp.Status())
	}
	if len(out) == 0 || out[0].SummaryText == "" {
		return "", errors.New("hf summarization: empty result")
	}
	return out[0].SummaryText, nil
}

type classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Sentiment classifies the transcript and maps the top label onto
// Positive/Negative/Neutral.
func (c *Client) Sentiment(ctx context.Context, text string) (string, error) {
	if c.cfg.Token == "" {
		return "", ErrNotConfigured
	}
	var out [][]classification
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"inputs": text}).
		SetResult(&out).
		Post(c.cfg.SentimentModel)
	if err != nil {
		return "", errors.Wrap(err, "hf sentiment")
	}
	if resp.IsError() {
		return "", errors.Errorf("hf sentiment: %s", resp.Status())
	}
	if len(out) == 0 || len(out[0]) == 0 {
		return "", errors.New("hf sentiment: empty result")
	}

	labels := out[0]
	sort.Slice(labels, func(i, j int) bool { return labels[i].Score > labels[j].Score })
	switch labels[0].Label {
	case "POSITIVE":
		return "Positive", nil
	case "NEGATIVE":
		return "Negative", nil
	default:
		return "Neutral", nil
	}
}
