package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"VConnct/global"
	insightmodel "VConnct/module/insight/model"
	"VConnct/service/ai"
)

func TestAnalyzeFallsBackToMock(t *testing.T) {
	// no token configured, so both inference calls fail
	s := &Service{ai: ai.NewClient(global.HuggingFaceConfig{})}

	summary, sentiment := s.analyze(context.Background(), "Alice: hi\nBob: hello")

	assert.Equal(t, mockSummary, summary)
	assert.Contains(t, []string{
		insightmodel.SentimentPositive,
		insightmodel.SentimentNeutral,
		insightmodel.SentimentNegative,
	}, sentiment)
}
