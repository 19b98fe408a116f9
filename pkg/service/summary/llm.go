package summary

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Summarizer turns standup entries into a display-ready digest. The
// deterministic Builder is the required behavior; the LLM variant is an
// optional alternative behind the same contract.
type Summarizer interface {
	Summarize(ctx context.Context, entries []Entry) (string, error)
}

// Summarize implements Summarizer with the deterministic digest
func (b *Builder) Summarize(ctx context.Context, entries []Entry) (string, error) {
	return b.Build(entries), nil
}

const llmSummaryPrompt = `You are an expert standup summarizer. Summarize the standup responses below.
Categorize what was done and what is planned by each participant, keeping the
participants in their given order. End with a Parking Lot section (only if any
parking lot items exist) listing the items to discuss, each attributed to its
author and ordered by importance.

The expected format is:

# Standup summary
## {participant name}
**Completed work**
- item
**Planned work**
- item
# Parking Lot
- item (by {participant name})

Standup responses (JSON):
`

// LLMSummarizer renders the digest through an LLM session
type LLMSummarizer struct {
	llmClient gollem.LLMClient
}

// NewLLMSummarizer creates a Summarizer backed by the given LLM client
func NewLLMSummarizer(llmClient gollem.LLMClient) *LLMSummarizer {
	return &LLMSummarizer{llmClient: llmClient}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, entries []Entry) (string, error) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal standup entries")
	}

	session, err := s.llmClient.NewSession(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session for summary")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(llmSummaryPrompt+string(raw)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate standup summary")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("LLM summary generation returned empty result")
	}

	return strings.TrimSpace(strings.Join(resp.Texts, "\n")), nil
}
