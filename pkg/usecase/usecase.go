package usecase

import (
	"github.com/m-mizutani/gollem"

	"github.com/kohigashi/asakai/pkg/domain/interfaces"
	"github.com/kohigashi/asakai/pkg/service/intent"
	"github.com/kohigashi/asakai/pkg/service/notion"
	slacksvc "github.com/kohigashi/asakai/pkg/service/slack"
	"github.com/kohigashi/asakai/pkg/service/storage"
	"github.com/kohigashi/asakai/pkg/service/summary"
)

// UseCases is the service object owned by the hosting layer and passed by
// handle into each request. There is no shared module-level instance.
type UseCases struct {
	repo        interfaces.Repository
	slackSvc    slacksvc.Service
	notionSvc   notion.Service
	gcsClient   storage.GCSClient
	llmClient   gollem.LLMClient
	summaryOpts summary.Options
	classifier  intent.Classifier

	store   *GroupStore
	manager *GroupManager

	Standup *StandupUseCase
}

type Option func(*UseCases)

// WithSlackService sets the chat transport used for replies and cards
func WithSlackService(svc slacksvc.Service) Option {
	return func(uc *UseCases) {
		uc.slackSvc = svc
	}
}

// WithNotion enables the Notion storage adapter kind
func WithNotion(svc notion.Service) Option {
	return func(uc *UseCases) {
		uc.notionSvc = svc
	}
}

// WithGCS enables the Cloud Storage adapter kind
func WithGCS(client storage.GCSClient) Option {
	return func(uc *UseCases) {
		uc.gcsClient = client
	}
}

// WithLLM enables free-text intent classification and LLM summarization.
// Without it, only exact commands work and summaries come from the
// deterministic builder.
func WithLLM(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llmClient = client
	}
}

// WithSummaryOptions overrides the deterministic summary headings
func WithSummaryOptions(opts summary.Options) Option {
	return func(uc *UseCases) {
		uc.summaryOpts = opts
	}
}

// New builds the use case set over the given document store
func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		summaryOpts: summary.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(uc)
	}

	uc.store = NewGroupStore(repo, storage.Deps{
		Notion: uc.notionSvc,
		GCS:    uc.gcsClient,
	})
	uc.manager = NewGroupManager(uc.store)

	builder := summary.NewBuilder(uc.summaryOpts)
	var summarizer summary.Summarizer = builder
	if uc.llmClient != nil {
		summarizer = summary.NewLLMSummarizer(uc.llmClient)
		uc.classifier = intent.NewLLMClassifier(uc.llmClient)
	}

	uc.Standup = NewStandupUseCase(uc.manager, uc.store, summarizer, builder)

	return uc
}
