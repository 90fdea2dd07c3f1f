package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/qasummary/internal/inference"
	"github.com/at-ishikawa/qasummary/internal/interview"
	mock_inference "github.com/at-ishikawa/qasummary/internal/mocks/inference"
	"github.com/at-ishikawa/qasummary/internal/summary"
	"github.com/at-ishikawa/qasummary/internal/transcript"
)

var completeSummary = inference.Summary{
	Name:                    "John Doe",
	OverallImpression:       "Calm and articulate.",
	ChanceOfGettingTheJob:   "High",
	MostRelevantPosition:    "Backend Engineer",
	PersonalCapability:      "Collaborative.",
	PsychologicalCapability: "Handles pressure well.",
	TechnicalCapability:     "Solid fundamentals.",
	FinalThoughts:           "Recommend a system design round.",
}

func newInterview() interview.Interview {
	return interview.New(interview.Metadata{
		CandidateName: "John Doe",
		JobTitle:      "Software Engineer",
		CompanyName:   "Example Corp",
	}, []transcript.QAEntry{
		{Question: "What is version control?", Answer: "Tracking changes with Git."},
		{Question: "How do you secure a web application?", Answer: "Validate input and use HTTPS."},
	})
}

type fakeCache struct {
	values map[string]inference.SummarizeInterviewResponse
	getErr error
	setErr error
}

func (c *fakeCache) Get(_ context.Context, requestHash string) (*inference.SummarizeInterviewResponse, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	response, ok := c.values[requestHash]
	if !ok {
		return nil, nil
	}
	return &response, nil
}

func (c *fakeCache) Set(_ context.Context, requestHash string, response inference.SummarizeInterviewResponse) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.values[requestHash] = response
	return nil
}

type fakeRepository struct {
	summary.Repository
	records   []summary.Record
	createErr error
}

func (r *fakeRepository) Create(_ context.Context, record *summary.Record) error {
	if r.createErr != nil {
		return r.createErr
	}
	record.ID = "record-1"
	r.records = append(r.records, *record)
	return nil
}

func TestBuildPrompt(t *testing.T) {
	got, err := BuildPrompt(newInterview())
	require.NoError(t, err)

	assert.Contains(t, got, "HR interview for the Software Engineer position at Example Corp. The candidate is John Doe.")
	assert.Contains(t, got, `"chance_of_getting_the_job"`)
	assert.Contains(t, got, "1. Question: What is version control?\n\nAnswer:\nTracking changes with Git.\n")
	assert.Contains(t, got, "2. Question: How do you secure a web application?")
}

func TestRequestHash(t *testing.T) {
	request := inference.SummarizeInterviewRequest{Prompt: "p", Temperature: 0.3, MaxOutputTokens: 1000}

	hash := RequestHash("openai/gpt-4o-mini", request)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, RequestHash("openai/gpt-4o-mini", request))

	changed := request
	changed.Temperature = 0.5
	assert.NotEqual(t, hash, RequestHash("openai/gpt-4o-mini", changed))
	assert.NotEqual(t, hash, RequestHash("openai/gpt-4o", request))
	assert.NotEqual(t, hash, RequestHash("genai/gemini/gemini-2.0-flash", request))
}

func TestAnalyzer_Analyze_CacheIsPerModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := &fakeCache{values: map[string]inference.SummarizeInterviewResponse{}}

	first := mock_inference.NewMockClient(ctrl)
	first.EXPECT().
		SummarizeInterview(gomock.Any(), gomock.Any()).
		Return(inference.SummarizeInterviewResponse{Summary: completeSummary, Model: "gpt-4o-mini"}, nil).
		Times(1)
	got, err := New(first, WithCache(cache), WithModel("openai/gpt-4o-mini")).Analyze(context.Background(), newInterview())
	require.NoError(t, err)
	assert.False(t, got.Cached)

	second := mock_inference.NewMockClient(ctrl)
	second.EXPECT().
		SummarizeInterview(gomock.Any(), gomock.Any()).
		Return(inference.SummarizeInterviewResponse{Summary: completeSummary, Model: "gemini-2.0-flash"}, nil).
		Times(1)
	got, err = New(second, WithCache(cache), WithModel("genai/gemini/gemini-2.0-flash")).Analyze(context.Background(), newInterview())
	require.NoError(t, err)
	assert.False(t, got.Cached)
	assert.Equal(t, "gemini-2.0-flash", got.Model)
	assert.Len(t, cache.values, 2)
}

func TestAnalyzer_Analyze(t *testing.T) {
	tests := []struct {
		name       string
		interview  interview.Interview
		setupMock  func(client *mock_inference.MockClient)
		cache      *fakeCache
		repository *fakeRepository
		want       Result
		wantErr    error
		wantErrMsg string
		wantCached int
		wantSaved  int
	}{
		{
			name:      "summarizes without cache or repository",
			interview: newInterview(),
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().
					SummarizeInterview(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, request inference.SummarizeInterviewRequest) (inference.SummarizeInterviewResponse, error) {
						assert.Equal(t, float32(0.3), request.Temperature)
						assert.Equal(t, 1000, request.MaxOutputTokens)
						assert.Contains(t, request.Prompt, "John Doe")
						return inference.SummarizeInterviewResponse{Summary: completeSummary, Model: "gpt-4o-mini"}, nil
					})
			},
			want: Result{Summary: completeSummary, Model: "gpt-4o-mini"},
		},
		{
			name:       "empty interview does not call the client",
			interview:  interview.New(interview.Metadata{CandidateName: "John Doe", JobTitle: "SWE", CompanyName: "Example"}, nil),
			setupMock:  func(client *mock_inference.MockClient) {},
			wantErr:    ErrEmptyInterview,
			wantErrMsg: "no questions",
		},
		{
			name: "invalid interview does not call the client",
			interview: interview.New(interview.Metadata{JobTitle: "SWE", CompanyName: "Example"}, []transcript.QAEntry{
				{Question: "Q1", Answer: "A1"},
			}),
			setupMock:  func(client *mock_inference.MockClient) {},
			wantErr:    interview.ErrInvalid,
			wantErrMsg: "CandidateName",
		},
		{
			name:      "client error",
			interview: newInterview(),
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().
					SummarizeInterview(gomock.Any(), gomock.Any()).
					Return(inference.SummarizeInterviewResponse{}, errors.New("response error 401: bad key"))
			},
			wantErrMsg: "response error 401",
		},
		{
			name:      "incomplete summary",
			interview: newInterview(),
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().
					SummarizeInterview(gomock.Any(), gomock.Any()).
					Return(inference.SummarizeInterviewResponse{Summary: inference.Summary{Name: "John Doe"}}, nil)
			},
			wantErr:    inference.ErrIncompleteSummary,
			wantErrMsg: "final_thoughts",
		},
		{
			name:      "cache miss stores the response",
			interview: newInterview(),
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().
					SummarizeInterview(gomock.Any(), gomock.Any()).
					Return(inference.SummarizeInterviewResponse{Summary: completeSummary, Model: "gpt-4o-mini"}, nil)
			},
			cache:      &fakeCache{values: map[string]inference.SummarizeInterviewResponse{}},
			want:       Result{Summary: completeSummary, Model: "gpt-4o-mini"},
			wantCached: 1,
		},
		{
			name:      "cache errors fall back to the client",
			interview: newInterview(),
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().
					SummarizeInterview(gomock.Any(), gomock.Any()).
					Return(inference.SummarizeInterviewResponse{Summary: completeSummary, Model: "gpt-4o-mini"}, nil)
			},
			cache: &fakeCache{
				values: map[string]inference.SummarizeInterviewResponse{},
				getErr: errors.New("connection refused"),
				setErr: errors.New("connection refused"),
			},
			want: Result{Summary: completeSummary, Model: "gpt-4o-mini"},
		},
		{
			name:       "persists to the repository",
			interview:  newInterview(),
			repository: &fakeRepository{},
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().
					SummarizeInterview(gomock.Any(), gomock.Any()).
					Return(inference.SummarizeInterviewResponse{Summary: completeSummary, Model: "gemini-2.0-flash"}, nil)
			},
			want:      Result{Summary: completeSummary, Model: "gemini-2.0-flash", RecordID: "record-1"},
			wantSaved: 1,
		},
		{
			name:       "repository error",
			interview:  newInterview(),
			repository: &fakeRepository{createErr: errors.New("duplicate entry")},
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().
					SummarizeInterview(gomock.Any(), gomock.Any()).
					Return(inference.SummarizeInterviewResponse{Summary: completeSummary, Model: "gpt-4o-mini"}, nil)
			},
			wantErrMsg: "duplicate entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock_inference.NewMockClient(ctrl)
			tt.setupMock(client)

			var opts []Option
			if tt.cache != nil {
				opts = append(opts, WithCache(tt.cache))
			}
			if tt.repository != nil {
				opts = append(opts, WithRepository(tt.repository))
			}
			got, err := New(client, opts...).Analyze(context.Background(), tt.interview)

			if tt.wantErr != nil || tt.wantErrMsg != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.cache != nil {
				assert.Len(t, tt.cache.values, tt.wantCached)
			}
			if tt.repository != nil {
				require.Len(t, tt.repository.records, tt.wantSaved)
				record := tt.repository.records[0]
				assert.Equal(t, "John Doe", record.CandidateName)
				assert.Equal(t, "Example Corp", record.CompanyName)
				assert.Len(t, record.RequestHash, 64)
				assert.Contains(t, record.Transcript, "2. Question: How do you secure a web application?")
			}
		})
	}
}

func TestAnalyzer_Analyze_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	client.EXPECT().
		SummarizeInterview(gomock.Any(), gomock.Any()).
		Return(inference.SummarizeInterviewResponse{Summary: completeSummary, Model: "gpt-4o-mini"}, nil).
		Times(1)

	cache := &fakeCache{values: map[string]inference.SummarizeInterviewResponse{}}
	analyzer := New(client, WithCache(cache), WithTemperature(0.2), WithMaxOutputTokens(500))

	first, err := analyzer.Analyze(context.Background(), newInterview())
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := analyzer.Analyze(context.Background(), newInterview())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, "gpt-4o-mini", second.Model)
}
