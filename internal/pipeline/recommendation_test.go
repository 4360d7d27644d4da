package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/menu-analytics/internal/recommend"
	"github.com/selivandex/menu-analytics/pkg/metrics"
	"github.com/selivandex/menu-analytics/pkg/models"
	"github.com/selivandex/menu-analytics/pkg/templates"
)

type fakeRecommendationStore struct {
	trends   []models.TrendAlert
	readErr  error
	writeErr error
	written  []models.Recommendation
}

func (f *fakeRecommendationStore) ReadLatestAnalysisTrends(ctx context.Context) ([]models.TrendAlert, error) {
	return f.trends, f.readErr
}

func (f *fakeRecommendationStore) WriteRecommendation(ctx context.Context, rec models.Recommendation) (uuid.UUID, error) {
	if f.writeErr != nil {
		return uuid.Nil, f.writeErr
	}
	f.written = append(f.written, rec)
	return uuid.New(), nil
}

type fakeLM struct {
	text string
	err  error
}

func (f *fakeLM) Generate(ctx context.Context, prompt string) (string, error) { return f.text, f.err }
func (f *fakeLM) GetName() string                                             { return "fake" }
func (f *fakeLM) IsEnabled() bool                                             { return true }

func newComposer(t *testing.T, lm *fakeLM) *recommend.Composer {
	t.Helper()
	renderer, err := templates.NewDefaultManager()
	require.NoError(t, err)
	if lm == nil {
		return recommend.NewComposer(nil, renderer, time.Second)
	}
	return recommend.NewComposer(lm, renderer, time.Second)
}

var tomatoes = models.TrendAlert{
	Ingredient: "tomatoes", Trend: "tomatoes price up 25.0%, sales down 8.0%",
	Severity: models.SeverityHigh, CorrelationStrength: 0.82, ActionNeeded: true,
}

func TestRecommendationPipeline_LanguageModel(t *testing.T) {
	store := &fakeRecommendationStore{trends: []models.TrendAlert{tomatoes}}
	lm := &fakeLM{text: "Insight: Costs rising.\nAction: Raise prices.\nOutcome: Higher margin."}

	outcome, err := NewRecommendationPipeline(store, newComposer(t, lm)).Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, outcome.RecommendationID)

	require.Len(t, store.written, 1)
	rec := store.written[0]
	assert.True(t, rec.AIGenerated)
	assert.Equal(t, "fake", rec.Provider)
	assert.Equal(t, "Raise prices.", rec.Action)
	assert.Equal(t, []models.TrendAlert{tomatoes}, rec.SourceTrends)
}

func TestRecommendationPipeline_FallsBackOnModelError(t *testing.T) {
	store := &fakeRecommendationStore{trends: []models.TrendAlert{tomatoes}}
	lm := &fakeLM{err: errors.New("quota exceeded")}

	_, err := NewRecommendationPipeline(store, newComposer(t, lm)).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.written, 1)
	assert.False(t, store.written[0].AIGenerated)
	assert.Contains(t, store.written[0].Action, "tomatoes")
}

func TestRecommendationPipeline_NoTrends(t *testing.T) {
	store := &fakeRecommendationStore{trends: []models.TrendAlert{}}

	outcome, err := NewRecommendationPipeline(store, newComposer(t, nil)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No significant trends detected in recent data.", outcome.Recommendation.Insight)
	assert.False(t, outcome.Recommendation.AIGenerated)
}

func TestRecommendationPipeline_PersistenceFailures(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeRecommendationStore
	}{
		{name: "read", store: &fakeRecommendationStore{readErr: errors.New("connection refused")}},
		{name: "write", store: &fakeRecommendationStore{writeErr: errors.New("constraint")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := NewRecommendationPipeline(tt.store, newComposer(t, nil)).Run(context.Background())
			require.ErrorIs(t, err, ErrPersistence)
			assert.Nil(t, outcome)
			assert.Empty(t, tt.store.written)
		})
	}
}

func TestRecommendationPipeline_RecordsRunMetric(t *testing.T) {
	store := &fakeRecommendationStore{trends: []models.TrendAlert{tomatoes}}
	recorder := &fakeRecorder{}
	lm := &fakeLM{text: "Insight: a\nAction: b\nOutcome: c"}

	_, err := NewRecommendationPipeline(store, newComposer(t, lm)).WithMetrics(recorder).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, recorder.recorded, 1)
	m, ok := recorder.recorded[0].(*metrics.RecommendationRunMetric)
	require.True(t, ok)
	assert.Equal(t, 1, m.SourceTrends)
	assert.True(t, m.AIGenerated)
	assert.Equal(t, "fake", m.Provider)
}
