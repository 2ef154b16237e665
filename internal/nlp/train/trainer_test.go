package train

import (
	"context"
	"errors"
	"testing"

	apperrors "careerbot/internal/common/errors"
	"careerbot/internal/common/logger"
	"careerbot/internal/nlp/classify"
	"careerbot/internal/nlp/normalize"
	"careerbot/pkg/catalog"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// ==========================
// Test Helper Functions
// ==========================

const testCatalog = `[
  {"tag": "greeting", "patterns": ["hello!", "hey buddy"], "responses": ["Hi"]},
  {"tag": "careers", "patterns": ["career options", "jobs suiting engineers"], "responses": ["Careers"]},
  {"tag": "exams", "patterns": ["entrance exam dates?", "eapcet preparation"], "responses": ["Exams"]},
  {"tag": "research", "patterns": ["research papers", "phd topics"], "responses": ["Research"]}
]`

func createTestConfig() Config {
	cfg := DefaultConfig()
	cfg.HiddenLayers = []int{16}
	cfg.Dropout = 0
	cfg.LearningRate = 0.05
	cfg.Epochs = 400
	cfg.BatchSize = 2
	cfg.Seed = 7
	return cfg
}

func createTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(testCatalog), catalog.Strict, logger.NewNoOpLogger())
	require.NoError(t, err)
	return c
}

// networkComparer compares layer weights by value.
var networkComparer = cmp.Options{
	cmp.Comparer(func(a, b *mat.Dense) bool { return mat.Equal(a, b) }),
	cmp.Comparer(func(a, b *mat.VecDense) bool { return mat.Equal(a, b) }),
}

func createTestTrainer(t *testing.T, cfg Config) *Trainer {
	return NewTrainer(cfg, normalize.New(nil), logger.NewTestLogger(t))
}

// ==========================
// Training Tests
// ==========================

func TestTrainer_RoundTripOnTrainingPatterns(t *testing.T) {
	cat := createTestCatalog(t)
	model, report, err := createTestTrainer(t, createTestConfig()).Train(context.Background(), cat)
	require.NoError(t, err)

	assert.Equal(t, []string{"careers", "exams", "greeting", "research"}, model.Labels)
	assert.Equal(t, 8, report.Documents)
	assert.Equal(t, 4, report.Labels)
	assert.Less(t, report.FinalLoss, 0.2)

	c := classify.New(model, normalize.New(nil), classify.DefaultThreshold, logger.NewNoOpLogger())
	for _, intent := range cat.Intents() {
		for _, pattern := range intent.Patterns {
			results, err := c.Classify(context.Background(), pattern)
			require.NoError(t, err)
			assert.Equal(t, intent.Tag, results[0].Intent, "pattern %q", pattern)
		}
	}
}

func TestTrainer_Deterministic(t *testing.T) {
	cat := createTestCatalog(t)
	cfg := createTestConfig()
	cfg.Epochs = 5
	cfg.Dropout = 0.5

	m1, _, err := createTestTrainer(t, cfg).Train(context.Background(), cat)
	require.NoError(t, err)
	m2, _, err := createTestTrainer(t, cfg).Train(context.Background(), cat)
	require.NoError(t, err)

	if diff := cmp.Diff(m1.Network, m2.Network, networkComparer); diff != "" {
		t.Errorf("same seed produced different networks (-first +second):\n%s", diff)
	}
}

func TestTrainer_VocabularySkipsPunctuation(t *testing.T) {
	cat := createTestCatalog(t)
	cfg := createTestConfig()
	cfg.Epochs = 1

	model, report, err := createTestTrainer(t, cfg).Train(context.Background(), cat)
	require.NoError(t, err)

	assert.NotContains(t, model.Words, "!")
	assert.NotContains(t, model.Words, "?")
	assert.Contains(t, model.Words, "hello")
	assert.IsIncreasing(t, model.Words)
	assert.Equal(t, len(model.Words), report.Vocabulary)
}

func TestTrainer_SavedModelLoads(t *testing.T) {
	cfg := createTestConfig()
	cfg.Epochs = 3

	model, _, err := createTestTrainer(t, cfg).Train(context.Background(), createTestCatalog(t))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, model.Save(dir))

	loaded, err := classify.LoadModel(dir)
	require.NoError(t, err)
	assert.Equal(t, model.Vectorizer.Terms(), loaded.Vectorizer.Terms())
	assert.Equal(t, model.Labels, loaded.Labels)
	if diff := cmp.Diff(model.Network, loaded.Network, networkComparer); diff != "" {
		t.Errorf("network changed across save/load (-saved +loaded):\n%s", diff)
	}
}

// ==========================
// Error Tests
// ==========================

func TestTrainer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := createTestTrainer(t, createTestConfig()).Train(ctx, createTestCatalog(t))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTrainingFailed, apperrors.CodeOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTrainer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero epochs", func(c *Config) { c.Epochs = 0 }},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }},
		{"dropout one", func(c *Config) { c.Dropout = 1 }},
		{"negative layer", func(c *Config) { c.HiddenLayers = []int{-1} }},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			tt.mutate(&cfg)
			_, _, err := createTestTrainer(t, cfg).Train(context.Background(), createTestCatalog(t))
			assert.Error(t, err)
		})
	}
}

func TestTrainer_StopWordOnlyCatalog(t *testing.T) {
	cat, err := catalog.Parse([]byte(`[{"tag":"x","patterns":["my name is"],"responses":["r"]}]`),
		catalog.Strict, logger.NewNoOpLogger())
	require.NoError(t, err)

	_, _, err = createTestTrainer(t, createTestConfig()).Train(context.Background(), cat)
	assert.Error(t, err)
}
