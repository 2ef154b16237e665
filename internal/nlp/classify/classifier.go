// Package classify scores utterances against the trained intent labels.
package classify

import (
	"context"
	"sort"
	"time"

	"careerbot/internal/common/logger"
	"careerbot/internal/common/metrics"
	"careerbot/internal/models"
)

// DefaultThreshold is the minimum score a label needs to be reported.
const DefaultThreshold = 0.25

// TextNormalizer produces the joined lemmatized form fed to the vectorizer.
type TextNormalizer interface {
	NormalizeString(text string) string
}

type Classifier struct {
	model      *Model
	normalizer TextNormalizer
	threshold  float64
	logger     logger.Logger
}

// New returns a Classifier over a validated model. threshold <= 0 selects DefaultThreshold.
func New(model *Model, normalizer TextNormalizer, threshold float64, log logger.Logger) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		model:      model,
		normalizer: normalizer,
		threshold:  threshold,
		logger:     logger.Component(log, "classifier"),
	}
}

// Classify returns the labels scoring strictly above the threshold, highest first.
// The result is never empty: the unknown sentinel with probability 1.0 stands in
// when nothing qualifies.
func (c *Classifier) Classify(ctx context.Context, text string) ([]models.ClassificationResult, error) {
	start := time.Now()
	defer func() { metrics.ClassifyDuration.Observe(time.Since(start).Seconds()) }()

	normalized := c.normalizer.NormalizeString(text)
	vec := c.model.Vectorizer.Transform(normalized)

	scores, err := c.model.Network.Predict(vec)
	if err != nil {
		c.logger.Error("classifier contract violation", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	results := Rank(c.model.Labels, scores, c.threshold)
	metrics.IntentPredictions.WithLabelValues(results[0].Intent).Inc()

	c.logger.Debug("classified utterance", map[string]interface{}{
		"normalized": normalized,
		"intent":     results[0].Intent,
		"score":      results[0].Probability,
		"candidates": len(results),
	})
	return results, nil
}

// Rank filters scores by threshold and sorts them descending, substituting the
// unknown sentinel for an empty result.
func Rank(labels []string, scores []float64, threshold float64) []models.ClassificationResult {
	results := make([]models.ClassificationResult, 0, len(scores))
	for i, score := range scores {
		if score > threshold && i < len(labels) {
			results = append(results, models.ClassificationResult{Intent: labels[i], Probability: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Probability > results[j].Probability
	})
	if len(results) == 0 {
		return []models.ClassificationResult{{Intent: models.UnknownIntent, Probability: 1.0}}
	}
	return results
}

// Labels returns the label set of the underlying model.
func (c *Classifier) Labels() []string {
	return c.model.Labels
}
