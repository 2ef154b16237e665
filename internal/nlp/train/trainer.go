// Package train fits the vectorizer and intent network from a catalog.
package train

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	apperrors "careerbot/internal/common/errors"
	"careerbot/internal/common/logger"
	"careerbot/internal/nlp/classify"
	"careerbot/internal/nlp/normalize"
	"careerbot/internal/nlp/vectorize"
	"careerbot/pkg/catalog"
)

// ignoredTokens never enter the vocabulary list.
var ignoredTokens = map[string]bool{"?": true, "!": true, ".": true, ",": true}

// Config holds the training hyperparameters.
type Config struct {
	MaxFeatures  int
	HiddenLayers []int
	Dropout      float64
	LearningRate float64
	Decay        float64
	Momentum     float64
	Nesterov     bool
	Epochs       int
	BatchSize    int
	Seed         int64
}

// DefaultConfig mirrors the settings the bundled model is trained with.
func DefaultConfig() Config {
	return Config{
		MaxFeatures:  vectorize.DefaultMaxFeatures,
		HiddenLayers: []int{128, 64},
		Dropout:      0.5,
		LearningRate: 0.01,
		Decay:        1e-6,
		Momentum:     0.9,
		Nesterov:     true,
		Epochs:       200,
		BatchSize:    5,
		Seed:         42,
	}
}

// TokenNormalizer yields the lemmatized tokens of a pattern.
type TokenNormalizer interface {
	Normalize(text string) []string
}

// Report summarizes a training run.
type Report struct {
	Documents     int           `json:"documents"`
	Vocabulary    int           `json:"vocabulary"`
	Features      int           `json:"features"`
	Labels        int           `json:"labels"`
	Epochs        int           `json:"epochs"`
	FinalLoss     float64       `json:"finalLoss"`
	FinalAccuracy float64       `json:"finalAccuracy"`
	Duration      time.Duration `json:"duration"`
}

type Trainer struct {
	config     Config
	normalizer TokenNormalizer
	logger     logger.Logger
}

func NewTrainer(config Config, normalizer TokenNormalizer, log logger.Logger) *Trainer {
	return &Trainer{
		config:     config,
		normalizer: normalizer,
		logger:     logger.Component(log, "trainer"),
	}
}

type document struct {
	text  string
	label int
}

// Train builds a model from every pattern in cat. The context is checked between epochs.
func (t *Trainer) Train(ctx context.Context, cat *catalog.Catalog) (*classify.Model, *Report, error) {
	if err := t.validateConfig(); err != nil {
		return nil, nil, apperrors.NewTrainingFailedError("invalid configuration", err)
	}
	start := time.Now()

	words, labels, docs := t.prepare(cat)
	if len(docs) == 0 {
		return nil, nil, apperrors.NewTrainingFailedError("catalog has no patterns", nil)
	}

	vec := vectorize.New(t.config.MaxFeatures)
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.text
	}
	if err := vec.Fit(texts); err != nil {
		return nil, nil, apperrors.NewTrainingFailedError("fit vectorizer", err)
	}

	xs := make([][]float64, len(docs))
	ys := make([][]float64, len(docs))
	for i, d := range docs {
		xs[i] = vec.Transform(d.text)
		ys[i] = make([]float64, len(labels))
		ys[i][d.label] = 1
	}

	rng := rand.New(rand.NewSource(t.config.Seed))
	net := newNetwork(rng, vec.Dim(), t.config.HiddenLayers, len(labels))
	opt := newSGD(net, t.config)
	grads := newGradients(net)

	t.logger.Info("training started", map[string]interface{}{
		"documents": len(docs),
		"features":  vec.Dim(),
		"labels":    len(labels),
		"epochs":    t.config.Epochs,
	})

	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}

	var loss, accuracy float64
	for epoch := 1; epoch <= t.config.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, apperrors.NewTrainingFailedError(fmt.Sprintf("cancelled at epoch %d", epoch), err)
		}

		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var sumLoss float64
		var correct int
		for b := 0; b < len(order); b += t.config.BatchSize {
			end := b + t.config.BatchSize
			if end > len(order) {
				end = len(order)
			}
			grads.zero()
			for _, idx := range order[b:end] {
				l, ok := backprop(net, grads, rng, t.config.Dropout, xs[idx], ys[idx])
				sumLoss += l
				if ok {
					correct++
				}
			}
			opt.step(net, grads, end-b)
		}

		loss = sumLoss / float64(len(docs))
		accuracy = float64(correct) / float64(len(docs))
		t.logger.Debug("epoch finished", map[string]interface{}{
			"epoch":    epoch,
			"loss":     loss,
			"accuracy": accuracy,
		})
	}

	model := &classify.Model{
		Words:      words,
		Labels:     labels,
		Vectorizer: vec,
		Network:    net,
	}
	if err := model.Validate(); err != nil {
		return nil, nil, apperrors.NewTrainingFailedError("trained model is inconsistent", err)
	}

	report := &Report{
		Documents:     len(docs),
		Vocabulary:    len(words),
		Features:      vec.Dim(),
		Labels:        len(labels),
		Epochs:        t.config.Epochs,
		FinalLoss:     loss,
		FinalAccuracy: accuracy,
		Duration:      time.Since(start),
	}
	t.logger.Info("training finished", map[string]interface{}{
		"loss":     loss,
		"accuracy": accuracy,
		"duration": report.Duration.String(),
	})
	return model, report, nil
}

// prepare derives the sorted vocabulary, sorted labels and one document per pattern.
func (t *Trainer) prepare(cat *catalog.Catalog) ([]string, []string, []document) {
	wordSet := make(map[string]struct{})
	labelSet := make(map[string]struct{})
	type raw struct {
		text string
		tag  string
	}
	var raws []raw

	for _, intent := range cat.Intents() {
		for _, pattern := range intent.Patterns {
			tokens := t.normalizer.Normalize(pattern)
			for _, tok := range tokens {
				if !ignoredTokens[tok] {
					wordSet[tok] = struct{}{}
				}
			}
			raws = append(raws, raw{text: normalize.Join(tokens), tag: intent.Tag})
			labelSet[intent.Tag] = struct{}{}
		}
	}

	words := sortedKeys(wordSet)
	labels := sortedKeys(labelSet)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	docs := make([]document, len(raws))
	for i, r := range raws {
		docs[i] = document{text: r.text, label: index[r.tag]}
	}
	return words, labels, docs
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (t *Trainer) validateConfig() error {
	c := t.config
	switch {
	case c.Epochs < 1:
		return fmt.Errorf("epochs must be positive")
	case c.BatchSize < 1:
		return fmt.Errorf("batch size must be positive")
	case c.LearningRate <= 0:
		return fmt.Errorf("learning rate must be positive")
	case c.Dropout < 0 || c.Dropout >= 1:
		return fmt.Errorf("dropout must be in [0, 1)")
	case c.Momentum < 0 || c.Momentum >= 1:
		return fmt.Errorf("momentum must be in [0, 1)")
	}
	for _, units := range c.HiddenLayers {
		if units < 1 {
			return fmt.Errorf("hidden layer sizes must be positive")
		}
	}
	return nil
}
