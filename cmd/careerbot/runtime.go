package main

import (
	"context"
	"fmt"
	"time"

	"careerbot/internal/common/config"
	"careerbot/internal/common/database"
	"careerbot/internal/common/logger"
	"careerbot/internal/common/observability"
	"careerbot/internal/dialogue/resolve"
	"careerbot/internal/dialogue/statemachine"
	"careerbot/internal/nlp/classify"
	"careerbot/internal/nlp/normalize"
	"careerbot/internal/session"
	"careerbot/pkg/catalog"
)

// runtime holds the wired components shared by serve and chat.
type runtime struct {
	catalog *catalog.Catalog
	machine *statemachine.Machine
	service *session.Service
	redis   *database.RedisClient
	memory  *session.MemoryStore
}

// buildRuntime loads the catalog and model, then wires the dialogue and session
// store. Catalog or artifact failures are fatal to the caller.
func buildRuntime(ctx context.Context, cfg *config.Config, log logger.Logger, obs *observability.Observability) (*runtime, error) {
	cat, err := catalog.Load(cfg.Model.CatalogPath, catalog.Lenient, log)
	if err != nil {
		return nil, err
	}

	model, err := classify.LoadModel(cfg.Model.ArtifactDir)
	if err != nil {
		return nil, err
	}

	normalizer, err := normalize.NewEnglish()
	if err != nil {
		return nil, fmt.Errorf("lemmatizer init failed: %w", err)
	}

	classifier := classify.New(model, normalizer, cfg.Model.ConfidenceThreshold, log)
	resolver := resolve.New(cat, nil)
	machine := statemachine.New(classifier, resolver, log)

	rt := &runtime{catalog: cat, machine: machine}

	var store session.Store
	switch cfg.Session.Backend {
	case config.BackendRedis:
		rt.redis = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rt.redis.Ping(ctx)
		}, 5, time.Second, log, "Redis connection")
		if err != nil {
			_ = rt.redis.Close()
			return nil, err
		}
		store = session.NewRedisStore(rt.redis.GetClient(), cfg.Session.KeyPrefix, cfg.SessionTTL())
	default:
		rt.memory = session.NewMemoryStore(cfg.SessionTTL())
		store = rt.memory
	}

	rt.service = session.NewService(store, machine, log,
		session.WithHistoryLimit(cfg.Session.HistoryLimit),
		session.WithObservability(obs),
	)

	log.Info("runtime ready", map[string]interface{}{
		"intents":   cat.Len(),
		"labels":    len(classifier.Labels()),
		"features":  model.Vectorizer.Dim(),
		"backend":   store.Backend(),
		"threshold": cfg.Model.ConfidenceThreshold,
	})
	return rt, nil
}

func (r *runtime) Close() error {
	if r.redis != nil {
		return r.redis.Close()
	}
	return nil
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
