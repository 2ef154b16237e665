package main

import (
	"encoding/json"
	"fmt"

	"careerbot/internal/nlp/normalize"
	"careerbot/internal/nlp/train"
	"careerbot/pkg/catalog"

	"github.com/spf13/cobra"
)

var (
	trainOutput string
	trainEpochs int
	trainSeed   int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the intent model from the catalog",
	Long: `train loads the intent catalog in strict mode, fits the TF-IDF vectorizer
and the intent network, and writes the model artifacts to the artifact
directory (model.artifact_dir unless --output is set).`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVarP(&trainOutput, "output", "o", "", "Artifact directory to write")
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 0, "Override training.epochs")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "Override training.seed")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(cfg.Model.CatalogPath, catalog.Strict, log)
	if err != nil {
		log.Error("catalog load failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	normalizer, err := normalize.NewEnglish()
	if err != nil {
		return fmt.Errorf("lemmatizer init failed: %w", err)
	}

	tc := cfg.Training
	trainCfg := train.Config{
		MaxFeatures:  tc.MaxFeatures,
		HiddenLayers: tc.HiddenLayers,
		Dropout:      tc.Dropout,
		LearningRate: tc.LearningRate,
		Decay:        tc.Decay,
		Momentum:     tc.Momentum,
		Nesterov:     tc.Nesterov,
		Epochs:       tc.Epochs,
		BatchSize:    tc.BatchSize,
		Seed:         tc.Seed,
	}
	if trainEpochs > 0 {
		trainCfg.Epochs = trainEpochs
	}
	if cmd.Flags().Changed("seed") {
		trainCfg.Seed = trainSeed
	}

	model, report, err := train.NewTrainer(trainCfg, normalizer, log).Train(cmd.Context(), cat)
	if err != nil {
		log.Error("training failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	dir := cfg.Model.ArtifactDir
	if trainOutput != "" {
		dir = trainOutput
	}
	if err := model.Save(dir); err != nil {
		return err
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	log.Info("model artifacts written", map[string]interface{}{"dir": dir})
	return nil
}
