package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "careerbot/internal/common/errors"
	"careerbot/internal/nlp/vectorize"
)

// Artifact file names inside the model directory.
const (
	WordsFile      = "words.json"
	ClassesFile    = "classes.json"
	VectorizerFile = "vectorizer.json"
	NetworkFile    = "model.json"
)

// Model bundles the trained artifacts. It is built once at startup and only read afterwards.
type Model struct {
	Words      []string
	Labels     []string
	Vectorizer *vectorize.TFIDF
	Network    *Network
}

// Validate checks that the artifacts agree with each other.
func (m *Model) Validate() error {
	if m.Vectorizer == nil {
		return apperrors.NewArtifactLoadFailedError(VectorizerFile, fmt.Errorf("missing vectorizer"))
	}
	if m.Network == nil {
		return apperrors.NewArtifactLoadFailedError(NetworkFile, fmt.Errorf("missing network"))
	}
	if err := m.Network.Validate(); err != nil {
		return apperrors.NewArtifactLoadFailedError(NetworkFile, err)
	}
	if len(m.Labels) == 0 {
		return apperrors.NewArtifactLoadFailedError(ClassesFile, fmt.Errorf("no labels"))
	}
	if got, want := m.Vectorizer.Dim(), m.Network.InputDim(); got != want {
		return apperrors.NewArtifactLoadFailedError(VectorizerFile,
			fmt.Errorf("vectorizer produces %d features, network expects %d", got, want))
	}
	if got, want := len(m.Labels), m.Network.OutputDim(); got != want {
		return apperrors.NewArtifactLoadFailedError(ClassesFile,
			fmt.Errorf("%d labels but network scores %d", got, want))
	}
	return nil
}

// LoadModel reads the four artifacts from dir and validates them.
func LoadModel(dir string) (*Model, error) {
	m := &Model{
		Vectorizer: &vectorize.TFIDF{},
		Network:    &Network{},
	}

	artifacts := []struct {
		name   string
		target interface{}
	}{
		{WordsFile, &m.Words},
		{ClassesFile, &m.Labels},
		{VectorizerFile, m.Vectorizer},
		{NetworkFile, m.Network},
	}
	for _, a := range artifacts {
		if err := readJSON(filepath.Join(dir, a.name), a.target); err != nil {
			return nil, apperrors.NewArtifactLoadFailedError(a.name, err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes the four artifacts into dir, creating it if needed.
func (m *Model) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewArtifactSaveFailedError(dir, err)
	}

	artifacts := []struct {
		name  string
		value interface{}
	}{
		{WordsFile, m.Words},
		{ClassesFile, m.Labels},
		{VectorizerFile, m.Vectorizer},
		{NetworkFile, m.Network},
	}
	for _, a := range artifacts {
		if err := writeJSON(filepath.Join(dir, a.name), a.value); err != nil {
			return apperrors.NewArtifactSaveFailedError(a.name, err)
		}
	}
	return nil
}

func readJSON(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// writeJSON writes through a temp file so readers never observe a partial artifact.
func writeJSON(path string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
