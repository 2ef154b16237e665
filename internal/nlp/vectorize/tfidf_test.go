package vectorize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func l2(vec []float64) float64 {
	var s float64
	for _, x := range vec {
		s += x * x
	}
	return math.Sqrt(s)
}

func TestAnalyze(t *testing.T) {
	v := New(0)

	assert.Equal(t, []string{"career", "option", "mpc"}, v.Analyze("What career option is there for MPC ?"))
	assert.Empty(t, v.Analyze("my name is a"))
	assert.Equal(t, DefaultMaxFeatures, v.MaxFeatures)
}

func TestFit_VocabularyAndIDF(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit([]string{
		"career engineering",
		"career medicine",
		"medicine nursing",
	}))

	assert.Equal(t, []string{"career", "engineering", "medicine", "nursing"}, v.Terms())
	assert.Equal(t, 4, v.Dim())

	vec := v.Transform("career engineering")
	idfCareer := math.Log(4.0/3.0) + 1
	idfEngineering := math.Log(4.0/2.0) + 1
	norm := math.Hypot(idfCareer, idfEngineering)

	assert.InDelta(t, idfCareer/norm, vec[0], 1e-9)
	assert.InDelta(t, idfEngineering/norm, vec[1], 1e-9)
	assert.Zero(t, vec[2])
	assert.InDelta(t, 1.0, l2(vec), 1e-9)
}

func TestFit_RepeatedTermsCount(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit([]string{"exam exam date", "exam result"}))

	vec := v.Transform("exam exam date")
	assert.Greater(t, vec[1], 0.0)
	assert.InDelta(t, 1.0, l2(vec), 1e-9)
}

func TestFit_MaxFeaturesKeepsMostFrequent(t *testing.T) {
	v := New(2)
	require.NoError(t, v.Fit([]string{
		"zebra apple apple",
		"mango zebra",
		"banana",
	}))

	// apple=2 zebra=2 beat mango=1 banana=1, columns stay alphabetical
	assert.Equal(t, []string{"apple", "zebra"}, v.Terms())
}

func TestFit_EmptyVocabulary(t *testing.T) {
	v := New(0)
	err := v.Fit([]string{"my name is", "a ?"})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestTransform_NoOverlapIsZeroVector(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit([]string{"career engineering", "medicine"}))

	vec := v.Transform("completely unrelated words")
	require.Len(t, vec, v.Dim())
	for _, x := range vec {
		assert.Zero(t, x)
	}
}

func TestJSON_PreservesTransform(t *testing.T) {
	v := New(100)
	require.NoError(t, v.Fit([]string{"career engineering", "career medicine", "nursing"}))

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var loaded TFIDF
	require.NoError(t, json.Unmarshal(data, &loaded))

	assert.Equal(t, v.Transform("career nursing"), loaded.Transform("career nursing"))
	assert.Equal(t, 100, loaded.MaxFeatures)
}

func TestUnmarshal_RejectsInconsistentArtifact(t *testing.T) {
	var v TFIDF
	err := json.Unmarshal([]byte(`{"terms":["a","b"],"idf":[1.0]}`), &v)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"terms":["a","a"],"idf":[1.0,1.0]}`), &v)
	assert.Error(t, err)
}
