package train

import (
	"math"
	"math/rand"
	"testing"

	"careerbot/internal/nlp/classify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func crossEntropy(t *testing.T, net *classify.Network, x, y []float64) float64 {
	t.Helper()
	out, err := net.Predict(x)
	require.NoError(t, err)
	var loss float64
	for i := range y {
		if y[i] > 0 {
			loss -= y[i] * math.Log(math.Max(out[i], 1e-7))
		}
	}
	return loss
}

func TestBackprop_MatchesNumericGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	net := newNetwork(rng, 3, []int{4}, 2)
	require.NoError(t, net.Validate())

	x := []float64{0.5, -0.2, 0.9}
	y := []float64{0, 1}

	g := newGradients(net)
	loss, _ := backprop(net, g, rng, 0, x, y)
	assert.InDelta(t, crossEntropy(t, net, x, y), loss, 1e-12)

	const eps = 1e-6
	for l, layer := range net.Layers {
		rows, cols := layer.Weights.Dims()
		for o := 0; o < rows; o++ {
			for i := 0; i < cols; i++ {
				w := layer.Weights.At(o, i)
				layer.Weights.Set(o, i, w+eps)
				up := crossEntropy(t, net, x, y)
				layer.Weights.Set(o, i, w-eps)
				down := crossEntropy(t, net, x, y)
				layer.Weights.Set(o, i, w)

				assert.InDelta(t, (up-down)/(2*eps), g.w[l].At(o, i), 1e-5, "layer %d weight %d,%d", l, o, i)
			}
		}
		for o := 0; o < rows; o++ {
			b := layer.Bias.AtVec(o)
			layer.Bias.SetVec(o, b+eps)
			up := crossEntropy(t, net, x, y)
			layer.Bias.SetVec(o, b-eps)
			down := crossEntropy(t, net, x, y)
			layer.Bias.SetVec(o, b)

			assert.InDelta(t, (up-down)/(2*eps), g.b[l].AtVec(o), 1e-5, "layer %d bias %d", l, o)
		}
	}
}

func TestBackprop_AccumulatesAndZeroes(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	net := newNetwork(rng, 3, []int{4}, 2)
	x, y := []float64{1, 0, 1}, []float64{1, 0}

	once := newGradients(net)
	backprop(net, once, rng, 0, x, y)

	twice := newGradients(net)
	backprop(net, twice, rng, 0, x, y)
	backprop(net, twice, rng, 0, x, y)

	var doubled mat.Dense
	doubled.Scale(2, once.w[1])
	assert.True(t, mat.EqualApprox(&doubled, twice.w[1], 1e-12))

	twice.zero()
	assert.Zero(t, mat.Norm(twice.w[0], 1))
	assert.Zero(t, mat.Norm(twice.b[1], 1))
}

func TestSGD_Step(t *testing.T) {
	net := &classify.Network{Layers: []*classify.Dense{{
		Weights:    mat.NewDense(1, 2, []float64{1, 1}),
		Bias:       mat.NewVecDense(1, []float64{0}),
		Activation: classify.ActivationSoftmax,
	}}}
	g := newGradients(net)
	g.w[0].Copy(mat.NewDense(1, 2, []float64{2, 4}))
	g.b[0].SetVec(0, 2)

	plain := newSGD(net, Config{LearningRate: 0.1})
	plain.step(net, g, 2)
	assert.True(t, floats.EqualApprox([]float64{0.9, 0.8}, net.Layers[0].Weights.RawMatrix().Data, 1e-12))
	assert.InDelta(t, -0.1, net.Layers[0].Bias.AtVec(0), 1e-12)

	momentum := newSGD(net, Config{LearningRate: 0.1, Momentum: 0.5, Nesterov: true})
	momentum.step(net, g, 2)
	// v = -0.1*[1,2]; w += 0.5*v - 0.1*[1,2]
	assert.True(t, floats.EqualApprox([]float64{0.75, 0.5}, net.Layers[0].Weights.RawMatrix().Data, 1e-12))
}
