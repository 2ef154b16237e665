package train

import (
	"math"
	"math/rand"

	"careerbot/internal/nlp/classify"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// newNetwork builds input -> hidden... -> softmax(outputs) with Glorot-uniform weights and zero biases.
func newNetwork(rng *rand.Rand, inputs int, hidden []int, outputs int) *classify.Network {
	sizes := append([]int{inputs}, hidden...)
	sizes = append(sizes, outputs)

	net := &classify.Network{}
	for l := 1; l < len(sizes); l++ {
		fanIn, fanOut := sizes[l-1], sizes[l]
		limit := math.Sqrt(6 / float64(fanIn+fanOut))

		weights := make([]float64, fanOut*fanIn)
		for i := range weights {
			weights[i] = (rng.Float64()*2 - 1) * limit
		}

		act := classify.ActivationReLU
		if l == len(sizes)-1 {
			act = classify.ActivationSoftmax
		}
		net.Layers = append(net.Layers, &classify.Dense{
			Weights:    mat.NewDense(fanOut, fanIn, weights),
			Bias:       mat.NewVecDense(fanOut, nil),
			Activation: act,
		})
	}
	return net
}

// gradients mirrors the shape of a network.
type gradients struct {
	w []*mat.Dense
	b []*mat.VecDense
}

func newGradients(net *classify.Network) *gradients {
	g := &gradients{
		w: make([]*mat.Dense, len(net.Layers)),
		b: make([]*mat.VecDense, len(net.Layers)),
	}
	for l, layer := range net.Layers {
		g.w[l] = mat.NewDense(layer.Out(), layer.In(), nil)
		g.b[l] = mat.NewVecDense(layer.Out(), nil)
	}
	return g
}

func (g *gradients) zero() {
	for l := range g.w {
		g.w[l].Zero()
		g.b[l].Zero()
	}
}

// backprop accumulates the categorical cross-entropy gradient of one sample into g
// and returns the sample loss and whether the arg-max matched the target.
// Hidden activations are dropped with probability rate using inverted dropout.
func backprop(net *classify.Network, g *gradients, rng *rand.Rand, rate float64, x, y []float64) (float64, bool) {
	n := len(net.Layers)
	// activations[l] is the input to layer l; activations[n] is the output
	activations := make([]*mat.VecDense, n+1)
	// derivs[l] is d(activation)/d(preactivation) of hidden layer l, dropout included
	derivs := make([]*mat.VecDense, n)
	activations[0] = mat.NewVecDense(len(x), x)

	for l, layer := range net.Layers {
		z := layer.Linear(activations[l].RawVector().Data)
		if l < n-1 {
			deriv := make([]float64, len(z))
			keep := 1 - rate
			for i, v := range z {
				m := 1.0
				if rate > 0 {
					m = 0
					if rng.Float64() < keep {
						m = 1 / keep
					}
				}
				if v > 0 {
					deriv[i] = m
				}
			}
			derivs[l] = mat.NewVecDense(len(deriv), deriv)
			a := mat.NewVecDense(len(z), layer.Activate(z))
			a.MulElemVec(a, derivs[l])
			activations[l+1] = a
			continue
		}
		activations[l+1] = mat.NewVecDense(len(z), layer.Activate(z))
	}

	out := activations[n].RawVector().Data
	var loss float64
	for i, target := range y {
		if target > 0 {
			loss -= target * math.Log(math.Max(out[i], 1e-7))
		}
	}
	correct := floats.MaxIdx(out) == floats.MaxIdx(y)

	// softmax with cross-entropy: dL/dz = p - y
	delta := mat.NewVecDense(len(out), nil)
	delta.SubVec(activations[n], mat.NewVecDense(len(y), y))

	for l := n - 1; l >= 0; l-- {
		g.w[l].RankOne(g.w[l], 1, delta, activations[l])
		g.b[l].AddVec(g.b[l], delta)
		if l == 0 {
			break
		}

		prev := mat.NewVecDense(net.Layers[l].In(), nil)
		prev.MulVec(net.Layers[l].Weights.T(), delta)
		// through dropout and relu of layer l-1
		prev.MulElemVec(prev, derivs[l-1])
		delta = prev
	}

	return loss, correct
}

// sgd is stochastic gradient descent with optional (Nesterov) momentum and
// time-based learning-rate decay.
type sgd struct {
	lr         float64
	decay      float64
	momentum   float64
	nesterov   bool
	iterations int
	velocity   *gradients
}

func newSGD(net *classify.Network, cfg Config) *sgd {
	return &sgd{
		lr:       cfg.LearningRate,
		decay:    cfg.Decay,
		momentum: cfg.Momentum,
		nesterov: cfg.Nesterov,
		velocity: newGradients(net),
	}
}

// step applies the averaged batch gradient g (summed over size samples).
func (s *sgd) step(net *classify.Network, g *gradients, size int) {
	lr := s.lr / (1 + s.decay*float64(s.iterations))
	s.iterations++
	rate := lr / float64(size)

	for l, layer := range net.Layers {
		s.update(layer.Weights.RawMatrix().Data, s.velocity.w[l].RawMatrix().Data, g.w[l].RawMatrix().Data, rate)
		s.update(layer.Bias.RawVector().Data, s.velocity.b[l].RawVector().Data, g.b[l].RawVector().Data, rate)
	}
}

// update applies v = momentum*v - rate*grad, then param += v, or the Nesterov
// look-ahead param += momentum*v - rate*grad.
func (s *sgd) update(param, velocity, grad []float64, rate float64) {
	floats.Scale(s.momentum, velocity)
	floats.AddScaled(velocity, -rate, grad)
	if s.nesterov {
		floats.AddScaled(param, s.momentum, velocity)
		floats.AddScaled(param, -rate, grad)
		return
	}
	floats.Add(param, velocity)
}
