package classify

import (
	"encoding/json"
	"fmt"
	"math"

	apperrors "careerbot/internal/common/errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Activation names supported by Dense layers.
const (
	ActivationReLU    = "relu"
	ActivationSoftmax = "softmax"
	ActivationLinear  = "linear"
)

// Dense is a fully connected layer. Weights is Out x In.
type Dense struct {
	Weights    *mat.Dense
	Bias       *mat.VecDense
	Activation string
}

// denseJSON is the artifact form of a layer: weights as [output][input] rows.
type denseJSON struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// NewDense builds a layer from [output][input] weight rows.
func NewDense(weights [][]float64, bias []float64, activation string) (*Dense, error) {
	if len(weights) == 0 || len(weights[0]) == 0 {
		return nil, fmt.Errorf("layer has no weights")
	}
	in := len(weights[0])
	data := make([]float64, 0, len(weights)*in)
	for o, row := range weights {
		if len(row) != in {
			return nil, fmt.Errorf("unit %d has %d weights, expected %d", o, len(row), in)
		}
		data = append(data, row...)
	}
	if len(bias) != len(weights) {
		return nil, fmt.Errorf("layer has %d units but %d biases", len(weights), len(bias))
	}
	return &Dense{
		Weights:    mat.NewDense(len(weights), in, data),
		Bias:       mat.NewVecDense(len(bias), append([]float64(nil), bias...)),
		Activation: activation,
	}, nil
}

func (d *Dense) MarshalJSON() ([]byte, error) {
	out := denseJSON{Activation: d.Activation}
	if d.Weights != nil {
		rows, cols := d.Weights.Dims()
		out.Weights = make([][]float64, rows)
		for o := range out.Weights {
			out.Weights[o] = mat.Row(make([]float64, cols), o, d.Weights)
		}
	}
	if d.Bias != nil {
		out.Bias = mat.Col(nil, 0, d.Bias)
	}
	return json.Marshal(out)
}

func (d *Dense) UnmarshalJSON(data []byte) error {
	var raw denseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	layer, err := NewDense(raw.Weights, raw.Bias, raw.Activation)
	if err != nil {
		return err
	}
	*d = *layer
	return nil
}

// In is the number of inputs the layer accepts.
func (d *Dense) In() int {
	if d.Weights == nil {
		return 0
	}
	_, c := d.Weights.Dims()
	return c
}

// Out is the number of units in the layer.
func (d *Dense) Out() int {
	if d.Weights == nil {
		return 0
	}
	r, _ := d.Weights.Dims()
	return r
}

// Linear computes Wx+b without the activation.
func (d *Dense) Linear(x []float64) []float64 {
	z := mat.NewVecDense(d.Out(), nil)
	z.MulVec(d.Weights, mat.NewVecDense(len(x), x))
	z.AddVec(z, d.Bias)
	return z.RawVector().Data
}

// Activate applies the layer activation to z in place and returns it.
func (d *Dense) Activate(z []float64) []float64 {
	switch d.Activation {
	case ActivationReLU:
		for i, v := range z {
			if v < 0 {
				z[i] = 0
			}
		}
	case ActivationSoftmax:
		Softmax(z)
	}
	return z
}

// Softmax normalizes z into a probability distribution in place.
func Softmax(z []float64) {
	if len(z) == 0 {
		return
	}
	floats.AddConst(-floats.Max(z), z)
	for i, v := range z {
		z[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(z), z)
}

// Network is a feed-forward stack of Dense layers. Dropout only exists at training time.
type Network struct {
	Layers []*Dense `json:"layers"`
}

// InputDim is the feature dimension the network expects.
func (n *Network) InputDim() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[0].In()
}

// OutputDim is the number of labels scored.
func (n *Network) OutputDim() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[len(n.Layers)-1].Out()
}

// Validate checks that consecutive layer shapes line up.
func (n *Network) Validate() error {
	if len(n.Layers) == 0 {
		return fmt.Errorf("network has no layers")
	}
	for i, layer := range n.Layers {
		if layer == nil || layer.Out() == 0 {
			return fmt.Errorf("layer %d has no units", i)
		}
		if layer.Bias == nil || layer.Bias.Len() != layer.Out() {
			return fmt.Errorf("layer %d has %d units but a mismatched bias", i, layer.Out())
		}
		if i > 0 && layer.In() != n.Layers[i-1].Out() {
			return fmt.Errorf("layer %d expects %d inputs but layer %d has %d units", i, layer.In(), i-1, n.Layers[i-1].Out())
		}
		switch layer.Activation {
		case ActivationReLU, ActivationSoftmax, ActivationLinear:
		default:
			return fmt.Errorf("layer %d has unknown activation %q", i, layer.Activation)
		}
	}
	return nil
}

// Predict runs a forward pass. A wrong input length is a DIMENSION_MISMATCH error.
func (n *Network) Predict(x []float64) ([]float64, error) {
	if len(x) != n.InputDim() {
		return nil, apperrors.NewDimensionMismatchError(n.InputDim(), len(x))
	}
	out := x
	for _, layer := range n.Layers {
		out = layer.Activate(layer.Linear(out))
	}
	return out, nil
}
