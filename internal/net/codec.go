package net

import (
	"encoding/json"
	"io"
	"os"

	"github.com/FlavioCFOliveira/ffnet/internal/activations"
	"github.com/FlavioCFOliveira/ffnet/internal/layer"
	"github.com/pkg/errors"
)

// NetworkType is the type tag of a persisted network.
const NetworkType = "Network"

var (
	// ErrUnknownActivation is returned when a persisted network names an
	// activation missing from the catalog.
	ErrUnknownActivation = errors.New("unknown activation")

	// ErrMalformedModel is returned when a persisted network is
	// structurally invalid.
	ErrMalformedModel = errors.New("malformed model")
)

// Model is the persisted form of a network. It carries parameters only;
// optimizer state is never part of it.
type Model struct {
	Type       string         `json:"type"`
	Activation activations.ID `json:"activation"`
	Layers     []LayerConfig  `json:"layers"`
}

// LayerConfig holds what is needed to reconstruct a layer.
type LayerConfig struct {
	Type string `json:"type"`
	Size int    `json:"size"`

	// Activation is set only when the layer overrides the network activation.
	Activation activations.ID `json:"activation,omitempty"`
	Neurons    []NeuronConfig `json:"neurons,omitempty"`
}

// NeuronConfig holds a neuron's parameters.
type NeuronConfig struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Model extracts the persisted form of the network.
func (n *Network) Model() Model {
	m := Model{
		Type:       NetworkType,
		Activation: n.act.ID,
		Layers:     make([]LayerConfig, len(n.layers)),
	}
	for i, l := range n.layers {
		cfg := LayerConfig{Type: l.Kind(), Size: l.Size()}
		if fc, ok := l.(*layer.FullyConnected); ok {
			if fc.Activation().ID != n.act.ID {
				cfg.Activation = fc.Activation().ID
			}
			cfg.Neurons = make([]NeuronConfig, fc.Size())
			for j, nr := range fc.Neurons() {
				cfg.Neurons[j] = NeuronConfig{
					Weights: append([]float64(nil), nr.Weights()...),
					Bias:    nr.Bias(),
				}
			}
		}
		m.Layers[i] = cfg
	}
	return m
}

// FromModel reconstructs a network from its persisted form.
func FromModel(m Model) (*Network, error) {
	if m.Type != NetworkType {
		return nil, errors.Wrapf(ErrMalformedModel, "type %q, want %q", m.Type, NetworkType)
	}
	act, ok := activations.Lookup(m.Activation)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownActivation, "network activation %q", m.Activation)
	}
	if len(m.Layers) == 0 {
		return nil, errors.Wrap(ErrMalformedModel, "no layers")
	}

	for i, cfg := range m.Layers {
		if cfg.Size <= 0 {
			return nil, errors.Wrapf(ErrMalformedModel, "layer %d: size %d", i, cfg.Size)
		}
	}

	layers := make([]layer.Layer, len(m.Layers))
	for i, cfg := range m.Layers {
		switch cfg.Type {
		case layer.InputKind:
			layers[i] = layer.NewInput(cfg.Size)
		case layer.FullyConnectedKind:
			l, err := fullyConnectedFromConfig(i, cfg, act, m.Layers)
			if err != nil {
				return nil, err
			}
			layers[i] = l
		default:
			return nil, errors.Wrapf(ErrMalformedModel, "layer %d: unsupported layer type %q", i, cfg.Type)
		}
	}

	n, err := New(act, layers...)
	if err != nil {
		return nil, errors.Wrap(err, "rebuild network")
	}
	return n, nil
}

func fullyConnectedFromConfig(i int, cfg LayerConfig, act activations.Activation, all []LayerConfig) (*layer.FullyConnected, error) {
	if i == 0 {
		return nil, errors.Wrapf(ErrMalformedModel, "layer 0 must be %s", layer.InputKind)
	}
	if cfg.Activation != "" {
		a, ok := activations.Lookup(cfg.Activation)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownActivation, "layer %d activation %q", i, cfg.Activation)
		}
		act = a
	}
	if len(cfg.Neurons) != cfg.Size {
		return nil, errors.Wrapf(ErrMalformedModel, "layer %d: size %d but %d neurons", i, cfg.Size, len(cfg.Neurons))
	}

	inputSize := all[i-1].Size
	l := layer.NewFullyConnected(inputSize, cfg.Size, act)
	for j, nc := range cfg.Neurons {
		if len(nc.Weights) != inputSize {
			return nil, errors.Wrapf(ErrMalformedModel, "layer %d neuron %d: %d weights, want %d", i, j, len(nc.Weights), inputSize)
		}
		nr := l.Neurons()[j]
		copy(nr.Weights(), nc.Weights)
		nr.SetBias(nc.Bias)
	}
	return l, nil
}

// MarshalJSON encodes the network's persisted form.
func (n *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Model())
}

// UnmarshalJSON replaces n with the network described by data.
func (n *Network) UnmarshalJSON(data []byte) error {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.Wrap(err, "decode model")
	}
	decoded, err := FromModel(m)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

// Encode writes the network to w as JSON.
func (n *Network) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(n.Model()); err != nil {
		return errors.Wrap(err, "encode model")
	}
	return nil
}

// Decode reads a network from r.
func Decode(r io.Reader) (*Network, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decode model")
	}
	return FromModel(m)
}

// Save writes the network to a file.
func (n *Network) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	if err := n.Encode(file); err != nil {
		return err
	}
	return file.Close()
}

// Load reads a network from a file written by Save.
func Load(filename string) (*Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return Decode(file)
}
