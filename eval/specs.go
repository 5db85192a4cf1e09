package eval

import (
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/sartorproj/goforecast/ets"
	"github.com/sartorproj/goforecast/sarima"
	"github.com/sartorproj/goforecast/timeseries"
)

// ErrInvalidSpec indicates a candidate spec that cannot be bound to a
// provider.
var ErrInvalidSpec = errors.New("invalid candidate spec")

// OrderSpec mirrors a SARIMA order in configuration.
type OrderSpec struct {
	P  int `yaml:"p"`
	D  int `yaml:"d"`
	Q  int `yaml:"q"`
	SP int `yaml:"sp"`
	SD int `yaml:"sd"`
	SQ int `yaml:"sq"`
	M  int `yaml:"m"`
}

// Spec is one named candidate read from configuration. Type selects the
// provider: "sarima" uses Order, "ets" uses Trend/Season/Period.
type Spec struct {
	Name   string    `yaml:"name"`
	Type   string    `yaml:"type"`
	Order  OrderSpec `yaml:"order"`
	Trend  string    `yaml:"trend"`
	Season string    `yaml:"season"`
	Period int       `yaml:"period"`
}

// LoadSpecs reads a YAML list of candidate specs from path.
func LoadSpecs(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidate file: %w", err)
	}
	return ParseSpecs(data)
}

// ParseSpecs decodes a YAML list of candidate specs.
func ParseSpecs(data []byte) ([]Spec, error) {
	var specs []Spec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse candidate file: %w", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no candidates defined", ErrInvalidSpec)
	}
	for i := range specs {
		if specs[i].Name == "" {
			return nil, fmt.Errorf("%w: candidate %d has no name", ErrInvalidSpec, i+1)
		}
	}
	return specs, nil
}

// Candidate binds the spec to its provider. The returned candidate fits a
// fresh model per call, so one candidate can be evaluated on several series.
func (s Spec) Candidate() (Candidate, error) {
	switch s.Type {
	case "sarima":
		o := s.Order
		return SARIMACandidate(s.Name, o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M), nil
	case "ets":
		spec := ets.Spec{
			Trend:  etsComponent(s.Trend),
			Season: etsComponent(s.Season),
			Period: s.Period,
		}
		if err := spec.Validate(); err != nil {
			return Candidate{}, fmt.Errorf("%w: %s: %v", ErrInvalidSpec, s.Name, err)
		}
		return ETSCandidate(s.Name, spec), nil
	default:
		return Candidate{}, fmt.Errorf("%w: %s has unknown type %q", ErrInvalidSpec, s.Name, s.Type)
	}
}

// Candidates binds a whole spec list, failing on the first invalid entry.
func Candidates(specs []Spec) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(specs))
	for _, s := range specs {
		c, err := s.Candidate()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// SARIMACandidate builds a candidate backed by the sarima provider.
func SARIMACandidate(name string, p, d, q, sp, sd, sq, m int) Candidate {
	return Candidate{
		Name: name,
		Fit: func(series *timeseries.Series) (Model, error) {
			model := sarima.New(p, d, q, sp, sd, sq, m)
			if err := model.Fit(series); err != nil {
				return nil, err
			}
			return model, nil
		},
	}
}

// ETSCandidate builds a candidate backed by the ets provider.
func ETSCandidate(name string, spec ets.Spec) Candidate {
	return Candidate{
		Name: name,
		Fit: func(series *timeseries.Series) (Model, error) {
			model := ets.New(spec)
			if err := model.Fit(series); err != nil {
				return nil, err
			}
			return model, nil
		},
	}
}

// An empty component in configuration means none.
func etsComponent(v string) ets.Component {
	if v == "" {
		return ets.None
	}
	return ets.Component(v)
}
