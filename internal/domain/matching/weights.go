package matching

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Default scoring parameters. Weights sum to 1.0.
const (
	DefaultDistanceWeight  = 0.30
	DefaultScheduleWeight  = 0.25
	DefaultSkillWeight     = 0.30
	DefaultWageWeight      = 0.15
	DefaultRadiusKm        = 30.0
	DefaultWageFloorFactor = 0.7
)

var ErrInvalidWeights = errors.New("invalid scoring weights")

type Weights struct {
	Distance float64 `yaml:"distance"`
	Schedule float64 `yaml:"schedule"`
	Skill    float64 `yaml:"skill"`
	Wage     float64 `yaml:"wage"`
}

// Params holds everything the scoring function is parameterised by.
type Params struct {
	Weights Weights `yaml:"weights"`
	// RadiusKm is the distance at which the distance factor reaches zero.
	RadiusKm float64 `yaml:"radius_km"`
	// WageFloorFactor is the fraction of the seeker's minimum wage at which
	// the wage factor reaches zero.
	WageFloorFactor float64 `yaml:"wage_floor_factor"`
}

func DefaultParams() Params {
	return Params{
		Weights: Weights{
			Distance: DefaultDistanceWeight,
			Schedule: DefaultScheduleWeight,
			Skill:    DefaultSkillWeight,
			Wage:     DefaultWageWeight,
		},
		RadiusKm:        DefaultRadiusKm,
		WageFloorFactor: DefaultWageFloorFactor,
	}
}

// Normalized validates p and rescales the weights so they sum to 1.0.
func (p Params) Normalized() (Params, error) {
	w := p.Weights
	for _, v := range []float64{w.Distance, w.Schedule, w.Skill, w.Wage} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Params{}, fmt.Errorf("%w: negative or non-finite weight", ErrInvalidWeights)
		}
	}
	sum := w.Distance + w.Schedule + w.Skill + w.Wage
	if sum <= 0 {
		return Params{}, fmt.Errorf("%w: weights sum to zero", ErrInvalidWeights)
	}
	if p.RadiusKm <= 0 {
		return Params{}, fmt.Errorf("%w: radius_km must be positive", ErrInvalidWeights)
	}
	if p.WageFloorFactor < 0 || p.WageFloorFactor >= 1 {
		return Params{}, fmt.Errorf("%w: wage_floor_factor must be in [0,1)", ErrInvalidWeights)
	}

	p.Weights = Weights{
		Distance: w.Distance / sum,
		Schedule: w.Schedule / sum,
		Skill:    w.Skill / sum,
		Wage:     w.Wage / sum,
	}
	return p, nil
}

// LoadParams reads scoring parameters from a YAML file. Keys missing from the
// file keep their defaults.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Params{}, err
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Params{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return p.Normalized()
}
