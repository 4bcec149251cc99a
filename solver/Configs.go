package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// AdamConfig describes a configuration of the Adam solver
type AdamConfig struct {
	StepSize float64
	Epsilon  float64 // Smoothing factor
	Beta1    float64
	Beta2    float64
	Batch    int
	Clip     float64 // <= 0 if no clipping
}

// DefaultAdamConfig returns the Adam configuration used to train
// curiosity models
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{
		StepSize: 1e-4,
		Epsilon:  1e-8,
		Beta1:    0.9,
		Beta2:    0.999,
		Batch:    1,
	}
}

// NewAdam returns a new Adam Solver with default hyperparameters other
// than the step size
func NewAdam(stepSize float64) (*Solver, error) {
	c := DefaultAdamConfig()
	c.StepSize = stepSize
	return New(c)
}

func (a AdamConfig) Type() Type { return Adam }

// Validate checks the config for errors
func (a AdamConfig) Validate() error {
	if err := validate(a.StepSize, a.Batch); err != nil {
		return err
	}
	if a.Beta1 < 0 || a.Beta1 >= 1 || a.Beta2 < 0 || a.Beta2 >= 1 {
		return fmt.Errorf("betas must be in [0, 1), have %v and %v",
			a.Beta1, a.Beta2)
	}
	return nil
}

// Create returns a new Gorgonia Adam Solver as described by the
// AdamConfig
func (a AdamConfig) Create() G.Solver {
	opts := []G.SolverOpt{
		G.WithLearnRate(a.StepSize),
		G.WithEps(a.Epsilon),
		G.WithBeta1(a.Beta1),
		G.WithBeta2(a.Beta2),
		G.WithBatchSize(float64(a.Batch)),
	}
	if a.Clip > 0 {
		opts = append(opts, G.WithClip(a.Clip))
	}
	return G.NewAdamSolver(opts...)
}

// RMSPropConfig describes a configuration of the RMSProp solver
type RMSPropConfig struct {
	StepSize float64
	Epsilon  float64
	Rho      float64
	Batch    int
	Clip     float64 // <= 0 if no clipping
}

// DefaultRMSPropConfig returns an RMSProp configuration with default
// hyperparameters
func DefaultRMSPropConfig() RMSPropConfig {
	return RMSPropConfig{
		StepSize: 1e-3,
		Epsilon:  1e-8,
		Rho:      0.999,
		Batch:    1,
	}
}

// NewRMSProp returns a new RMSProp Solver with default hyperparameters
// other than the step size
func NewRMSProp(stepSize float64) (*Solver, error) {
	c := DefaultRMSPropConfig()
	c.StepSize = stepSize
	return New(c)
}

func (r RMSPropConfig) Type() Type { return RMSProp }

// Validate checks the config for errors
func (r RMSPropConfig) Validate() error {
	if err := validate(r.StepSize, r.Batch); err != nil {
		return err
	}
	if r.Rho < 0 || r.Rho >= 1 {
		return fmt.Errorf("rho must be in [0, 1), have %v", r.Rho)
	}
	return nil
}

// Create returns a new Gorgonia RMSProp Solver as described by the
// RMSPropConfig
func (r RMSPropConfig) Create() G.Solver {
	opts := []G.SolverOpt{
		G.WithLearnRate(r.StepSize),
		G.WithEps(r.Epsilon),
		G.WithRho(r.Rho),
		G.WithBatchSize(float64(r.Batch)),
	}
	if r.Clip > 0 {
		opts = append(opts, G.WithClip(r.Clip))
	}
	return G.NewRMSPropSolver(opts...)
}

// VanillaConfig describes a configuration of the vanilla gradient
// descent solver.
type VanillaConfig struct {
	StepSize float64
	Batch    int
	Clip     float64 // <= 0 if no clipping
}

// NewVanilla returns a new Vanilla Solver
func NewVanilla(stepSize float64, batchSize int,
	clip float64) (*Solver, error) {
	return New(VanillaConfig{
		StepSize: stepSize,
		Batch:    batchSize,
		Clip:     clip,
	})
}

func (v VanillaConfig) Type() Type { return Vanilla }

// Validate checks the config for errors
func (v VanillaConfig) Validate() error {
	return validate(v.StepSize, v.Batch)
}

// Create returns a Gorgonia Vanilla Solver as described by the
// VanillaConfig
func (v VanillaConfig) Create() G.Solver {
	opts := []G.SolverOpt{
		G.WithLearnRate(v.StepSize),
		G.WithBatchSize(float64(v.Batch)),
	}
	if v.Clip > 0 {
		opts = append(opts, G.WithClip(v.Clip))
	}
	return G.NewVanillaSolver(opts...)
}

func validate(stepSize float64, batch int) error {
	if stepSize <= 0 {
		return fmt.Errorf("step size must be positive, have %v", stepSize)
	}
	if batch <= 0 {
		return fmt.Errorf("batch size must be positive, have %v", batch)
	}
	return nil
}
