// Package phenology advances a plant through an ordered chain of
// developmental phases driven by thermal time.
package phenology

import (
	"fmt"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// CompletionSentinel is returned by DoTimeStep when a phase completes with
// no meaningful part of the day left over. A return of 0 means the phase
// continues.
const CompletionSentinel = 0.00001

// Phase is one developmental stage in the chain
type Phase interface {
	Name() string
	Start() string
	End() string

	// DoTimeStep advances the phase by the given fraction of today and
	// returns 0 while the phase continues, or the fraction of the day left
	// for the next phase once it completes.
	DoTimeStep(propOfDayToUse float64) float64
	ResetPhase()

	TTinPhase() float64
	TTForToday() float64
	FractionComplete() float64
	SetFractionComplete(value float64) error
}

// LeafCohorts exposes the leaf cohort counts a phase can key off
type LeafCohorts interface {
	DeadCohortNo() float64
	CohortsInitialised() bool
}

// Collaborators carries the read-only providers phases are built against
type Collaborators struct {
	ThermalTime     entities.Signal
	LeafCohorts     LeafCohorts
	FinalLeafNumber entities.Signal
}

type phaseName struct {
	name  string
	start string
	end   string
}

func namesOf(params entities.PhaseParameters) phaseName {
	return phaseName{name: params.Name, start: params.Start, end: params.End}
}

func (n phaseName) Name() string  { return n.name }
func (n phaseName) Start() string { return n.start }
func (n phaseName) End() string   { return n.end }

// NewPhase builds the phase variant named by params.Kind
func NewPhase(params entities.PhaseParameters, c Collaborators) (Phase, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("phase name cannot be empty")
	}
	if c.ThermalTime == nil {
		return nil, fmt.Errorf("phase %s: thermal time signal is required", params.Name)
	}

	switch params.Kind {
	case entities.ThermalTimePhase:
		return NewThermalTimePhase(params, c.ThermalTime)
	case entities.LeafDeathPhase:
		if c.LeafCohorts == nil || c.FinalLeafNumber == nil {
			return nil, fmt.Errorf("phase %s: leaf cohorts and final leaf number are required", params.Name)
		}
		return NewLeafDeathPhase(params, c.ThermalTime, c.LeafCohorts, c.FinalLeafNumber), nil
	case entities.EndPhase:
		return NewEndPhase(params, c.ThermalTime), nil
	default:
		return nil, fmt.Errorf("phase %s: unsupported phase kind %s", params.Name, params.Kind)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
