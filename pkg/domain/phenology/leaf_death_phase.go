package phenology

import (
	"fmt"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// LeafDeathPhase completes once every leaf cohort up to the final leaf
// number has died
type LeafDeathPhase struct {
	phaseName
	thermalTime     entities.Signal
	cohorts         LeafCohorts
	finalLeafNumber entities.Signal

	ttInPhase         float64
	deadNodeNoAtStart float64
	first             bool
}

// NewLeafDeathPhase creates a leaf death phase ready for its first time step
func NewLeafDeathPhase(params entities.PhaseParameters, thermalTime entities.Signal, cohorts LeafCohorts, finalLeafNumber entities.Signal) *LeafDeathPhase {
	return &LeafDeathPhase{
		phaseName:       namesOf(params),
		thermalTime:     thermalTime,
		cohorts:         cohorts,
		finalLeafNumber: finalLeafNumber,
		first:           true,
	}
}

// DoTimeStep latches the dead cohort baseline on its first call and
// returns the completion sentinel once the final leaf has died
func (p *LeafDeathPhase) DoTimeStep(propOfDayToUse float64) float64 {
	p.ttInPhase += p.thermalTime.Value() * propOfDayToUse

	if p.first {
		p.deadNodeNoAtStart = p.cohorts.DeadCohortNo()
		p.first = false
	}

	if p.cohorts.DeadCohortNo() >= p.finalLeafNumber.Value() || !p.cohorts.CohortsInitialised() {
		return CompletionSentinel
	}
	return 0
}

// ResetPhase zeroes thermal time and re-arms the baseline latch
func (p *LeafDeathPhase) ResetPhase() {
	p.ttInPhase = 0
	p.deadNodeNoAtStart = 0
	p.first = true
}

// TTinPhase returns the thermal time accumulated in the phase
func (p *LeafDeathPhase) TTinPhase() float64 { return p.ttInPhase }

// TTForToday returns today's thermal time read from the signal
func (p *LeafDeathPhase) TTForToday() float64 { return p.thermalTime.Value() }

// DeadNodeNoAtStart returns the dead cohort count latched on the first
// time step
func (p *LeafDeathPhase) DeadNodeNoAtStart() float64 { return p.deadNodeNoAtStart }

// FractionComplete is the share of leaves that died since the phase began
func (p *LeafDeathPhase) FractionComplete() float64 {
	target := p.finalLeafNumber.Value()
	if target == p.deadNodeNoAtStart {
		if p.cohorts.DeadCohortNo() >= target {
			return 1
		}
		return 0
	}
	return clamp01((p.cohorts.DeadCohortNo() - p.deadNodeNoAtStart) / (target - p.deadNodeNoAtStart))
}

// SetFractionComplete is unsupported for leaf death
func (p *LeafDeathPhase) SetFractionComplete(float64) error {
	return fmt.Errorf("%w: fraction complete of phase %s is derived from leaf cohorts", entities.ErrUnsupportedOperation, p.name)
}
