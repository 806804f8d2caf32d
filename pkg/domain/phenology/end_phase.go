package phenology

import (
	"fmt"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// EndPhase is the terminal phase. It keeps accumulating thermal time and
// never completes.
type EndPhase struct {
	phaseName
	thermalTime entities.Signal

	ttInPhase float64
}

// NewEndPhase creates the terminal phase
func NewEndPhase(params entities.PhaseParameters, thermalTime entities.Signal) *EndPhase {
	return &EndPhase{phaseName: namesOf(params), thermalTime: thermalTime}
}

// DoTimeStep accumulates thermal time and always returns 0
func (p *EndPhase) DoTimeStep(propOfDayToUse float64) float64 {
	p.ttInPhase += p.thermalTime.Value() * propOfDayToUse
	return 0
}

// ResetPhase zeroes the thermal time accumulated in the phase
func (p *EndPhase) ResetPhase() { p.ttInPhase = 0 }

// TTinPhase returns the thermal time accumulated in the phase
func (p *EndPhase) TTinPhase() float64 { return p.ttInPhase }

// TTForToday returns today's thermal time read from the signal
func (p *EndPhase) TTForToday() float64 { return p.thermalTime.Value() }

// FractionComplete is always 0 because the terminal phase never completes
func (p *EndPhase) FractionComplete() float64 { return 0 }

// SetFractionComplete is unsupported for the terminal phase
func (p *EndPhase) SetFractionComplete(float64) error {
	return fmt.Errorf("%w: phase %s has no completion", entities.ErrUnsupportedOperation, p.name)
}
