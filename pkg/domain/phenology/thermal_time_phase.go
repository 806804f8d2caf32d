package phenology

import (
	"fmt"
	"math"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// ThermalTimePhase completes when accumulated thermal time reaches a target
type ThermalTimePhase struct {
	phaseName
	target      float64
	thermalTime entities.Signal

	ttInPhase float64
}

// NewThermalTimePhase creates a phase with a positive thermal time target
func NewThermalTimePhase(params entities.PhaseParameters, thermalTime entities.Signal) (*ThermalTimePhase, error) {
	if params.Target <= 0 {
		return nil, fmt.Errorf("phase %s: thermal time target must be positive, got %g", params.Name, params.Target)
	}
	return &ThermalTimePhase{phaseName: namesOf(params), target: params.Target, thermalTime: thermalTime}, nil
}

// Target returns the thermal time needed to complete the phase
func (p *ThermalTimePhase) Target() float64 { return p.target }

// DoTimeStep returns the unused part of the day once the target is passed
func (p *ThermalTimePhase) DoTimeStep(propOfDayToUse float64) float64 {
	ttForTimeStep := p.thermalTime.Value() * propOfDayToUse
	p.ttInPhase += ttForTimeStep

	if p.ttInPhase < p.target {
		return 0
	}
	leftover := 0.0
	if ttForTimeStep > 0 {
		leftover = (p.ttInPhase - p.target) / ttForTimeStep * propOfDayToUse
	}
	return math.Max(CompletionSentinel, leftover)
}

// ResetPhase zeroes the thermal time accumulated in the phase
func (p *ThermalTimePhase) ResetPhase() {
	p.ttInPhase = 0
}

// TTinPhase returns the thermal time accumulated in the phase
func (p *ThermalTimePhase) TTinPhase() float64 { return p.ttInPhase }

// TTForToday returns today's thermal time read from the signal
func (p *ThermalTimePhase) TTForToday() float64 { return p.thermalTime.Value() }

// FractionComplete is thermal time in phase over the target
func (p *ThermalTimePhase) FractionComplete() float64 {
	return clamp01(p.ttInPhase / p.target)
}

// SetFractionComplete moves the phase to the given fraction of its target
func (p *ThermalTimePhase) SetFractionComplete(value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("fraction complete must be between 0 and 1, got %g", value)
	}
	p.ttInPhase = value * p.target
	return nil
}
