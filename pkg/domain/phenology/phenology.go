package phenology

import (
	"fmt"
	"time"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// Phenology owns the ordered phase chain and the index of the current phase
type Phenology struct {
	phases  []Phase
	byName  map[string]int
	current int
}

// New validates the chain: names must be unique and each phase must start
// where the previous one ended
func New(phases []Phase) (*Phenology, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("at least one phase is required")
	}
	byName := make(map[string]int, len(phases))
	for i, phase := range phases {
		if _, exists := byName[phase.Name()]; exists {
			return nil, fmt.Errorf("duplicate phase name: %s", phase.Name())
		}
		byName[phase.Name()] = i
		if i > 0 && phases[i-1].End() != phase.Start() {
			return nil, fmt.Errorf("phase %s starts at %q but %s ends at %q",
				phase.Name(), phase.Start(), phases[i-1].Name(), phases[i-1].End())
		}
	}
	return &Phenology{phases: phases, byName: byName}, nil
}

// Build creates every phase from its parameters and validates the chain
func Build(params []entities.PhaseParameters, c Collaborators) (*Phenology, error) {
	phases := make([]Phase, 0, len(params))
	for _, p := range params {
		phase, err := NewPhase(p, c)
		if err != nil {
			return nil, err
		}
		phases = append(phases, phase)
	}
	return New(phases)
}

// OnSimulationCommencing resets every phase and selects the first
func (p *Phenology) OnSimulationCommencing() {
	for _, phase := range p.phases {
		phase.ResetPhase()
	}
	p.current = 0
}

// DoTimeStep advances the current phase by one day, moving through as many
// phases as complete with the day's thermal time
func (p *Phenology) DoTimeStep(date time.Time) []entities.PhaseTransition {
	var transitions []entities.PhaseTransition
	propOfDayToUse := 1.0

	for {
		phase := p.phases[p.current]
		leftover := phase.DoTimeStep(propOfDayToUse)
		if leftover == 0 || p.current == len(p.phases)-1 {
			return transitions
		}

		p.current++
		next := p.phases[p.current]
		next.ResetPhase()
		transitions = append(transitions, entities.PhaseTransition{
			Date: date,
			From: phase.Name(),
			To:   next.Name(),
		})
		propOfDayToUse = leftover
	}
}

// CurrentPhase returns the active phase
func (p *Phenology) CurrentPhase() Phase { return p.phases[p.current] }

// CurrentIndex returns the zero-based index of the active phase
func (p *Phenology) CurrentIndex() int { return p.current }

// Phases returns the chain in order
func (p *Phenology) Phases() []Phase { return p.phases }

// Stage is the one-based index of the current phase plus its fraction
// complete
func (p *Phenology) Stage() float64 {
	return float64(p.current+1) + p.CurrentPhase().FractionComplete()
}

// InPhase reports whether the named phase is current
func (p *Phenology) InPhase(name string) bool {
	return p.CurrentPhase().Name() == name
}

// Matured reports whether the last phase of the chain has been reached
func (p *Phenology) Matured() bool {
	return p.current == len(p.phases)-1
}

// Between reports whether the current phase lies within [from, to] in
// chain order
func (p *Phenology) Between(from, to string) bool {
	start, ok := p.byName[from]
	if !ok {
		return false
	}
	end, ok := p.byName[to]
	if !ok {
		return false
	}
	return p.current >= start && p.current <= end
}
