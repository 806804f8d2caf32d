// Package config reads crop parameter files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/domain/services"
)

// CropFile mirrors the on-disk schema of crop.yaml
type CropFile struct {
	CropType         string                 `yaml:"crop_type"`
	FinalLeafNumber  float64                `yaml:"final_leaf_number"`
	SowDate          string                 `yaml:"sow_date,omitempty"`
	Phases           []PhaseFile            `yaml:"phases"`
	Organs           []OrganFile            `yaml:"organs"`
	Harvest          HarvestFile            `yaml:"harvest,omitempty"`
	RemovalFractions map[string]RemovalFile `yaml:"removal_fractions,omitempty"`
}

type PhaseFile struct {
	Name   string  `yaml:"name"`
	Kind   string  `yaml:"kind"`
	Start  string  `yaml:"start"`
	End    string  `yaml:"end"`
	Target float64 `yaml:"target,omitempty"`
}

type OrganFile struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	HIIncrement  float64  `yaml:"hi_increment,omitempty"`
	HIPhases     []string `yaml:"hi_phases,omitempty"`
	NConc        float64  `yaml:"n_conc,omitempty"`
	WaterContent *float64 `yaml:"water_content,omitempty"`

	StructuralDemand               float64  `yaml:"structural_demand,omitempty"`
	StorageDemand                  float64  `yaml:"storage_demand,omitempty"`
	MetabolicFraction              float64  `yaml:"metabolic_fraction,omitempty"`
	MaxNConc                       float64  `yaml:"max_n_conc,omitempty"`
	DMRetranslocationFactor        float64  `yaml:"dm_retranslocation_factor,omitempty"`
	NRetranslocationFactor         float64  `yaml:"n_retranslocation_factor,omitempty"`
	SenescenceRate                 float64  `yaml:"senescence_rate,omitempty"`
	DetachmentRate                 float64  `yaml:"detachment_rate,omitempty"`
	MaintenanceRespirationFraction float64  `yaml:"maintenance_respiration_fraction,omitempty"`
	GrowthPhases                   []string `yaml:"growth_phases,omitempty"`
	RetranslocationPhases          []string `yaml:"retranslocation_phases,omitempty"`
}

type HarvestFile struct {
	AtPhase     string `yaml:"at_phase,omitempty"`
	RemovalType string `yaml:"removal_type,omitempty"`
}

type RemovalFile struct {
	LiveToRemove  float64 `yaml:"live_to_remove"`
	DeadToRemove  float64 `yaml:"dead_to_remove"`
	LiveToResidue float64 `yaml:"live_to_residue"`
	DeadToResidue float64 `yaml:"dead_to_residue"`
}

var (
	phaseKinds = map[string]entities.PhaseKind{
		entities.ThermalTimePhase.String(): entities.ThermalTimePhase,
		entities.LeafDeathPhase.String():   entities.LeafDeathPhase,
		entities.EndPhase.String():         entities.EndPhase,
	}
	organKinds = map[string]entities.OrganKind{
		entities.HIReproductiveOrgan.String(): entities.HIReproductiveOrgan,
		entities.ReserveOrgan.String():        entities.ReserveOrgan,
	}
)

// ParsePhaseKind resolves a phase kind name, suggesting the closest match
// when it is unknown
func ParsePhaseKind(name string) (entities.PhaseKind, error) {
	for key, kind := range phaseKinds {
		if strings.EqualFold(key, strings.TrimSpace(name)) {
			return kind, nil
		}
	}
	return 0, errors.New(services.UnknownNameMessage("phase kind", name, keys(phaseKinds)))
}

// ParseOrganKind resolves an organ kind name, suggesting the closest match
// when it is unknown
func ParseOrganKind(name string) (entities.OrganKind, error) {
	for key, kind := range organKinds {
		if strings.EqualFold(key, strings.TrimSpace(name)) {
			return kind, nil
		}
	}
	return 0, errors.New(services.UnknownNameMessage("organ kind", name, keys(organKinds)))
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// ParseCrop decodes and validates crop parameters. Unknown fields are
// rejected.
func ParseCrop(r io.Reader) (*entities.CropParameters, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read crop: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("crop payload is empty")
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var file CropFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode crop: %w", err)
	}

	params, err := file.Parameters()
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// LoadCrop reads crop parameters from a YAML file
func LoadCrop(path string) (*entities.CropParameters, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open crop file %s: %w", path, err)
	}
	defer file.Close()

	params, err := ParseCrop(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Clean(path), err)
	}
	return params, nil
}

// Parameters converts the file representation into crop parameters
func (f CropFile) Parameters() (*entities.CropParameters, error) {
	params := &entities.CropParameters{
		CropType:        strings.TrimSpace(f.CropType),
		FinalLeafNumber: f.FinalLeafNumber,
		Harvest: entities.HarvestParameters{
			AtPhase:     f.Harvest.AtPhase,
			RemovalType: f.Harvest.RemovalType,
		},
	}

	if f.SowDate != "" {
		sowDate, err := time.Parse("2006-01-02", f.SowDate)
		if err != nil {
			return nil, fmt.Errorf("invalid sow_date format: %s (expected YYYY-MM-DD)", f.SowDate)
		}
		params.SowDate = sowDate
	}

	for i, p := range f.Phases {
		kind, err := ParsePhaseKind(p.Kind)
		if err != nil {
			return nil, fmt.Errorf("phase %d (%s): %w", i+1, p.Name, err)
		}
		params.Phases = append(params.Phases, entities.PhaseParameters{
			Name:   p.Name,
			Kind:   kind,
			Start:  p.Start,
			End:    p.End,
			Target: p.Target,
		})
	}

	for _, o := range f.Organs {
		kind, err := ParseOrganKind(o.Kind)
		if err != nil {
			return nil, fmt.Errorf("organ %s: %w", o.Name, err)
		}
		params.Organs = append(params.Organs, entities.OrganParameters{
			Name:                           o.Name,
			Kind:                           kind,
			HIIncrement:                    o.HIIncrement,
			HIPhases:                       o.HIPhases,
			NConc:                          o.NConc,
			WaterContent:                   o.WaterContent,
			StructuralDemand:               o.StructuralDemand,
			StorageDemand:                  o.StorageDemand,
			MetabolicFraction:              o.MetabolicFraction,
			MaxNConc:                       o.MaxNConc,
			DMRetranslocationFactor:        o.DMRetranslocationFactor,
			NRetranslocationFactor:         o.NRetranslocationFactor,
			SenescenceRate:                 o.SenescenceRate,
			DetachmentRate:                 o.DetachmentRate,
			MaintenanceRespirationFraction: o.MaintenanceRespirationFraction,
			GrowthPhases:                   o.GrowthPhases,
			RetranslocationPhases:          o.RetranslocationPhases,
		})
	}

	if rt := f.Harvest.RemovalType; rt != "" {
		if _, custom := f.RemovalFractions[rt]; !custom {
			if _, err := services.NewBiomassRemoval(nil).Fractions(rt); err != nil {
				return nil, fmt.Errorf("harvest: %w", err)
			}
		}
	}

	if len(f.RemovalFractions) > 0 {
		params.RemovalFractions = make(map[string]entities.OrganBiomassRemovalType, len(f.RemovalFractions))
		for name, r := range f.RemovalFractions {
			params.RemovalFractions[name] = entities.OrganBiomassRemovalType{
				FractionLiveToRemove:  r.LiveToRemove,
				FractionDeadToRemove:  r.DeadToRemove,
				FractionLiveToResidue: r.LiveToResidue,
				FractionDeadToResidue: r.DeadToResidue,
			}
		}
	}

	return params, nil
}
