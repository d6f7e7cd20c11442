package risk

import (
	"fmt"
	"sort"
)

// Options carries the per-instance parameters a model may accept. Zero values
// select the model's published default.
type Options struct {
	// Horizon is the forecast window in years.
	Horizon int `yaml:"horizon,omitempty" json:"horizon,omitempty"`
	// Target picks the outcome equation (DCS: CVD, MI; RECODE: CHF, MI, STROKE).
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
	// LowRisk selects the SCORE low-risk region baselines. Nil means true.
	LowRisk *bool `yaml:"low_risk,omitempty" json:"low_risk,omitempty"`
	// CoefSet picks the CHS or MESA hazard ratios.
	CoefSet string `yaml:"coef_set,omitempty" json:"coef_set,omitempty"`
	// BaseHazard is the CHS baseline raised to the linear predictor.
	BaseHazard float64 `yaml:"base_hazard,omitempty" json:"base_hazard,omitempty"`
	// TreatmentLogHR is the DIAL log hazard ratio of an intended treatment.
	TreatmentLogHR float64 `yaml:"treatment_log_hr,omitempty" json:"treatment_log_hr,omitempty"`
	// HighRiskCountry applies the DIAL high-risk country term.
	HighRiskCountry bool `yaml:"high_risk_country,omitempty" json:"high_risk_country,omitempty"`
}

type constructor func(Options) (Model, error)

var registry = map[string]constructor{
	"advance":         func(Options) (Model, error) { return NewAdvance(), nil },
	"aric":            func(Options) (Model, error) { return NewAric(), nil },
	"chs":             func(o Options) (Model, error) { return NewChs(o.CoefSet, o.BaseHazard) },
	"darts":           func(o Options) (Model, error) { return NewDarts(o.Horizon) },
	"dcs":             func(o Options) (Model, error) { return NewDcs(o.Target) },
	"dial":            func(o Options) (Model, error) { return NewDial(o.TreatmentLogHR, o.HighRiskCountry), nil },
	"dmcx":            func(Options) (Model, error) { return NewDmcx(), nil },
	"fremantle":       func(Options) (Model, error) { return NewFremantle(), nil },
	"frs_primary":     func(Options) (Model, error) { return NewFrsPrimary(), nil },
	"frs_simple":      func(Options) (Model, error) { return NewFrsSimple(), nil },
	"hkdr_chd":        func(Options) (Model, error) { return NewHkdrCHD(), nil },
	"hkdr_hf":         func(Options) (Model, error) { return NewHkdrHF(), nil },
	"hkdr_stroke":     func(Options) (Model, error) { return NewHkdrStroke(), nil },
	"ndr":             func(o Options) (Model, error) { return NewNdr(o.Horizon) },
	"pce":             func(o Options) (Model, error) { return NewPce(o.Horizon) },
	"qdiabetes":       func(o Options) (Model, error) { return NewQDiabetes(o.Horizon) },
	"recode":          func(o Options) (Model, error) { return NewRecode(o.Target) },
	"score":           func(o Options) (Model, error) { return NewScore(o.LowRisk == nil || *o.LowRisk), nil },
	"ukpds":           func(o Options) (Model, error) { return NewUkpds(o.Horizon) },
	"ukpdsom2_chf":    func(o Options) (Model, error) { return NewUkpdsOM2CHF(o.Horizon) },
	"ukpdsom2_mi":     func(o Options) (Model, error) { return NewUkpdsOM2MI(o.Horizon) },
	"ukpdsom2_stroke": func(o Options) (Model, error) { return NewUkpdsOM2Stroke(o.Horizon) },
}

// New builds the named model with opts.
func New(name string, opts Options) (Model, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return ctor(opts)
}

// Names returns every registered model name in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
