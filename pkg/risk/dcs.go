package risk

import (
	"strings"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// Diabetes Cohort Study (NZSSD), https://www.nzssd.org.nz/cvd/
const (
	TargetCVD    = "CVD"
	TargetMI     = "MI"
	TargetCHF    = "CHF"
	TargetStroke = "STROKE"
)

var dcsTables = map[string]coxTable{
	TargetCVD: {
		beta: []float64{
			0.04170, -0.17301, 0.07998, 0.24776, 0.05667, 0.00489, 0.20283, -0.03110, 0.08045,
			0.28188, 0.24640, 0.01628, 0.18900, 0.62750, 0.05778, 0.79968, -0.00444,
		},
		s0: 0.817,
		b0: 4.00425997,
	},
	TargetMI: {
		beta: []float64{
			0.05274, -0.26065, 0.07915, 0.34834, 0.05962, 0.00516, 0.16271, -0.15539, 0.03224,
			0.09004, 0.21986, 0.03545, 0.17951, 0.61812, 0.06931, 0.99161, -0.00592,
		},
		s0: 0.9230,
		b0: 4.8066,
	},
}

var dcsTerms = []string{
	"diab_age", "female", "prev_smoke", "cur_smoke", "hba1c", "sbp", "Maori", "EAsian",
	"Pacific", "IndoAsian", "ODcs", "tchdl", "microalbum", "macroalbum", "diab_dur",
	"htn_treat", "sbp_htn",
}

type DcsInput struct {
	DiabAge        float64
	Female         bool
	PrevSmoker     bool
	CurSmoker      bool
	HbA1c          float64 // %
	SBP            float64
	Maori          bool
	EastAsian      bool
	Pacific        bool
	IndoAsian      bool
	OtherEthnicity bool
	TCHDL          float64
	Microalbumin   bool
	Macroalbumin   bool
	DiabDur        float64
	HtnTreat       bool
}

func dcsVector(in DcsInput) ([]string, []float64) {
	sbp := sanitize.BloodPressure(in.SBP)
	htn := b2f(in.HtnTreat)
	return dcsTerms, []float64{
		in.DiabAge,
		b2f(in.Female),
		b2f(in.PrevSmoker),
		b2f(in.CurSmoker),
		sanitize.HbA1c(in.HbA1c, sanitize.Percent),
		sbp,
		b2f(in.Maori),
		b2f(in.EastAsian),
		b2f(in.Pacific),
		b2f(in.IndoAsian),
		b2f(in.OtherEthnicity),
		sanitize.TCHDL(in.TCHDL),
		b2f(in.Microalbumin),
		b2f(in.Macroalbumin),
		sanitize.DiabetesDuration(in.DiabDur, 0),
		htn,
		sbp * htn,
	}
}

func dcsTable(target string) (coxTable, error) {
	if target == "" {
		return dcsTables[TargetCVD], nil
	}
	t, ok := dcsTables[strings.ToUpper(target)]
	if !ok {
		return coxTable{}, unsupported("dcs", "target", target)
	}
	return t, nil
}

// DcsRisk returns the 5-year risk of target, TargetCVD or TargetMI.
func DcsRisk(in DcsInput, target string) (float64, error) {
	table, err := dcsTable(target)
	if err != nil {
		return 0, err
	}
	_, x := dcsVector(in)
	return table.risk(x)
}

func NewDcs(target string) (Model, error) {
	table, err := dcsTable(target)
	if err != nil {
		return nil, err
	}
	return &equation[DcsInput]{
		descriptor: descriptor{
			name: "dcs",
			required: []string{
				"diab_age", "female", "prev_smoke", "cur_smoke", "hba1c", "sbp", "Maori",
				"EAsian", "Pacific", "IndoAsian", "ODcs", "tchdl", "microalbum", "macroalbum",
				"diab_dur", "htn_treat",
			},
			terms: dcsTerms,
		},
		read: func(r *reader) DcsInput {
			return DcsInput{
				DiabAge:        r.num("diab_age"),
				Female:         r.flag("female"),
				PrevSmoker:     r.flag("prev_smoke"),
				CurSmoker:      r.flag("cur_smoke"),
				HbA1c:          r.num("hba1c"),
				SBP:            r.num("sbp"),
				Maori:          r.flag("Maori"),
				EastAsian:      r.flag("EAsian"),
				Pacific:        r.flag("Pacific"),
				IndoAsian:      r.flag("IndoAsian"),
				OtherEthnicity: r.flag("ODcs"),
				TCHDL:          r.num("tchdl"),
				Microalbumin:   r.flag("microalbum"),
				Macroalbumin:   r.flag("macroalbum"),
				DiabDur:        r.num("diab_dur"),
				HtnTreat:       r.flag("htn_treat"),
			}
		},
		build: dcsVector,
		risk: func(in DcsInput) (float64, error) {
			_, x := dcsVector(in)
			return table.risk(x)
		},
	}, nil
}
