package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// Swedish National Diabetes Register: Zethelius et al., Diabetes Res Clin
// Pract 2011;93(2):276-284. Covariates are centred on the cohort means.
var ndrBeta = []float64{
	0.0498, // age at diagnosis
	0.0651, // diabetes duration
	0.5737, // log tc/hdl
	0.6929, // log hba1c
	0.7055, // log sbp
	0.4105, // log bmi
	0.3438, // male
	0.2998, // smoker
	0.2414, // microalbuminuria
	0.4252, // macroalbuminuria
	0.4034, // atrial fibrillation
	0.6838, // previous cvd
}

var ndrMeans = []float64{53.858, 7.7360, 1.3948, 1.9736, 4.9441, 3.3718, 0.6005, 0.1778, 0.1604, 0.0638, 0.0319, 0.1525}

// Baseline survival by horizon in years.
var ndrS0 = map[int]float64{
	4: 0.92347,
	5: 0.90237,
}

const defaultNdrHorizon = 5

var ndrTerms = []string{
	"diab_age", "diab_dur", "tchdl_log", "hba1c_log", "sbp_log", "bmi_log", "male",
	"cur_smoke", "microalbum", "macroalbum", "afib", "cvd_hist",
}

type NdrInput struct {
	DiabAge      float64
	DiabDur      float64
	TCHDL        float64
	HbA1c        float64 // %
	SBP          float64
	BMI          float64
	Male         bool
	Smoker       bool
	Microalbumin bool
	Macroalbumin bool
	AFib         bool
	CVDHistory   bool
}

func ndrVector(in NdrInput) ([]string, []float64) {
	raw := []float64{
		in.DiabAge,
		sanitize.DiabetesDuration(in.DiabDur, 0),
		math.Log(sanitize.TCHDL(in.TCHDL)),
		math.Log(sanitize.HbA1c(in.HbA1c, sanitize.Percent)),
		math.Log(sanitize.BloodPressure(in.SBP)),
		math.Log(sanitize.BMI(in.BMI)),
		b2f(in.Male),
		b2f(in.Smoker),
		b2f(in.Microalbumin),
		b2f(in.Macroalbumin),
		b2f(in.AFib),
		b2f(in.CVDHistory),
	}
	for i := range raw {
		raw[i] -= ndrMeans[i]
	}
	return ndrTerms, raw
}

// NdrRisk returns the cardiovascular risk over 4 or 5 years.
func NdrRisk(in NdrInput, years int) (float64, error) {
	s0, ok := ndrS0[years]
	if !ok {
		return 0, unsupported("ndr", "horizon", years)
	}
	_, x := ndrVector(in)
	return coxTable{beta: ndrBeta, s0: s0}.risk(x)
}

func NewNdr(horizon int) (Model, error) {
	if horizon == 0 {
		horizon = defaultNdrHorizon
	}
	if _, ok := ndrS0[horizon]; !ok {
		return nil, unsupported("ndr", "horizon", horizon)
	}
	return &equation[NdrInput]{
		descriptor: descriptor{
			name: "ndr",
			required: []string{
				"diab_age", "diab_dur", "tchdl", "hba1c", "sbp", "bmi", "male", "cur_smoke",
				"microalbum", "macroalbum", "afib", "cvd_hist",
			},
			terms: ndrTerms,
		},
		read: func(r *reader) NdrInput {
			return NdrInput{
				DiabAge:      r.num("diab_age"),
				DiabDur:      r.num("diab_dur"),
				TCHDL:        r.num("tchdl"),
				HbA1c:        r.num("hba1c"),
				SBP:          r.num("sbp"),
				BMI:          r.num("bmi"),
				Male:         r.flag("male"),
				Smoker:       r.flag("cur_smoke"),
				Microalbumin: r.flag("microalbum"),
				Macroalbumin: r.flag("macroalbum"),
				AFib:         r.flag("afib"),
				CVDHistory:   r.flag("cvd_hist"),
			}
		},
		build: ndrVector,
		risk: func(in NdrInput) (float64, error) {
			return NdrRisk(in, horizon)
		},
	}, nil
}
