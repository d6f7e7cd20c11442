package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// Pooled Cohort Equations (Goff et al., Circulation 2014;129:S49-S73),
// https://clincalc.com/cardiology/ascvd/pooledcohort.aspx
//
// Zero coefficients are the terms each race/sex equation omits.
type pceStratum struct {
	beta []float64
	s0   map[int]float64
	b0   float64
}

var (
	pceWhiteFemale = pceStratum{
		beta: []float64{-29.799, 4.884, 13.540, -3.114, -13.578, 3.149, 1.957, 0.000, 2.019, 0.000, 7.574, -1.665, 0.661},
		s0:   map[int]float64{5: 0.98898, 10: 0.9665},
		b0:   -29.18,
	}
	pceBlackFemale = pceStratum{
		beta: []float64{17.114, 0.000, 0.940, 0.000, -18.920, 4.475, 27.820, -6.087, 29.291, -6.432, 0.691, 0.000, 0.874},
		s0:   map[int]float64{5: 0.98194, 10: 0.9533},
		b0:   86.61,
	}
	pceWhiteMale = pceStratum{
		beta: []float64{12.344, 0.000, 11.853, -2.664, -7.990, 1.769, 1.764, 0.000, 1.797, 0.000, 7.837, 1.795, 0.658},
		s0:   map[int]float64{5: 0.96254, 10: 0.9144},
		b0:   61.18,
	}
	pceBlackMale = pceStratum{
		beta: []float64{2.469, 0.000, 0.302, 0.000, -0.307, 0.000, 1.809, 0.000, 1.916, 0.000, 0.549, 0.000, 0.645},
		s0:   map[int]float64{5: 0.95726, 10: 0.8954},
		b0:   19.54,
	}
)

const defaultPceHorizon = 5

var pceTerms = []string{
	"age_log", "age_log2", "tot_log", "tot_age", "hdl_log", "hdl_age", "sbp_nhtn",
	"sbp_age_nhtn", "sbp_htn", "sbp_age_htn", "cur_smoke", "smoke_age", "dm",
}

type PceInput struct {
	Female    bool
	AC        bool // African American
	Age       float64
	TotChol   float64 // mg/dL
	HDL       float64 // mg/dL
	SBP       float64
	CurSmoker bool
	HtnTreat  bool
	Diabetes  bool
}

func pceStratumFor(female, ac bool) pceStratum {
	switch {
	case female && ac:
		return pceBlackFemale
	case female:
		return pceWhiteFemale
	case ac:
		return pceBlackMale
	default:
		return pceWhiteMale
	}
}

func pceVector(in PceInput) ([]string, []float64) {
	logAge := math.Log(sanitize.Age(in.Age))
	logTC := math.Log(sanitize.TotalCholesterol(in.TotChol, sanitize.MgPerDL))
	logHDL := math.Log(sanitize.HDL(in.HDL, sanitize.MgPerDL))
	untreated, treated := sbpByTreatment(in.SBP, in.HtnTreat)
	smoke := b2f(in.CurSmoker)
	return pceTerms, []float64{
		logAge,
		logAge * logAge,
		logTC,
		logTC * logAge,
		logHDL,
		logHDL * logAge,
		untreated,
		logAge * untreated,
		treated,
		logAge * treated,
		smoke,
		smoke * logAge,
		b2f(in.Diabetes),
	}
}

// PceRisk returns the atherosclerotic cardiovascular risk over 5 or 10 years.
func PceRisk(in PceInput, years int) (float64, error) {
	stratum := pceStratumFor(in.Female, in.AC)
	s0, ok := stratum.s0[years]
	if !ok {
		return 0, unsupported("pce", "horizon", years)
	}
	_, x := pceVector(in)
	return coxTable{beta: stratum.beta, s0: s0, b0: stratum.b0}.risk(x)
}

func NewPce(horizon int) (Model, error) {
	if horizon == 0 {
		horizon = defaultPceHorizon
	}
	if horizon != 5 && horizon != 10 {
		return nil, unsupported("pce", "horizon", horizon)
	}
	return &equation[PceInput]{
		descriptor: descriptor{
			name:     "pce",
			required: []string{"female", "AC", "index_age", "chol_tot", "chol_hdl", "sbp", "cur_smoke", "htn_treat", "dm"},
			terms:    pceTerms,
		},
		read: func(r *reader) PceInput {
			return PceInput{
				Female:    r.flag("female"),
				AC:        r.flag("AC"),
				Age:       r.num("index_age"),
				TotChol:   r.num("chol_tot"),
				HDL:       r.num("chol_hdl"),
				SBP:       r.num("sbp"),
				CurSmoker: r.flag("cur_smoke"),
				HtnTreat:  r.flag("htn_treat"),
				Diabetes:  r.flag("dm"),
			}
		},
		build: pceVector,
		risk: func(in PceInput) (float64, error) {
			return PceRisk(in, horizon)
		},
	}, nil
}
