package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// Framingham 10-year general cardiovascular risk, D'Agostino et al.,
// Circulation 2008;117:743-753. The simple form replaces lipids with BMI.
var (
	frsSimpleWomen = coxTable{
		beta: []float64{2.72107, 0.51125, 2.81291, 2.88267, 0.61868, 0.77763},
		s0:   0.94833,
		b0:   26.0145,
	}
	frsSimpleMen = coxTable{
		beta: []float64{3.11296, 0.79277, 1.85508, 1.92672, 0.70953, 0.53160},
		s0:   0.88431,
		b0:   23.9388,
	}
	frsPrimaryWomen = coxTable{
		beta: []float64{2.32888, 1.20904, -0.70833, 2.76157, 2.82263, 0.52873, 0.69154},
		s0:   0.95012,
		b0:   26.1931,
	}
	frsPrimaryMen = coxTable{
		beta: []float64{3.06117, 1.12370, -0.93263, 1.93303, 1.99881, 0.65451, 0.57367},
		s0:   0.88936,
		b0:   23.9802,
	}
)

var (
	frsSimpleTerms  = []string{"age_log", "bmi_log", "sbp_nhtn", "sbp_htn", "cur_smoke", "dm"}
	frsPrimaryTerms = []string{"age_log", "tot_log", "hdl_log", "sbp_nhtn", "sbp_htn", "cur_smoke", "dm"}
)

type FrsSimpleInput struct {
	Female    bool
	Age       float64
	BMI       float64
	SBP       float64
	HtnTreat  bool
	CurSmoker bool
	Diabetes  bool
}

type FrsPrimaryInput struct {
	Female    bool
	Age       float64
	TotChol   float64 // mg/dL
	HDL       float64 // mg/dL
	SBP       float64
	HtnTreat  bool
	CurSmoker bool
	Diabetes  bool
}

// sbpByTreatment splits log sbp into the untreated and treated terms.
func sbpByTreatment(sbp float64, treated bool) (float64, float64) {
	logSBP := math.Log(sanitize.BloodPressure(sbp))
	htn := b2f(treated)
	return logSBP * (1 - htn), logSBP * htn
}

func frsSimpleVector(in FrsSimpleInput) ([]string, []float64) {
	untreated, treated := sbpByTreatment(in.SBP, in.HtnTreat)
	return frsSimpleTerms, []float64{
		math.Log(sanitize.Age(in.Age)),
		math.Log(sanitize.BMI(in.BMI)),
		untreated,
		treated,
		b2f(in.CurSmoker),
		b2f(in.Diabetes),
	}
}

func frsPrimaryVector(in FrsPrimaryInput) ([]string, []float64) {
	untreated, treated := sbpByTreatment(in.SBP, in.HtnTreat)
	return frsPrimaryTerms, []float64{
		math.Log(sanitize.Age(in.Age)),
		math.Log(sanitize.TotalCholesterol(in.TotChol, sanitize.MgPerDL)),
		math.Log(sanitize.HDL(in.HDL, sanitize.MgPerDL)),
		untreated,
		treated,
		b2f(in.CurSmoker),
		b2f(in.Diabetes),
	}
}

// FrsSimpleRisk is the non-laboratory 10-year risk.
func FrsSimpleRisk(in FrsSimpleInput) (float64, error) {
	_, x := frsSimpleVector(in)
	if in.Female {
		return frsSimpleWomen.risk(x)
	}
	return frsSimpleMen.risk(x)
}

// FrsPrimaryRisk is the lipid-based 10-year risk.
func FrsPrimaryRisk(in FrsPrimaryInput) (float64, error) {
	_, x := frsPrimaryVector(in)
	if in.Female {
		return frsPrimaryWomen.risk(x)
	}
	return frsPrimaryMen.risk(x)
}

func NewFrsSimple() Model {
	return &equation[FrsSimpleInput]{
		descriptor: descriptor{
			name:     "frs_simple",
			required: []string{"female", "index_age", "bmi", "sbp", "htn_treat", "cur_smoke", "dm"},
			terms:    frsSimpleTerms,
		},
		read: func(r *reader) FrsSimpleInput {
			return FrsSimpleInput{
				Female:    r.flag("female"),
				Age:       r.num("index_age"),
				BMI:       r.num("bmi"),
				SBP:       r.num("sbp"),
				HtnTreat:  r.flag("htn_treat"),
				CurSmoker: r.flag("cur_smoke"),
				Diabetes:  r.flag("dm"),
			}
		},
		build: frsSimpleVector,
		risk:  FrsSimpleRisk,
	}
}

func NewFrsPrimary() Model {
	return &equation[FrsPrimaryInput]{
		descriptor: descriptor{
			name:     "frs_primary",
			required: []string{"female", "index_age", "chol_tot", "chol_hdl", "sbp", "htn_treat", "cur_smoke", "dm"},
			terms:    frsPrimaryTerms,
		},
		read: func(r *reader) FrsPrimaryInput {
			return FrsPrimaryInput{
				Female:    r.flag("female"),
				Age:       r.num("index_age"),
				TotChol:   r.num("chol_tot"),
				HDL:       r.num("chol_hdl"),
				SBP:       r.num("sbp"),
				HtnTreat:  r.flag("htn_treat"),
				CurSmoker: r.flag("cur_smoke"),
				Diabetes:  r.flag("dm"),
			}
		},
		build: frsPrimaryVector,
		risk:  FrsPrimaryRisk,
	}
}
