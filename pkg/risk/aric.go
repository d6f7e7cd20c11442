package risk

import "github.com/synaptica-ai/cvdrisk/pkg/sanitize"

// ARIC coronary heart disease calculator, https://aricnews.net/riskcalc/html/RC1.html
var (
	aricFemale = coxTable{
		beta: []float64{-0.03301, 0.00041, 0.37361, 0.72618, 1.10225, 0.45810, 0.55162, 0.01314, 0.48246, 0.78920},
		s0:   0.97507,
		b0:   0.99852,
	}
	aricMale = coxTable{
		beta: []float64{0.22777, -0.00175, 0.49310, 0.46038, 0.90874, 0.80719, -0.25732, 0.00437, -0.05461, 0.15208},
		s0:   0.93299,
		b0:   7.75110,
	}
)

var aricTerms = []string{
	"index_age", "age_sq", "Cauc", "tc_279", "tc_280", "hdl_45", "hdl_49",
	"sbp", "htn_treat", "cur_smoke",
}

type AricInput struct {
	Age       float64
	Male      bool
	Cauc      bool
	TotChol   float64 // mg/dL
	HDL       float64 // mg/dL
	SBP       float64
	HtnTreat  bool
	CurSmoker bool
}

func aricVector(in AricInput) ([]string, []float64) {
	age := sanitize.Age(in.Age)
	tc := sanitize.TotalCholesterol(in.TotChol, sanitize.MgPerDL)
	hdl := sanitize.HDL(in.HDL, sanitize.MgPerDL)
	return aricTerms, []float64{
		age,
		age * age,
		b2f(in.Cauc),
		b2f(tc >= 200 && tc <= 279),
		b2f(tc >= 280),
		b2f(hdl < 45),
		b2f(hdl >= 45 && hdl <= 49),
		sanitize.BloodPressure(in.SBP),
		b2f(in.HtnTreat),
		b2f(in.CurSmoker),
	}
}

// AricRisk returns the 10-year coronary heart disease risk.
func AricRisk(in AricInput) (float64, error) {
	_, x := aricVector(in)
	if in.Male {
		return aricMale.risk(x)
	}
	return aricFemale.risk(x)
}

func NewAric() Model {
	return &equation[AricInput]{
		descriptor: descriptor{
			name:     "aric",
			required: []string{"index_age", "male", "Cauc", "chol_tot", "chol_hdl", "sbp", "htn_treat", "cur_smoke"},
			terms:    aricTerms,
		},
		read: func(r *reader) AricInput {
			return AricInput{
				Age:       r.num("index_age"),
				Male:      r.flag("male"),
				Cauc:      r.flag("Cauc"),
				TotChol:   r.num("chol_tot"),
				HDL:       r.num("chol_hdl"),
				SBP:       r.num("sbp"),
				HtnTreat:  r.flag("htn_treat"),
				CurSmoker: r.flag("cur_smoke"),
			}
		},
		build: aricVector,
		risk:  AricRisk,
	}
}
