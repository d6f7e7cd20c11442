package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// ADVANCE: Kengne et al., Eur J Cardiovasc Prev Rehabil 2011;18(3):393-398.
var advanceCox = coxTable{
	beta: []float64{
		0.06187, // age at diagnosis
		-0.4736, // female
		0.08263, // diabetes duration
		0.00665, // pulse pressure
		0.38248, // retinopathy
		0.60160, // atrial fibrillation
		0.09945, // hba1c (%)
		0.19341, // log albumin:creatinine (mg/g)
		0.12619, // non-HDL (mmol/L)
		0.24219, // treated hypertension
	},
	s0: 0.951044,
	b0: 6.52910152,
}

var advanceTerms = []string{
	"diab_age", "female", "diab_dur", "pp", "retinopathy", "afib",
	"hba1c", "albumin_creat_log", "nonhdl_mmol", "htn_treat",
}

type AdvanceInput struct {
	DiabAge       float64
	Female        bool
	DiabDur       float64
	PulsePressure float64
	Retinopathy   bool
	AFib          bool
	HbA1c         float64 // %
	ACR           float64 // mg/g
	NonHDL        float64 // mmol/L
	HtnTreat      bool
}

func advanceVector(in AdvanceInput) ([]string, []float64) {
	return advanceTerms, []float64{
		in.DiabAge,
		b2f(in.Female),
		sanitize.DiabetesDuration(in.DiabDur, 0),
		sanitize.PulsePressure(in.PulsePressure),
		b2f(in.Retinopathy),
		b2f(in.AFib),
		sanitize.HbA1c(in.HbA1c, sanitize.Percent),
		math.Log(sanitize.ACR(in.ACR, sanitize.MgPerG)),
		sanitize.NonHDL(in.NonHDL),
		b2f(in.HtnTreat),
	}
}

// AdvanceRisk returns the 4-year cardiovascular risk.
func AdvanceRisk(in AdvanceInput) (float64, error) {
	_, x := advanceVector(in)
	return advanceCox.risk(x)
}

func NewAdvance() Model {
	return &equation[AdvanceInput]{
		descriptor: descriptor{
			name: "advance",
			required: []string{
				"diab_age", "female", "diab_dur", "pp", "retinopathy", "afib",
				"hba1c", "albumin_creat", "nonhdl_mmol", "htn_treat",
			},
			terms: advanceTerms,
		},
		read: func(r *reader) AdvanceInput {
			return AdvanceInput{
				DiabAge:       r.num("diab_age"),
				Female:        r.flag("female"),
				DiabDur:       r.num("diab_dur"),
				PulsePressure: r.num("pp"),
				Retinopathy:   r.flag("retinopathy"),
				AFib:          r.flag("afib"),
				HbA1c:         r.num("hba1c"),
				ACR:           r.num("albumin_creat"),
				NonHDL:        r.num("nonhdl_mmol"),
				HtnTreat:      r.flag("htn_treat"),
			}
		},
		build: advanceVector,
		risk:  AdvanceRisk,
	}
}
