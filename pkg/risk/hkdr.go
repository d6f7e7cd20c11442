package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// Hong Kong Diabetes Registry equations (Yang et al., Am J Cardiol
// 2008;101:596-601 and companion papers). CHD and HF carry a shrinkage factor.
var (
	hkdrCHDCox = coxTable{
		beta: []float64{
			0.0267,  // age
			-0.3536, // female
			0.4373,  // current smoker
			0.0403,  // diabetes duration
			-0.4808, // log10 egfr
			0.1232,  // log10(1 + acr), mg/mmol
			0.2644,  // non-HDL (mmol/L)
		},
		s0:     0.9616,
		b0:     0.7082,
		shrink: 0.9440,
	}
	hkdrHFBeta = []float64{
		0.0709,  // age
		0.0627,  // bmi
		0.1363,  // hba1c (%)
		0.9915,  // log10(1 + acr), mg/mmol
		-0.3606, // hemoglobin (g/dL)
		0.8161,  // chd
	}
	hkdrHFMale   = coxTable{beta: hkdrHFBeta, s0: 0.9888, b0: 2.3961, shrink: 0.9744}
	hkdrHFFemale = coxTable{beta: hkdrHFBeta, s0: 0.9809, b0: 2.3961, shrink: 0.9744}
	hkdrStrokeCox = coxTable{
		beta: []float64{
			0.0634, // age
			0.0897, // hba1c (%)
			0.5314, // log10 acr
			0.5636, // chd
		},
		s0: 0.9707,
		b0: 4.5674,
	}
)

var (
	hkdrCHDTerms    = []string{"index_age", "female", "cur_smoke", "diab_dur", "egfr_log", "acr_log", "nonhdl_mmol"}
	hkdrHFTerms     = []string{"index_age", "bmi", "hba1c", "acr_log", "hb", "chd"}
	hkdrStrokeTerms = []string{"index_age", "hba1c", "acr_log", "chd"}
)

type HkdrCHDInput struct {
	Age       float64
	Female    bool
	CurSmoker bool
	DiabDur   float64
	EGFR      float64
	ACR       float64 // mg/mmol
	NonHDL    float64 // mmol/L
}

type HkdrHFInput struct {
	Female     bool
	Age        float64
	BMI        float64
	HbA1c      float64 // %
	ACR        float64 // mg/mmol
	Hemoglobin float64 // g/dL
	CHD        bool
}

type HkdrStrokeInput struct {
	Age   float64
	HbA1c float64 // %
	ACR   float64 // mg/mmol
	CHD   bool
}

func hkdrCHDVector(in HkdrCHDInput) ([]string, []float64) {
	return hkdrCHDTerms, []float64{
		sanitize.Age(in.Age),
		b2f(in.Female),
		b2f(in.CurSmoker),
		sanitize.DiabetesDuration(in.DiabDur, 0),
		math.Log10(sanitize.EGFR(in.EGFR)),
		math.Log10(1 + sanitize.ACR(in.ACR, sanitize.MgPerMmol)),
		sanitize.NonHDL(in.NonHDL),
	}
}

func hkdrHFVector(in HkdrHFInput) ([]string, []float64) {
	return hkdrHFTerms, []float64{
		sanitize.Age(in.Age),
		sanitize.BMI(in.BMI),
		sanitize.HbA1c(in.HbA1c, sanitize.Percent),
		math.Log10(1 + sanitize.ACR(in.ACR, sanitize.MgPerMmol)),
		sanitize.Hemoglobin(in.Hemoglobin),
		b2f(in.CHD),
	}
}

func hkdrStrokeVector(in HkdrStrokeInput) ([]string, []float64) {
	return hkdrStrokeTerms, []float64{
		sanitize.Age(in.Age),
		sanitize.HbA1c(in.HbA1c, sanitize.Percent),
		math.Log10(sanitize.ACR(in.ACR, sanitize.MgPerMmol)),
		b2f(in.CHD),
	}
}

// HkdrCHDRisk returns the 5-year coronary heart disease risk.
func HkdrCHDRisk(in HkdrCHDInput) (float64, error) {
	_, x := hkdrCHDVector(in)
	return hkdrCHDCox.risk(x)
}

// HkdrHFRisk returns the 5-year heart failure risk.
func HkdrHFRisk(in HkdrHFInput) (float64, error) {
	_, x := hkdrHFVector(in)
	if in.Female {
		return hkdrHFFemale.risk(x)
	}
	return hkdrHFMale.risk(x)
}

// HkdrStrokeRisk returns the 5-year stroke risk.
func HkdrStrokeRisk(in HkdrStrokeInput) (float64, error) {
	_, x := hkdrStrokeVector(in)
	return hkdrStrokeCox.risk(x)
}

func NewHkdrCHD() Model {
	return &equation[HkdrCHDInput]{
		descriptor: descriptor{
			name:     "hkdr_chd",
			required: []string{"index_age", "female", "cur_smoke", "diab_dur", "egfr", "albumin_creat_mgmmol", "nonhdl_mmol"},
			terms:    hkdrCHDTerms,
		},
		read: func(r *reader) HkdrCHDInput {
			return HkdrCHDInput{
				Age:       r.num("index_age"),
				Female:    r.flag("female"),
				CurSmoker: r.flag("cur_smoke"),
				DiabDur:   r.num("diab_dur"),
				EGFR:      r.num("egfr"),
				ACR:       r.num("albumin_creat_mgmmol"),
				NonHDL:    r.num("nonhdl_mmol"),
			}
		},
		build: hkdrCHDVector,
		risk:  HkdrCHDRisk,
	}
}

func NewHkdrHF() Model {
	return &equation[HkdrHFInput]{
		descriptor: descriptor{
			name:     "hkdr_hf",
			required: []string{"female", "index_age", "bmi", "hba1c", "albumin_creat_mgmmol", "hb", "chd"},
			terms:    hkdrHFTerms,
		},
		read: func(r *reader) HkdrHFInput {
			return HkdrHFInput{
				Female:     r.flag("female"),
				Age:        r.num("index_age"),
				BMI:        r.num("bmi"),
				HbA1c:      r.num("hba1c"),
				ACR:        r.num("albumin_creat_mgmmol"),
				Hemoglobin: r.num("hb"),
				CHD:        r.flag("chd"),
			}
		},
		build: hkdrHFVector,
		risk:  HkdrHFRisk,
	}
}

func NewHkdrStroke() Model {
	return &equation[HkdrStrokeInput]{
		descriptor: descriptor{
			name:     "hkdr_stroke",
			required: []string{"index_age", "hba1c", "albumin_creat_mgmmol", "chd"},
			terms:    hkdrStrokeTerms,
		},
		read: func(r *reader) HkdrStrokeInput {
			return HkdrStrokeInput{
				Age:   r.num("index_age"),
				HbA1c: r.num("hba1c"),
				ACR:   r.num("albumin_creat_mgmmol"),
				CHD:   r.flag("chd"),
			}
		},
		build: hkdrStrokeVector,
		risk:  HkdrStrokeRisk,
	}
}
