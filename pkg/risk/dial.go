package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// DIAL lifetime model: Berkelmans et al., Eur Heart J 2019;40(34):2899-2906.
// Baseline survival is the one-year survival at the patient's age.
var dialAgeS0 = map[int]float64{
	30: 0.99828, 31: 1.00000, 32: 1.00000, 33: 0.99883, 34: 1.00000,
	35: 0.99910, 36: 0.99857, 37: 0.99825, 38: 1.00000, 39: 1.00000,
	40: 0.99929, 41: 0.99815, 42: 0.99922, 43: 0.99824, 44: 0.99781,
	45: 0.99770, 46: 0.99857, 47: 0.99807, 48: 0.99757, 49: 0.99696,
	50: 0.99793, 51: 0.99722, 52: 0.99692, 53: 0.99684, 54: 0.99626,
	55: 0.99621, 56: 0.99647, 57: 0.99702, 58: 0.99659, 59: 0.99665,
	60: 0.99649, 61: 0.99659, 62: 0.99676, 63: 0.99670, 64: 0.99722,
	65: 0.99700, 66: 0.99712, 67: 0.99738, 68: 0.99718, 69: 0.99726,
	70: 0.99741, 71: 0.99789, 72: 0.99782, 73: 0.99772, 74: 0.99784,
	75: 0.99792, 76: 0.99796, 77: 0.99800, 78: 0.99797, 79: 0.99811,
	80: 0.99828, 81: 0.99822, 82: 0.99834, 83: 0.99832, 84: 0.99845,
	85: 0.99852, 86: 0.99863, 87: 0.99875, 88: 0.99873, 89: 0.99894,
	90: 0.99907, 91: 0.99913, 92: 0.99923, 93: 0.99943, 94: 0.99955,
}

const (
	dialMinTableAge = 30
	dialMaxAge      = 94
)

var dialBeta = []float64{
	-2.432709,      // male
	0.035983,       // age x male
	-0.08603257,    // bmi - 30
	0.001155281,    // bmi^2 - 30^2
	-0.6910912,     // current smoker
	0.01127745,     // age x smoker
	-0.02365684,    // sbp - 140
	0.00009386,     // sbp^2 - 140^2
	0.2632915,      // non-HDL - 3.8
	-0.02153226,    // non-HDL^2 - 3.8^2
	0.02274024,     // hba1c - 50
	-0.0001292752,  // hba1c^2 - 50^2
	-0.01172895,    // egfr - 80
	-0.00002497421, // egfr^2 - 80^2
	0.1654953,      // microalbuminuria
	0.2061535,      // macroalbuminuria
	0.01650379,     // diabetes duration
	-0.4734714,     // history of cvd
	0.04268836,     // age x cvd
	-0.8525590,     // insulin
	0.01344922,     // age x insulin
	1,              // log hazard ratio of intended treatment
	1.763233,       // high-risk country
}

var dialTerms = []string{
	"male", "age_male", "bmi_30", "bmi_2_30", "cur_smoke", "age_smoke", "sbp_140",
	"sbp_2_140", "nonhdl_38", "nonhdl_2_38", "hba1c_50", "hba1c_2_50", "egfr_80",
	"egfr_2_80", "microalbum", "macroalbum", "diab_dur", "cvd_hist", "age_cvd",
	"insulin", "age_insulin", "treatment_log_hr", "high_risk_country",
}

type DialInput struct {
	Male         bool
	Age          float64
	BMI          float64
	CurSmoker    bool
	SBP          float64
	NonHDL       float64 // mmol/L
	HbA1c        float64 // mmol/mol
	EGFR         float64
	Microalbumin bool
	Macroalbumin bool
	DiabDur      float64
	CVDHistory   bool
	Insulin      bool

	TreatmentLogHR  float64
	HighRiskCountry bool
}

func dialAge(age float64) float64 {
	return math.Min(sanitize.Age(age), dialMaxAge)
}

// dialBaseline looks up the whole-year age, bounded to the table.
func dialBaseline(age float64) float64 {
	year := int(math.Floor(dialAge(age)))
	if year < dialMinTableAge {
		year = dialMinTableAge
	}
	return dialAgeS0[year]
}

func dialVector(in DialInput) ([]string, []float64) {
	age := dialAge(in.Age)
	male := b2f(in.Male)
	smoke := b2f(in.CurSmoker)
	cvd := b2f(in.CVDHistory)
	insulin := b2f(in.Insulin)
	bmi := sanitize.BMI(in.BMI)
	sbp := sanitize.BloodPressure(in.SBP)
	nonHDL := sanitize.NonHDL(in.NonHDL)
	hba1c := sanitize.HbA1c(in.HbA1c, sanitize.MmolPerMol)
	egfr := sanitize.EGFR(in.EGFR)
	return dialTerms, []float64{
		male,
		age * male,
		bmi - 30,
		bmi*bmi - 30*30,
		smoke,
		age * smoke,
		sbp - 140,
		sbp*sbp - 140*140,
		nonHDL - 3.8,
		nonHDL*nonHDL - 3.8*3.8,
		hba1c - 50,
		hba1c*hba1c - 50*50,
		egfr - 80,
		egfr*egfr - 80*80,
		b2f(in.Microalbumin),
		b2f(in.Macroalbumin),
		math.RoundToEven(sanitize.DiabetesDuration(in.DiabDur, 1)),
		cvd,
		age * cvd,
		insulin,
		age * insulin,
		in.TreatmentLogHR,
		b2f(in.HighRiskCountry),
	}
}

// DialRisk returns the one-year cardiovascular risk at the patient's age.
func DialRisk(in DialInput) (float64, error) {
	_, x := dialVector(in)
	return coxTable{beta: dialBeta, s0: dialBaseline(in.Age)}.risk(x)
}

func NewDial(treatmentLogHR float64, highRiskCountry bool) Model {
	return &equation[DialInput]{
		descriptor: descriptor{
			name: "dial",
			required: []string{
				"male", "index_age", "bmi", "cur_smoke", "sbp", "nonhdl_mmol", "hba1c_mmol",
				"egfr", "microalbum", "macroalbum", "diab_dur", "cvd_hist", "insulin",
			},
			terms: dialTerms,
		},
		read: func(r *reader) DialInput {
			return DialInput{
				Male:            r.flag("male"),
				Age:             r.num("index_age"),
				BMI:             r.num("bmi"),
				CurSmoker:       r.flag("cur_smoke"),
				SBP:             r.num("sbp"),
				NonHDL:          r.num("nonhdl_mmol"),
				HbA1c:           r.num("hba1c_mmol"),
				EGFR:            r.num("egfr"),
				Microalbumin:    r.flag("microalbum"),
				Macroalbumin:    r.flag("macroalbum"),
				DiabDur:         r.num("diab_dur"),
				CVDHistory:      r.flag("cvd_hist"),
				Insulin:         r.flag("insulin"),
				TreatmentLogHR:  treatmentLogHR,
				HighRiskCountry: highRiskCountry,
			}
		},
		build: dialVector,
		risk:  DialRisk,
	}
}
