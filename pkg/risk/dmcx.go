package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// DMCx risk engine for Chinese patients: Wan et al., Diabetes Obes Metab
// 2018;20(2):309-318. The zero entries are terms the sex-specific fit dropped.
var (
	dmcxMale = coxTable{
		beta: []float64{
			0.0859769,  // age
			0.1869697,  // 60 <= egfr < 90
			0.4899165,  // 30 <= egfr < 60
			0.9179563,  // egfr < 30
			0.3523520,  // tc/hdl
			0.1324850,  // log(acr + 1), mg/mmol
			0.8802682,  // smoker
			0.0104963,  // diabetes duration
			-0.0247520, // sbp
			0.2192236,  // hba1c
			0.2036549,  // antihypertensives
			-0.0625381, // dbp
			-0.0736360, // bmi
			0.2543436,  // insulin
			0.0003717,  // dbp^2
			0.0016522,  // bmi^2
			0.0001058,  // sbp^2
			0.0000000,  // hba1c^2
			-0.0036788, // age x tc/hdl
			-0.0024694, // age x hba1c
			-0.0093979, // age x smoker
			0.0000000,  // oral glucose-lowering drugs
		},
		s0: 0.9130526,
		b0: 2.064357,
	}
	dmcxFemale = coxTable{
		beta: []float64{
			0.0824519,
			0.1510527,
			0.5176759,
			1.0102600,
			0.3722201,
			0.1222478,
			0.5551439,
			0.0120690,
			0.0043558,
			-0.3121153,
			0.2888684,
			-0.0807093,
			-0.0614234,
			0.3685551,
			0.0005025,
			0.0014684,
			0.0000000,
			0.0218833,
			-0.0043098,
			0.0000000,
			0.0000000,
			0.1880766,
		},
		s0: 0.9388678,
		b0: 2.007179,
	}
)

var dmcxTerms = []string{
	"index_age", "egfr_60_90", "egfr_30_60", "egfr_30", "tchdl", "acr_log", "cur_smoke",
	"diab_dur", "sbp", "hba1c", "htn_treat", "dbp", "bmi", "insulin", "dbp_sq", "bmi_sq",
	"sbp_sq", "hba1c_sq", "age_tchdl", "age_hba1c", "age_smoke", "a_glucose",
}

type DmcxInput struct {
	Age      float64
	EGFR     float64
	TCHDL    float64
	ACR      float64 // mg/mmol
	Smoker   bool
	DiabDur  float64
	Female   bool
	SBP      float64
	DBP      float64
	HbA1c    float64 // %
	HtnTreat bool
	BMI      float64
	Insulin  bool
	AGlucose bool
}

func dmcxVector(in DmcxInput) ([]string, []float64) {
	age := sanitize.Age(in.Age)
	egfr := sanitize.EGFR(in.EGFR)
	tchdl := sanitize.TCHDL(in.TCHDL)
	smoke := b2f(in.Smoker)
	sbp := sanitize.BloodPressure(in.SBP)
	dbp := sanitize.BloodPressure(in.DBP)
	hba1c := sanitize.HbA1c(in.HbA1c, sanitize.Percent)
	bmi := sanitize.BMI(in.BMI)
	return dmcxTerms, []float64{
		age,
		b2f(egfr >= 60 && egfr < 90),
		b2f(egfr >= 30 && egfr < 60),
		b2f(egfr < 30),
		tchdl,
		math.Log(sanitize.ACR(in.ACR, sanitize.MgPerMmol) + 1),
		smoke,
		sanitize.DiabetesDuration(in.DiabDur, 0),
		sbp,
		hba1c,
		b2f(in.HtnTreat),
		dbp,
		bmi,
		b2f(in.Insulin),
		dbp * dbp,
		bmi * bmi,
		sbp * sbp,
		hba1c * hba1c,
		age * tchdl,
		age * hba1c,
		age * smoke,
		b2f(in.AGlucose),
	}
}

// DmcxRisk returns the 5-year cardiovascular risk.
func DmcxRisk(in DmcxInput) (float64, error) {
	_, x := dmcxVector(in)
	if in.Female {
		return dmcxFemale.risk(x)
	}
	return dmcxMale.risk(x)
}

func NewDmcx() Model {
	return &equation[DmcxInput]{
		descriptor: descriptor{
			name: "dmcx",
			required: []string{
				"index_age", "egfr", "tchdl", "albumin_creat_mgmmol", "cur_smoke", "diab_dur",
				"female", "sbp", "dbp", "hba1c", "htn_treat", "bmi", "insulin", "a_glucose",
			},
			terms: dmcxTerms,
		},
		read: func(r *reader) DmcxInput {
			return DmcxInput{
				Age:      r.num("index_age"),
				EGFR:     r.num("egfr"),
				TCHDL:    r.num("tchdl"),
				ACR:      r.num("albumin_creat_mgmmol"),
				Smoker:   r.flag("cur_smoke"),
				DiabDur:  r.num("diab_dur"),
				Female:   r.flag("female"),
				SBP:      r.num("sbp"),
				DBP:      r.num("dbp"),
				HbA1c:    r.num("hba1c"),
				HtnTreat: r.flag("htn_treat"),
				BMI:      r.num("bmi"),
				Insulin:  r.flag("insulin"),
				AGlucose: r.flag("a_glucose"),
			}
		},
		build: dmcxVector,
		risk:  DmcxRisk,
	}
}
