package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
	"github.com/synaptica-ai/cvdrisk/pkg/survival"
)

// QDiabetes heart failure equations, https://qdiabetes.org/heart-failure/src.php
//
// Continuous covariates pass through sex-specific fractional polynomials and
// are centred; diabetes duration, smoking and ethnicity add categorical
// offsets. survival is indexed by whole years 1..15.
type qdiabetesCoef struct {
	survival [16]float64
	center   []float64
	beta     []float64
	diabDur  [5]float64
	smoke    [5]float64
	ethnic   [10]float64
	fracPoly func(bmi, hba1c, sbp float64) [6]float64
}

var qdiabetesFemale = qdiabetesCoef{
	survival: [16]float64{
		0,
		0.997221827507019, 0.994604170322418, 0.991730570793152, 0.988543510437012, 0.985216200351715,
		0.981507956981659, 0.977895379066467, 0.974181711673737, 0.969876766204834, 0.964927375316620,
		0.959847927093506, 0.954125642776489, 0.948961555957794, 0.942851066589355, 0.936939239501953,
	},
	center: []float64{
		61.116180419921875, 0.322399437427521, 0.567802309989929, 2.584567546844482,
		-1.227098584175110, 4.192868709564209, 0.847070097923279, 0.331943601369858,
		0, 0, 0, 0,
	},
	beta: []float64{
		0.0736700412014007770000000,
		23.9487096235408750000000000,
		-31.8537791574232610000000000,
		-0.3252572926061894600000000,
		-0.2171976293919814200000000,
		0.0364104203967467660000000,
		23.4410780063591200000000000,
		10.4551225345768600000000000,
		0.8874477721127933500000000,
		0.6730365919558813900000000,
		0.4923479055010733200000000,
		0.3211215613581965800000000,
	},
	diabDur: [5]float64{
		0,
		0.3734895516724550100000000,
		0.4272400863870609000000000,
		0.5445060839784665600000000,
		0.6642326175899047100000000,
	},
	smoke: [5]float64{
		0,
		0.0967091332233832450000000,
		0.2821028058053606800000000,
		0.4215942284438172800000000,
		0.5530645745533893100000000,
	},
	ethnic: [10]float64{
		0,
		0,
		0.0121268111795051550000000,
		0.0890841282777889020000000,
		-0.0630035742862442990000000,
		-0.0404902105074095640000000,
		-0.3120678051325643200000000,
		-0.0927498388096287120000000,
		-0.2528100297781567500000000,
		-0.1973637260842228100000000,
	},
	fracPoly: func(bmi, hba1c, sbp float64) [6]float64 {
		b, h, s := bmi/10, hba1c/100, sbp/100
		return [6]float64{
			math.Pow(b, -1),
			math.Pow(b, -0.5),
			math.Pow(h, -2),
			math.Pow(h, -2) * math.Log(h),
			math.Pow(s, -0.5),
			math.Log(s),
		}
	},
}

var qdiabetesMale = qdiabetesCoef{
	survival: [16]float64{
		0,
		0.996442258358002, 0.993097066879272, 0.989732027053833, 0.985953390598297, 0.981611728668213,
		0.977198719978333, 0.972434043884277, 0.967397689819336, 0.961909413337708, 0.956551969051361,
		0.950842618942261, 0.943948566913605, 0.936877191066742, 0.928543448448181, 0.920696020126343,
	},
	center: []float64{
		59.082637786865234, 0.113395698368549, 1.088435888290405, 2.458636045455933,
		-1.105902791023254, 4.528943061828613, 0.326042562723160, 1.177061676979065,
		0, 0, 0, 0,
	},
	beta: []float64{
		0.0670714089231315420000000,
		7.1099014255385811000000000,
		2.9247387283215707000000000,
		-0.2614980716613777300000000,
		-0.1671878402926073600000000,
		0.0277371549183472870000000,
		-12.3361286873001800000000000,
		21.4821781929691690000000000,
		0.7273530624131829800000000,
		0.7845250801959688900000000,
		0.5737129078201175200000000,
		0.1776151674711740600000000,
	},
	diabDur: [5]float64{
		0,
		0.2511561621551418000000000,
		0.3849557918896515700000000,
		0.4013874319025841900000000,
		0.5409884571186193100000000,
	},
	smoke: [5]float64{
		0,
		0.0309188274582469360000000,
		0.2901783652136286600000000,
		0.2975987602015507900000000,
		0.4131820986096286800000000,
	},
	ethnic: [10]float64{
		0,
		0,
		-0.0598115842149627780000000,
		-0.0836282579919801760000000,
		0.1318138372122178200000000,
		-0.2584741955649905200000000,
		-0.2588961117898153600000000,
		-0.3878450613072409500000000,
		-0.8990278720741535800000000,
		-0.3065306136566966500000000,
	},
	fracPoly: func(bmi, hba1c, sbp float64) [6]float64 {
		b, h, s := bmi/10, hba1c/100, sbp/100
		return [6]float64{
			math.Pow(b, -2),
			math.Log(b),
			math.Pow(h, -2),
			math.Pow(h, -2) * math.Log(h),
			math.Log(s),
			math.Pow(s, 0.5),
		}
	},
}

const (
	defaultQDiabetesHorizon = 5
	maxQDiabetesHorizon     = 15

	// Ethnicity indices into the published table.
	qdEthnicWhite      = 0
	qdEthnicOtherAsian = 5
	qdEthnicBlackAfr   = 7
)

var qdiabetesTerms = []string{
	"index_age", "bmi_1", "bmi_2", "hba1c_1", "hba1c_2", "tchdl", "sbp_1", "sbp_2",
	"afib", "cvd_hist", "renal", "dm_type1",
	"diab_dur_cat", "smoke_cat", "ethnic_cat",
}

type QDiabetesInput struct {
	Age           float64
	Male          bool
	BMI           float64
	DiabDur       float64
	AC            bool
	EastAsian     bool
	HbA1c         float64 // mmol/mol
	TCHDL         float64
	SBP           float64
	HeavySmoker   bool
	ModerateSmoke bool
	LightSmoker   bool
	PrevSmoker    bool
	AFib          bool
	CVDHistory    bool
	Renal         bool
	Type1         bool
}

type qdiabetesCategories struct {
	diabDur, smoke, ethnic int
}

func qdiabetesDiabDurCat(years float64) int {
	switch {
	case years < 1:
		return 0
	case years <= 3:
		return 1
	case years <= 6:
		return 2
	case years <= 10:
		return 3
	default:
		return 4
	}
}

func qdiabetesSmokeCat(in QDiabetesInput) int {
	switch {
	case in.HeavySmoker:
		return 4
	case in.ModerateSmoke:
		return 3
	case in.LightSmoker:
		return 2
	case in.PrevSmoker:
		return 1
	default:
		return 0
	}
}

func qdiabetesEthnicCat(in QDiabetesInput) int {
	switch {
	case in.AC:
		return qdEthnicBlackAfr
	case in.EastAsian:
		return qdEthnicOtherAsian
	default:
		return qdEthnicWhite
	}
}

func qdiabetesCoefFor(male bool) *qdiabetesCoef {
	if male {
		return &qdiabetesMale
	}
	return &qdiabetesFemale
}

// qdiabetesCentered returns the centred continuous and binary covariates along
// with the categorical indices.
func qdiabetesCentered(in QDiabetesInput) ([]float64, qdiabetesCategories) {
	coef := qdiabetesCoefFor(in.Male)
	fp := coef.fracPoly(
		sanitize.BMI(in.BMI),
		sanitize.HbA1c(in.HbA1c, sanitize.MmolPerMol),
		sanitize.BloodPressure(in.SBP),
	)
	x := []float64{
		sanitize.Age(in.Age),
		fp[0], fp[1], fp[2], fp[3],
		sanitize.TCHDL(in.TCHDL),
		fp[4], fp[5],
		b2f(in.AFib),
		b2f(in.CVDHistory),
		b2f(in.Renal),
		b2f(in.Type1),
	}
	for i := range x {
		x[i] -= coef.center[i]
	}
	return x, qdiabetesCategories{
		diabDur: qdiabetesDiabDurCat(sanitize.DiabetesDuration(in.DiabDur, 0)),
		smoke:   qdiabetesSmokeCat(in),
		ethnic:  qdiabetesEthnicCat(in),
	}
}

func qdiabetesVector(in QDiabetesInput) ([]string, []float64) {
	x, cats := qdiabetesCentered(in)
	return qdiabetesTerms, append(x, float64(cats.diabDur), float64(cats.smoke), float64(cats.ethnic))
}

// QDiabetesRisk returns the heart failure risk over 1 to 15 years.
func QDiabetesRisk(in QDiabetesInput, years int) (float64, error) {
	if years < 1 || years > maxQDiabetesHorizon {
		return 0, unsupported("qdiabetes", "horizon", years)
	}
	coef := qdiabetesCoefFor(in.Male)
	x, cats := qdiabetesCentered(in)
	a, err := survival.Dot(x, coef.beta)
	if err != nil {
		return 0, err
	}
	a += coef.diabDur[cats.diabDur] + coef.smoke[cats.smoke] + coef.ethnic[cats.ethnic]
	return 1 - math.Pow(coef.survival[years], math.Exp(a)), nil
}

// NewQDiabetes reads dm_type1 when present; records without it are scored
// as type 2.
func NewQDiabetes(horizon int) (Model, error) {
	if horizon == 0 {
		horizon = defaultQDiabetesHorizon
	}
	if horizon < 1 || horizon > maxQDiabetesHorizon {
		return nil, unsupported("qdiabetes", "horizon", horizon)
	}
	return &equation[QDiabetesInput]{
		descriptor: descriptor{
			name: "qdiabetes",
			required: []string{
				"index_age", "male", "bmi", "diab_dur", "AC", "EAsian", "hba1c_mmol", "tchdl",
				"sbp", "heavy_smoke", "moderate_smoke", "light_smoke", "prev_smoke", "afib",
				"cvd_hist", "renal",
			},
			terms: qdiabetesTerms,
		},
		read: func(r *reader) QDiabetesInput {
			return QDiabetesInput{
				Age:           r.num("index_age"),
				Male:          r.flag("male"),
				BMI:           r.num("bmi"),
				DiabDur:       r.num("diab_dur"),
				AC:            r.flag("AC"),
				EastAsian:     r.flag("EAsian"),
				HbA1c:         r.num("hba1c_mmol"),
				TCHDL:         r.num("tchdl"),
				SBP:           r.num("sbp"),
				HeavySmoker:   r.flag("heavy_smoke"),
				ModerateSmoke: r.flag("moderate_smoke"),
				LightSmoker:   r.flag("light_smoke"),
				PrevSmoker:    r.flag("prev_smoke"),
				AFib:          r.flag("afib"),
				CVDHistory:    r.flag("cvd_hist"),
				Renal:         r.flag("renal"),
				Type1:         r.optionalFlag("dm_type1"),
			}
		},
		build: qdiabetesVector,
		risk: func(in QDiabetesInput) (float64, error) {
			return QDiabetesRisk(in, horizon)
		},
	}, nil
}
