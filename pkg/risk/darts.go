package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
	"github.com/synaptica-ai/cvdrisk/pkg/survival"
)

// DARTS coronary heart disease score: Donnan et al., Diabetes Care 2006;29:1231-36.
var dartsBeta = []float64{
	-0.287, // log diabetes duration
	-0.026, // age at diagnosis
	-0.149, // total cholesterol (mmol/L)
	0.011,  // former smoker
	-0.268, // current smoker
	-0.308, // male
	0.438,  // log hba1c (%)
	-0.712, // log hba1c x follow-up beyond 5 years
	-0.010, // sbp
	-1.292, // treated hypertension
	0.009,  // sbp x treated hypertension
	1.241,  // height (m)
}

const (
	dartsIntercept      = 11.262
	dartsSigma          = 0.587
	defaultDartsHorizon = 5
)

var dartsTerms = []string{
	"diab_dur_log", "diab_age", "chol_tot_mmol", "prev_smoke", "cur_smoke", "male",
	"hba1c_log", "hba1c_log_follow5", "sbp", "htn_treat", "sbp_htn", "height_m",
}

type DartsInput struct {
	DiabAge    float64
	DiabDur    float64
	TotChol    float64 // mmol/L
	PrevSmoker bool
	CurSmoker  bool
	Male       bool
	HbA1c      float64 // %
	Follow5    bool
	SBP        float64
	HtnTreat   bool
	Height     float64 // m
}

func dartsVector(in DartsInput) ([]string, []float64) {
	logA1c := math.Log(sanitize.HbA1c(in.HbA1c, sanitize.Percent))
	sbp := sanitize.BloodPressure(in.SBP)
	htn := b2f(in.HtnTreat)
	return dartsTerms, []float64{
		math.Log(sanitize.DiabetesDuration(in.DiabDur, 1)),
		in.DiabAge,
		sanitize.TotalCholesterol(in.TotChol, sanitize.MmolPerL),
		b2f(in.PrevSmoker),
		b2f(in.CurSmoker),
		b2f(in.Male),
		logA1c,
		logA1c * b2f(in.Follow5),
		sbp,
		htn,
		sbp * htn,
		sanitize.Height(in.Height, sanitize.Metres),
	}
}

// DartsRisk returns the coronary heart disease risk over years. The Weibull
// AFT link yields NaN if the linear predictor is not positive.
func DartsRisk(in DartsInput, years float64) (float64, error) {
	if years <= 0 {
		return 0, unsupported("darts", "horizon", years)
	}
	_, x := dartsVector(in)
	return survival.WeibullATF(x, dartsBeta, dartsIntercept, dartsSigma, years)
}

// NewDarts returns DARTS over horizon years, 5 when horizon is zero.
func NewDarts(horizon int) (Model, error) {
	if horizon == 0 {
		horizon = defaultDartsHorizon
	}
	if horizon < 0 {
		return nil, unsupported("darts", "horizon", horizon)
	}
	return &equation[DartsInput]{
		descriptor: descriptor{
			name: "darts",
			required: []string{
				"diab_age", "diab_dur", "chol_tot_mmol", "prev_smoke", "cur_smoke", "male",
				"hba1c", "5y_follow", "sbp", "htn_treat", "height_m",
			},
			terms: dartsTerms,
		},
		read: func(r *reader) DartsInput {
			return DartsInput{
				DiabAge:    r.num("diab_age"),
				DiabDur:    r.num("diab_dur"),
				TotChol:    r.num("chol_tot_mmol"),
				PrevSmoker: r.flag("prev_smoke"),
				CurSmoker:  r.flag("cur_smoke"),
				Male:       r.flag("male"),
				HbA1c:      r.num("hba1c"),
				Follow5:    r.flag("5y_follow"),
				SBP:        r.num("sbp"),
				HtnTreat:   r.flag("htn_treat"),
				Height:     r.num("height_m"),
			}
		},
		build: dartsVector,
		risk: func(in DartsInput) (float64, error) {
			return DartsRisk(in, float64(horizon))
		},
	}, nil
}
