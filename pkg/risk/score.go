package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
	"github.com/synaptica-ai/cvdrisk/pkg/survival"
)

// SCORE 10-year fatal cardiovascular risk: Conroy et al., Eur Heart J
// 2003;24(11):987-1003. The risk is the sum of the CHD and non-CHD outcomes,
// each with a Weibull baseline s0(age) = exp(-exp(alpha) * (age-20)^p).
type scoreBaseline struct {
	alpha, p float64
}

type scoreStratum struct {
	chd, nonCHD scoreBaseline
}

var (
	scoreLowRiskMen    = scoreStratum{chd: scoreBaseline{-22.1, 4.71}, nonCHD: scoreBaseline{-26.7, 5.64}}
	scoreLowRiskWomen  = scoreStratum{chd: scoreBaseline{-29.8, 6.36}, nonCHD: scoreBaseline{-31.0, 6.62}}
	scoreHighRiskMen   = scoreStratum{chd: scoreBaseline{-21.0, 4.62}, nonCHD: scoreBaseline{-25.7, 5.47}}
	scoreHighRiskWomen = scoreStratum{chd: scoreBaseline{-28.7, 6.23}, nonCHD: scoreBaseline{-30.0, 6.42}}
	scoreCHDBeta       = []float64{0.71, 0.24, 0.018}
	scoreNonCHDBeta    = []float64{0.63, 0.02, 0.022}
)

const scoreMinAge = 20

var scoreTerms = []string{"index_age", "cur_smoke", "chol_6", "sbp_120"}

type ScoreInput struct {
	Female    bool
	Age       float64
	TotChol   float64 // mmol/L
	SBP       float64
	CurSmoker bool
}

func scoreStratumFor(female, lowRisk bool) scoreStratum {
	switch {
	case female && lowRisk:
		return scoreLowRiskWomen
	case female:
		return scoreHighRiskWomen
	case lowRisk:
		return scoreLowRiskMen
	default:
		return scoreHighRiskMen
	}
}

func (b scoreBaseline) survival(years float64) float64 {
	return math.Exp(-math.Exp(b.alpha) * math.Pow(years, b.p))
}

// tenYear is the conditional risk of dying between age and age+10.
func (b scoreBaseline) tenYear(age, w float64) float64 {
	scale := math.Exp(w)
	now := math.Pow(b.survival(age-20), scale)
	later := math.Pow(b.survival(age-10), scale)
	return 1 - later/now
}

func scoreVector(in ScoreInput) ([]string, []float64) {
	return scoreTerms, []float64{
		math.Max(sanitize.Age(in.Age), scoreMinAge),
		b2f(in.CurSmoker),
		sanitize.TotalCholesterol(in.TotChol, sanitize.MmolPerL) - 6,
		sanitize.BloodPressure(in.SBP) - 120,
	}
}

// ScoreRisk returns the 10-year fatal cardiovascular risk for a low-risk or
// high-risk European region, clamped to [0, 1].
func ScoreRisk(in ScoreInput, lowRisk bool) (float64, error) {
	stratum := scoreStratumFor(in.Female, lowRisk)
	_, v := scoreVector(in)
	age, x := v[0], v[1:]

	wCHD, err := survival.Dot(x, scoreCHDBeta)
	if err != nil {
		return 0, err
	}
	wNonCHD, err := survival.Dot(x, scoreNonCHDBeta)
	if err != nil {
		return 0, err
	}
	risk := stratum.chd.tenYear(age, wCHD) + stratum.nonCHD.tenYear(age, wNonCHD)
	return survival.Clamp(risk), nil
}

// NewScore selects the low-risk region baselines when lowRisk is set.
func NewScore(lowRisk bool) Model {
	return &equation[ScoreInput]{
		descriptor: descriptor{
			name:     "score",
			required: []string{"female", "index_age", "chol_tot_mmol", "sbp", "cur_smoke"},
			terms:    scoreTerms,
		},
		read: func(r *reader) ScoreInput {
			return ScoreInput{
				Female:    r.flag("female"),
				Age:       r.num("index_age"),
				TotChol:   r.num("chol_tot_mmol"),
				SBP:       r.num("sbp"),
				CurSmoker: r.flag("cur_smoke"),
			}
		},
		build: scoreVector,
		risk: func(in ScoreInput) (float64, error) {
			return ScoreRisk(in, lowRisk)
		},
	}
}
