package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// UKPDS risk engine for coronary heart disease: Stevens et al., Clin Sci
// 2001;101:671-679. Coefficients are multiplicative risk ratios.
var ukpdsBeta = []float64{
	1.059, // age at diagnosis, per year from 55
	0.525, // female
	0.390, // Afro-Caribbean
	1.350, // smoker
	1.183, // hba1c, per % from 6.72
	1.088, // sbp, per 10 mmHg from 135.7
	3.845, // log tc/hdl from 1.59
}

const (
	ukpdsQ0             = 0.0112
	ukpdsD              = 1.078 // risk ratio per year of known diabetes
	defaultUkpdsHorizon = 10
)

var ukpdsTerms = []string{"age_55", "female", "AC", "cur_smoke", "hba1c_672", "sbp_1357", "tchdl_log_159"}

type UkpdsInput struct {
	DiabAge   float64
	Age       float64
	Female    bool
	AC        bool
	CurSmoker bool
	HbA1c     float64 // %
	SBP       float64
	TCHDL     float64
}

func ukpdsVector(in UkpdsInput) ([]string, []float64) {
	return ukpdsTerms, []float64{
		sanitize.Age(in.Age) - 55,
		b2f(in.Female),
		b2f(in.AC),
		b2f(in.CurSmoker),
		sanitize.HbA1c(in.HbA1c, sanitize.Percent) - 6.72,
		(sanitize.BloodPressure(in.SBP) - 135.7) / 10,
		math.Log(sanitize.TCHDL(in.TCHDL)) - 1.59,
	}
}

// UkpdsRisk returns the coronary heart disease risk over the next years.
func UkpdsRisk(in UkpdsInput, years float64) (float64, error) {
	if years <= 0 {
		return 0, unsupported("ukpds", "horizon", years)
	}
	_, x := ukpdsVector(in)
	q := ukpdsQ0
	for i, b := range ukpdsBeta {
		q *= math.Pow(b, x[i])
	}
	known := sanitize.Age(in.Age) - in.DiabAge
	p := 1 - math.Exp(-q*math.Pow(ukpdsD, known)*(1-math.Pow(ukpdsD, years))/(1-ukpdsD))
	return math.Max(p, 0), nil
}

func NewUkpds(horizon int) (Model, error) {
	if horizon == 0 {
		horizon = defaultUkpdsHorizon
	}
	if horizon < 0 {
		return nil, unsupported("ukpds", "horizon", horizon)
	}
	return &equation[UkpdsInput]{
		descriptor: descriptor{
			name:     "ukpds",
			required: []string{"diab_age", "index_age", "female", "AC", "cur_smoke", "hba1c", "sbp", "tchdl"},
			terms:    ukpdsTerms,
		},
		read: func(r *reader) UkpdsInput {
			return UkpdsInput{
				DiabAge:   r.num("diab_age"),
				Age:       r.num("index_age"),
				Female:    r.flag("female"),
				AC:        r.flag("AC"),
				CurSmoker: r.flag("cur_smoke"),
				HbA1c:     r.num("hba1c"),
				SBP:       r.num("sbp"),
				TCHDL:     r.num("tchdl"),
			}
		},
		build: ukpdsVector,
		risk: func(in UkpdsInput) (float64, error) {
			return UkpdsRisk(in, float64(horizon))
		},
	}, nil
}
