package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
	"github.com/synaptica-ai/cvdrisk/pkg/survival"
)

// Mukamal et al., Diabetologia 2013;56(2):275-283. Coefficients are the
// published hazard ratios; the MESA set is the external validation cohort.
const (
	CoefSetCHS  = "CHS"
	CoefSetMESA = "MESA"

	defaultChsBaseHazard = 0.5
	chsCreatinineCutoff  = 110.5 // µmol/L
)

var chsHazardRatios = map[string][]float64{
	CoefSetCHS:  {1.05, 1.29, 1.64, 1.15, 1.17, 0.79, 1.43, 1.71},
	CoefSetMESA: {1.03, 1.24, 1.05, 1.15, 1.16, 0.48, 2.15, 1.89},
}

var chsCoef = func() map[string][]float64 {
	out := make(map[string][]float64, len(chsHazardRatios))
	for set, hrs := range chsHazardRatios {
		beta := make([]float64, len(hrs))
		for i, hr := range hrs {
			beta[i] = math.Log(hr)
		}
		out[set] = beta
	}
	return out
}()

var chsTerms = []string{
	"index_age", "prev_smoke", "cur_smoke", "sbp_160", "chol_tot_mmol",
	"chol_hdl_mmol", "creat_high", "insulin",
}

type ChsInput struct {
	Age        float64
	PrevSmoker bool
	CurSmoker  bool
	SBP        float64
	TotChol    float64 // mmol/L
	HDL        float64 // mmol/L
	Creatinine float64 // µmol/L
	Insulin    bool
}

func chsVector(in ChsInput) ([]string, []float64) {
	return chsTerms, []float64{
		sanitize.Age(in.Age),
		b2f(in.PrevSmoker),
		b2f(in.CurSmoker),
		math.Min(sanitize.BloodPressure(in.SBP), 160) / 10,
		sanitize.TotalCholesterol(in.TotChol, sanitize.MmolPerL),
		sanitize.HDL(in.HDL, sanitize.MmolPerL),
		b2f(in.Creatinine > chsCreatinineCutoff),
		b2f(in.Insulin),
	}
}

// ChsLogRisk returns the unbounded linear predictor for coefficient set
// CoefSetCHS or CoefSetMESA.
func ChsLogRisk(in ChsInput, coefSet string) (float64, error) {
	beta, ok := chsCoef[coefSet]
	if !ok {
		return 0, unsupported("chs", "coefficient set", coefSet)
	}
	_, x := chsVector(in)
	return survival.Dot(x, beta)
}

// NewChs returns the CHS model scored as 1 - baseHazard^xb. An empty coefSet
// selects CoefSetCHS and a zero baseHazard selects 0.5. Cholesterol is read
// from chol_tot_mmol and chol_hdl_mmol (mmol/L) and creatinine from creat_umol
// (µmol/L); chol_tot and chol_hdl are mg/dL elsewhere.
func NewChs(coefSet string, baseHazard float64) (Model, error) {
	if coefSet == "" {
		coefSet = CoefSetCHS
	}
	if _, ok := chsCoef[coefSet]; !ok {
		return nil, unsupported("chs", "coefficient set", coefSet)
	}
	if baseHazard == 0 {
		baseHazard = defaultChsBaseHazard
	}
	if baseHazard <= 0 || baseHazard >= 1 {
		return nil, unsupported("chs", "base hazard", baseHazard)
	}
	return &equation[ChsInput]{
		descriptor: descriptor{
			name: "chs",
			required: []string{
				"index_age", "prev_smoke", "cur_smoke", "sbp", "chol_tot_mmol",
				"chol_hdl_mmol", "creat_umol", "insulin",
			},
			terms: chsTerms,
		},
		read: func(r *reader) ChsInput {
			return ChsInput{
				Age:        r.num("index_age"),
				PrevSmoker: r.flag("prev_smoke"),
				CurSmoker:  r.flag("cur_smoke"),
				SBP:        r.num("sbp"),
				TotChol:    r.num("chol_tot_mmol"),
				HDL:        r.num("chol_hdl_mmol"),
				Creatinine: r.num("creat_umol"),
				Insulin:    r.flag("insulin"),
			}
		},
		build: chsVector,
		risk: func(in ChsInput) (float64, error) {
			xb, err := ChsLogRisk(in, coefSet)
			if err != nil {
				return 0, err
			}
			return survival.Clamp(1 - math.Pow(baseHazard, xb)), nil
		},
	}, nil
}
