package risk

import (
	"math"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// Fremantle Diabetes Study: Davis et al., Intern Med J 2010;40:286-92.
var fremantleCox = coxTable{
	beta: []float64{
		0.080,  // age
		0.335,  // male
		0.693,  // prior cvd
		0.872,  // log hba1c (%)
		0.196,  // log acr (mg/mmol)
		-0.608, // log hdl (mmol/L)
		-0.771, // southern European
		1.269,  // Indigenous Australian
	},
	s0: 0.904,
	b0: 7.371,
}

var fremantleTerms = []string{
	"index_age", "male", "cvd_hist", "hba1c_log", "acr_log", "hdl_log", "SEuro", "Abor",
}

type FremantleInput struct {
	Age              float64
	Male             bool
	CVDHistory       bool
	HbA1c            float64 // %
	ACR              float64 // mg/mmol
	HDL              float64 // mmol/L
	SouthernEuropean bool
	Aboriginal       bool
}

func fremantleVector(in FremantleInput) ([]string, []float64) {
	return fremantleTerms, []float64{
		sanitize.Age(in.Age),
		b2f(in.Male),
		b2f(in.CVDHistory),
		math.Log(sanitize.HbA1c(in.HbA1c, sanitize.Percent)),
		math.Log(sanitize.ACR(in.ACR, sanitize.MgPerMmol)),
		math.Log(sanitize.HDL(in.HDL, sanitize.MmolPerL)),
		b2f(in.SouthernEuropean),
		b2f(in.Aboriginal),
	}
}

// FremantleRisk returns the 5-year cardiovascular risk.
func FremantleRisk(in FremantleInput) (float64, error) {
	_, x := fremantleVector(in)
	return fremantleCox.risk(x)
}

func NewFremantle() Model {
	return &equation[FremantleInput]{
		descriptor: descriptor{
			name: "fremantle",
			required: []string{
				"index_age", "male", "cvd_hist", "hba1c", "albumin_creat_mgmmol",
				"chol_hdl_mmol", "SEuro", "Abor",
			},
			terms: fremantleTerms,
		},
		read: func(r *reader) FremantleInput {
			return FremantleInput{
				Age:              r.num("index_age"),
				Male:             r.flag("male"),
				CVDHistory:       r.flag("cvd_hist"),
				HbA1c:            r.num("hba1c"),
				ACR:              r.num("albumin_creat_mgmmol"),
				HDL:              r.num("chol_hdl_mmol"),
				SouthernEuropean: r.flag("SEuro"),
				Aboriginal:       r.flag("Abor"),
			}
		},
		build: fremantleVector,
		risk:  FremantleRisk,
	}
}
