package risk

import (
	"strings"

	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
)

// RECODe equations (Basu et al., Lancet Diabetes Endocrinol 2017;5:788-798)
// for congestive heart failure, myocardial infarction and stroke.
const (
	recodeS0 = 0.96
	recodeB0 = 5.15
)

var recodeTables = map[string]coxTable{
	TargetCHF: {
		beta: []float64{0.05268, 0.25290, -0.04969, 0.29050, 0.00121, 1.00700, 0.63890, -0.11750, 0.73650, 0.20920, -0.00136, -0.01758, 0.82104, 0.00041},
		s0:   recodeS0,
		b0:   recodeB0,
	},
	TargetMI: {
		beta: []float64{0.04363, -0.20660, -0.11630, 0.23580, -0.00514, 0.96180, -0.12480, 0.04699, 0.54400, 0.21350, 0.00019, -0.01358, 0.08027, 0.00042},
		s0:   recodeS0,
		b0:   recodeB0,
	},
	TargetStroke: {
		beta: []float64{0.02896, -0.00326, 0.27160, 0.16650, 0.01659, 0.41380, 0.15980, -0.18870, -0.13870, 0.33650, 0.00171, -0.00639, 0.59550, 0.00030},
		s0:   recodeS0,
		b0:   recodeB0,
	},
}

var recodeTerms = []string{
	"index_age", "female", "AC", "cur_smoke", "sbp", "cvd_hist", "bpld", "statin",
	"anticoagulant", "hba1c", "chol_tot", "chol_hdl", "creat", "albumin_creat",
}

type RecodeInput struct {
	Age           float64
	Female        bool
	AC            bool // Black ethnicity
	CurSmoker     bool
	SBP           float64
	CVDHistory    bool
	BPLowering    bool
	Statin        bool
	Anticoagulant bool
	HbA1c         float64 // %
	TotChol       float64 // mg/dL
	HDL           float64 // mg/dL
	Creatinine    float64 // mg/dL
	ACR           float64 // mg/g
}

func recodeVector(in RecodeInput) ([]string, []float64) {
	return recodeTerms, []float64{
		sanitize.Age(in.Age),
		b2f(in.Female),
		b2f(in.AC),
		b2f(in.CurSmoker),
		sanitize.BloodPressure(in.SBP),
		b2f(in.CVDHistory),
		b2f(in.BPLowering),
		b2f(in.Statin),
		b2f(in.Anticoagulant),
		sanitize.HbA1c(in.HbA1c, sanitize.Percent),
		sanitize.TotalCholesterol(in.TotChol, sanitize.MgPerDL),
		sanitize.HDL(in.HDL, sanitize.MgPerDL),
		in.Creatinine,
		sanitize.ACR(in.ACR, sanitize.MgPerG),
	}
}

func recodeTable(target string) (coxTable, error) {
	if target == "" {
		return recodeTables[TargetCHF], nil
	}
	t, ok := recodeTables[strings.ToUpper(target)]
	if !ok {
		return coxTable{}, unsupported("recode", "target", target)
	}
	return t, nil
}

// RecodeRisk returns the 10-year risk of target: TargetCHF, TargetMI or
// TargetStroke.
func RecodeRisk(in RecodeInput, target string) (float64, error) {
	table, err := recodeTable(target)
	if err != nil {
		return 0, err
	}
	_, x := recodeVector(in)
	return table.risk(x)
}

func NewRecode(target string) (Model, error) {
	table, err := recodeTable(target)
	if err != nil {
		return nil, err
	}
	return &equation[RecodeInput]{
		descriptor: descriptor{
			name:     "recode",
			required: recodeTerms,
			terms:    recodeTerms,
		},
		read: func(r *reader) RecodeInput {
			return RecodeInput{
				Age:           r.num("index_age"),
				Female:        r.flag("female"),
				AC:            r.flag("AC"),
				CurSmoker:     r.flag("cur_smoke"),
				SBP:           r.num("sbp"),
				CVDHistory:    r.flag("cvd_hist"),
				BPLowering:    r.flag("bpld"),
				Statin:        r.flag("statin"),
				Anticoagulant: r.flag("anticoagulant"),
				HbA1c:         r.num("hba1c"),
				TotChol:       r.num("chol_tot"),
				HDL:           r.num("chol_hdl"),
				Creatinine:    r.num("creat"),
				ACR:           r.num("albumin_creat"),
			}
		},
		build: recodeVector,
		risk: func(in RecodeInput) (float64, error) {
			_, x := recodeVector(in)
			return table.risk(x)
		},
	}, nil
}
