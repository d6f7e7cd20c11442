package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-4

func riskOf(t *testing.T, p float64, err error) float64 {
	t.Helper()
	require.NoError(t, err)
	return p
}

func TestAdvance(t *testing.T) {
	in := AdvanceInput{
		DiabAge: 50, DiabDur: 3, PulsePressure: 50, Retinopathy: true, AFib: true,
		HbA1c: 7, ACR: 50, NonHDL: 3.3, HtnTreat: true,
	}
	p, err := AdvanceRisk(in)
	assert.InDelta(t, 0.062, riskOf(t, p, err), 0.001)
	assert.InDelta(t, 0.061833, p, tol)

	p, err = NewAdvance().Score(Record{
		"diab_age": 50, "female": false, "diab_dur": 3, "pp": 50, "retinopathy": true,
		"afib": true, "hba1c": 7, "albumin_creat": 50, "nonhdl_mmol": 3.3, "htn_treat": true,
	})
	assert.InDelta(t, 0.061833, riskOf(t, p, err), tol)
}

func TestAric(t *testing.T) {
	cases := []struct {
		in   AricInput
		want float64
	}{
		{AricInput{Age: 53, TotChol: 190, HDL: 50, SBP: 140}, 0.031685},
		{AricInput{Age: 53, Cauc: true, TotChol: 190, HDL: 50, SBP: 140}, 0.045705},
		{AricInput{Age: 60, Male: true, Cauc: true, TotChol: 220, HDL: 40, SBP: 140, HtnTreat: true}, 0.380770},
	}
	for _, c := range cases {
		p, err := AricRisk(c.in)
		assert.InDelta(t, c.want, riskOf(t, p, err), 1e-5, "%+v", c.in)
	}
}

func TestChs(t *testing.T) {
	in := ChsInput{Age: 70, CurSmoker: true, SBP: 150, TotChol: 5, HDL: 1.2, Creatinine: 100}

	xb, err := ChsLogRisk(in, CoefSetCHS)
	assert.InDelta(t, 6.508589, riskOf(t, xb, err), 1e-5)
	xb, err = ChsLogRisk(in, CoefSetMESA)
	assert.InDelta(t, 4.075672, riskOf(t, xb, err), 1e-5)

	_, err = ChsLogRisk(in, "ARIC")
	assert.ErrorIs(t, err, ErrUnsupportedParameter)

	m, err := NewChs("", 0)
	require.NoError(t, err)
	p, err := m.Score(Record{
		"index_age": 70, "prev_smoke": false, "cur_smoke": true, "sbp": 150,
		"chol_tot_mmol": 5, "chol_hdl_mmol": 1.2, "creat_umol": 100, "insulin": false,
	})
	assert.InDelta(t, 0.989017, riskOf(t, p, err), tol)
}

func TestChsSbpCappedAt160(t *testing.T) {
	in := ChsInput{Age: 70, SBP: 160, TotChol: 5, HDL: 1.2}
	at, err := ChsLogRisk(in, CoefSetCHS)
	require.NoError(t, err)
	in.SBP = 210
	above, err := ChsLogRisk(in, CoefSetCHS)
	require.NoError(t, err)
	assert.Equal(t, at, above)
}

func TestDarts(t *testing.T) {
	in := DartsInput{
		DiabAge: 59, DiabDur: 6, TotChol: 5.8, CurSmoker: true, Male: true,
		HbA1c: 8, Follow5: true, SBP: 160, Height: 1.7,
	}
	p, err := DartsRisk(in, 5)
	assert.InDelta(t, 0.539442, riskOf(t, p, err), tol)

	_, err = DartsRisk(in, 0)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)

	short := in
	short.DiabDur = 0.2
	floor := in
	floor.DiabDur = 1
	a, err := DartsRisk(short, 5)
	require.NoError(t, err)
	b, err := DartsRisk(floor, 5)
	require.NoError(t, err)
	assert.Equal(t, b, a, "durations under a year score as one year")
}

func TestDcs(t *testing.T) {
	base := DcsInput{DiabAge: 55, HbA1c: 8, SBP: 120, OtherEthnicity: true, TCHDL: 4.3, DiabDur: 5}
	female := base
	female.Female = true
	femaleMicro := female
	femaleMicro.Microalbumin = true

	cases := []struct {
		in     DcsInput
		target string
		want   float64
	}{
		{base, TargetCVD, 0.172495},
		{base, TargetMI, 0.070552},
		{female, TargetCVD, 0.147225},
		{femaleMicro, TargetCVD, 0.175017},
		{femaleMicro, TargetMI, 0.065237},
	}
	for _, c := range cases {
		p, err := DcsRisk(c.in, c.target)
		assert.InDelta(t, c.want, riskOf(t, p, err), tol, "%s %+v", c.target, c.in)
	}

	_, err := DcsRisk(base, TargetStroke)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
	_, err = NewDcs("HF")
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestDial(t *testing.T) {
	in := DialInput{
		Male: true, Age: 55, BMI: 27, SBP: 150, NonHDL: 5, HbA1c: 55, EGFR: 70,
		DiabDur: 5, CVDHistory: true,
	}
	p, err := DialRisk(in)
	assert.InDelta(t, 0.024787, riskOf(t, p, err), tol)

	p, err = NewDial(0, false).Score(Record{
		"index_age": 55, "male": true, "bmi": 27, "cur_smoke": false, "sbp": 150,
		"nonhdl_mmol": 5, "hba1c_mmol": 55, "egfr": 70, "microalbum": false,
		"macroalbum": false, "diab_dur": 5, "cvd_hist": true, "insulin": false,
	})
	assert.InDelta(t, 0.024787, riskOf(t, p, err), tol)
}

func TestDialAgeOutsideTable(t *testing.T) {
	for _, age := range []float64{12, 25, 55.7, 94, 103} {
		p, err := DialRisk(DialInput{Age: age, BMI: 27, SBP: 130, NonHDL: 3, HbA1c: 50, EGFR: 80, DiabDur: 2})
		require.NoError(t, err, "age %v", age)
		assert.True(t, p >= 0 && p <= 1, "age %v gave %v", age, p)
	}
	assert.Equal(t, dialAgeS0[30], dialBaseline(12))
	assert.Equal(t, dialAgeS0[55], dialBaseline(55.7))
	assert.Equal(t, dialAgeS0[94], dialBaseline(103))
}

func TestDialTreatmentLowersRisk(t *testing.T) {
	in := DialInput{Male: true, Age: 55, BMI: 27, SBP: 150, NonHDL: 5, HbA1c: 55, EGFR: 70, DiabDur: 5, CVDHistory: true}
	base, err := DialRisk(in)
	require.NoError(t, err)
	in.TreatmentLogHR = -0.3
	treated, err := DialRisk(in)
	require.NoError(t, err)
	assert.Less(t, treated, base)
}

func TestDmcx(t *testing.T) {
	low := DmcxInput{Age: 55, EGFR: 80, TCHDL: 4.3, ACR: 2.0, DiabDur: 5, SBP: 120, DBP: 60, HbA1c: 7, BMI: 28}
	high := DmcxInput{
		Age: 65, EGFR: 80, TCHDL: 4.3, ACR: 4.0, Smoker: true, DiabDur: 5, SBP: 200, DBP: 80,
		HbA1c: 9, HtnTreat: true, BMI: 30, Insulin: true, AGlucose: true,
	}
	cases := []struct {
		in     DmcxInput
		female bool
		want   float64
	}{
		{low, true, 0.029725},
		{low, false, 0.062144},
		{high, true, 0.275206},
		{high, false, 0.378701},
	}
	for _, c := range cases {
		c.in.Female = c.female
		p, err := DmcxRisk(c.in)
		assert.InDelta(t, c.want, riskOf(t, p, err), tol, "%+v", c.in)
	}
}

func TestFremantle(t *testing.T) {
	p, err := NewFremantle().Score(Record{
		"index_age": 59, "male": true, "cvd_hist": true, "hba1c": 8,
		"albumin_creat_mgmmol": 0.92, "chol_hdl_mmol": 0.79, "SEuro": true, "Abor": false,
	})
	assert.InDelta(t, 0.062100, riskOf(t, p, err), tol)
}

func TestFrs(t *testing.T) {
	p, err := FrsPrimaryRisk(FrsPrimaryInput{Female: true, Age: 61, TotChol: 180, HDL: 47, SBP: 124, CurSmoker: true})
	assert.InDelta(t, 0.104842, riskOf(t, p, err), tol)
	p, err = FrsPrimaryRisk(FrsPrimaryInput{Age: 53, TotChol: 161, HDL: 55, SBP: 125, HtnTreat: true, Diabetes: true})
	assert.InDelta(t, 0.156227, riskOf(t, p, err), tol)

	p, err = NewFrsSimple().Score(Record{
		"female": true, "index_age": 35, "bmi": 24.3, "sbp": 122,
		"htn_treat": false, "dm": false, "cur_smoke": true,
	})
	assert.InDelta(t, 0.029352227213368165, riskOf(t, p, err), 1e-5)
}

func TestHkdr(t *testing.T) {
	p, err := HkdrCHDRisk(HkdrCHDInput{Age: 59, Female: true, DiabDur: 5, EGFR: 105, ACR: 2.3, NonHDL: 3.87})
	assert.InDelta(t, 0.082173, riskOf(t, p, err), tol)

	hf := HkdrHFInput{Age: 59, BMI: 32, HbA1c: 8, ACR: 2.5, Hemoglobin: 13.8, CHD: true}
	p, err = HkdrHFRisk(hf)
	assert.InDelta(t, 0.037828, riskOf(t, p, err), tol)
	hf.Female = true
	p, err = HkdrHFRisk(hf)
	assert.InDelta(t, 0.063893, riskOf(t, p, err), tol)

	p, err = NewHkdrHF().Score(Record{
		"index_age": 59, "female": false, "albumin_creat_mgmmol": 2.5, "bmi": 24.3,
		"hba1c": 8, "hb": 13.8, "chd": true,
	})
	assert.InDelta(t, 0.023803, riskOf(t, p, err), tol)

	p, err = HkdrStrokeRisk(HkdrStrokeInput{Age: 65, HbA1c: 8, ACR: 3.0, CHD: true})
	assert.InDelta(t, 0.084516, riskOf(t, p, err), tol)
}

func TestNdr(t *testing.T) {
	in := NdrInput{DiabAge: 53, DiabDur: 5, TCHDL: 4.3, HbA1c: 8, SBP: 150, BMI: 32, Male: true, Microalbumin: true}
	p, err := NdrRisk(in, 5)
	assert.InDelta(t, 0.109069, riskOf(t, p, err), tol)
	p, err = NdrRisk(in, 4)
	assert.InDelta(t, 0.085615, riskOf(t, p, err), tol)

	_, err = NdrRisk(in, 7)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
	_, err = NewNdr(10)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestPce(t *testing.T) {
	base := PceInput{Age: 60, TotChol: 150, HDL: 65, SBP: 120, Diabetes: true}
	cases := []struct {
		name            string
		female, ac      bool
		smoker, treated bool
		years           int
		want            float64
	}{
		{"white male", false, false, false, false, 10, 0.092690},
		{"white female", true, false, false, false, 10, 0.039849},
		{"black female", true, true, false, false, 10, 0.070336},
		{"black male", false, true, false, false, 10, 0.115614},
		{"black male smoker treated", false, true, true, true, 10, 0.298878},
		{"white male 5y", false, false, false, false, 5, 0.040651},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := base
			in.Female, in.AC, in.CurSmoker, in.HtnTreat = c.female, c.ac, c.smoker, c.treated
			p, err := PceRisk(in, c.years)
			assert.InDelta(t, c.want, riskOf(t, p, err), tol)
		})
	}

	_, err := PceRisk(base, 7)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestPceRecord(t *testing.T) {
	m, err := NewPce(10)
	require.NoError(t, err)
	p, err := m.Score(Record{
		"female": false, "AC": false, "index_age": 60, "chol_tot": 150, "chol_hdl": 65,
		"sbp": 120, "cur_smoke": false, "dm": true, "htn_treat": false,
	})
	assert.InDelta(t, 0.093, riskOf(t, p, err), 0.001)
}

func TestQDiabetesFemale(t *testing.T) {
	base := QDiabetesInput{Age: 64, BMI: 27.34, DiabDur: 0.5, HbA1c: 64, TCHDL: 4.3, SBP: 120}
	withHistory := base
	withHistory.AFib, withHistory.CVDHistory = true, true
	former := withHistory
	former.PrevSmoker = true
	longer := former
	longer.DiabDur = 2
	light := withHistory
	light.DiabDur, light.LightSmoker = 8, true
	lightAsian := light
	lightAsian.EastAsian = true

	cases := []struct {
		name  string
		in    QDiabetesInput
		years int
		want  float64
	}{
		{"5y", base, 5, 0.015874},
		{"1y", base, 1, 0.002984},
		{"3y", base, 3, 0.008881},
		{"afib cvd", withHistory, 1, 0.014129},
		{"former smoker", former, 1, 0.015553},
		{"duration 2", longer, 1, 0.022515},
		{"light smoker duration 8", light, 1, 0.032000},
		{"east asian", lightAsian, 1, 0.030750},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := QDiabetesRisk(c.in, c.years)
			assert.InDelta(t, c.want, riskOf(t, p, err), tol)
		})
	}
}

func TestQDiabetesMale(t *testing.T) {
	base := QDiabetesInput{Age: 64, Male: true, BMI: 27.34, DiabDur: 0.5, HbA1c: 64, TCHDL: 4.3, SBP: 120, AFib: true, Renal: true}
	former := base
	former.DiabDur, former.PrevSmoker = 4, true
	ac := base
	ac.AC = true
	asian := base
	asian.EastAsian = true
	moderate := asian
	moderate.DiabDur, moderate.ModerateSmoke = 5, true

	cases := []struct {
		name  string
		in    QDiabetesInput
		years int
		want  float64
	}{
		{"1y", base, 1, 0.016638},
		{"2y", base, 2, 0.032082},
		{"5y", base, 5, 0.083659},
		{"former smoker duration 4", former, 1, 0.025109},
		{"afro-caribbean", ac, 1, 0.011319},
		{"east asian", asian, 1, 0.012873},
		{"moderate smoker", moderate, 1, 0.025313},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := QDiabetesRisk(c.in, c.years)
			assert.InDelta(t, c.want, riskOf(t, p, err), tol)
		})
	}
}

func TestQDiabetesSmokingSeverityFirst(t *testing.T) {
	in := QDiabetesInput{HeavySmoker: true, LightSmoker: true, PrevSmoker: true}
	assert.Equal(t, 4, qdiabetesSmokeCat(in))
	in.HeavySmoker = false
	assert.Equal(t, 2, qdiabetesSmokeCat(in))
	assert.Equal(t, 0, qdiabetesSmokeCat(QDiabetesInput{}))

	assert.Equal(t, qdEthnicBlackAfr, qdiabetesEthnicCat(QDiabetesInput{AC: true, EastAsian: true}))

	for dur, want := range map[float64]int{0: 0, 0.99: 0, 1: 1, 3: 1, 3.5: 2, 6: 2, 10: 3, 10.1: 4} {
		assert.Equal(t, want, qdiabetesDiabDurCat(dur), "duration %v", dur)
	}
}

func TestQDiabetesHorizon(t *testing.T) {
	in := QDiabetesInput{Age: 64, BMI: 27.34, HbA1c: 64, TCHDL: 4.3, SBP: 120}
	for _, years := range []int{0, 16, -1} {
		_, err := QDiabetesRisk(in, years)
		assert.ErrorIs(t, err, ErrUnsupportedParameter, "years %d", years)
	}
	prev := 0.0
	for years := 1; years <= 15; years++ {
		p, err := QDiabetesRisk(in, years)
		require.NoError(t, err)
		assert.Greater(t, p, prev)
		prev = p
	}
}

func TestQDiabetesType1IsOptional(t *testing.T) {
	m, err := NewQDiabetes(1)
	require.NoError(t, err)
	rec := Record{
		"index_age": 64, "male": true, "bmi": 27.34, "diab_dur": 5, "AC": false, "EAsian": true,
		"hba1c_mmol": 64, "tchdl": 4.3, "sbp": 120, "heavy_smoke": false, "moderate_smoke": true,
		"light_smoke": false, "prev_smoke": false, "afib": true, "cvd_hist": false, "renal": true,
	}
	p, err := m.Score(rec)
	assert.InDelta(t, 0.025313, riskOf(t, p, err), tol)

	rec["dm_type1"] = true
	t1, err := m.Score(rec)
	require.NoError(t, err)
	assert.Greater(t, t1, p)
}

func TestRecode(t *testing.T) {
	base := RecodeInput{Age: 60, SBP: 140, HbA1c: 8, TotChol: 190, HDL: 50, Creatinine: 1.1, ACR: 10}
	cases := []struct {
		name   string
		mutate func(*RecodeInput)
		target string
		want   float64
	}{
		{"chf 60", func(*RecodeInput) {}, TargetCHF, 0.027630},
		{"chf 70", func(in *RecodeInput) { in.Age = 70 }, TargetCHF, 0.046341},
		{"chf 70 female smoker", func(in *RecodeInput) {
			in.Age, in.Female, in.CurSmoker, in.BPLowering = 70, true, true, true
		}, TargetCHF, 0.143391},
		{"chf 75 history", func(in *RecodeInput) {
			in.Age, in.Female, in.CurSmoker, in.CVDHistory, in.BPLowering, in.Statin = 75, true, true, true, true, true
		}, TargetCHF, 0.387512},
		{"chf everything", func(in *RecodeInput) {
			in.Female, in.AC, in.CurSmoker, in.CVDHistory = true, true, true, true
			in.BPLowering, in.Statin, in.Anticoagulant = true, true, true
		}, TargetCHF, 0.357297},
		{"mi", func(*RecodeInput) {}, TargetMI, 0.005015},
		{"stroke", func(*RecodeInput) {}, TargetStroke, 0.325253},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := base
			c.mutate(&in)
			p, err := RecodeRisk(in, c.target)
			assert.InDelta(t, c.want, riskOf(t, p, err), tol)
		})
	}

	_, err := NewRecode("CVD")
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestScore(t *testing.T) {
	p, err := ScoreRisk(ScoreInput{Female: true, Age: 55, TotChol: 3.62, SBP: 160, CurSmoker: true}, true)
	assert.InDelta(t, 0.02, riskOf(t, p, err), 0.005)
	assert.InDelta(t, 0.017549, p, tol)

	p, err = NewScore(true).Score(Record{
		"female": false, "index_age": 60, "chol_tot_mmol": 5.17, "sbp": 160, "cur_smoke": true,
	})
	assert.InDelta(t, 0.085351, riskOf(t, p, err), tol)

	p, err = ScoreRisk(ScoreInput{Female: true, Age: 55, TotChol: 3.62, SBP: 160, CurSmoker: true}, false)
	assert.InDelta(t, 0.025895, riskOf(t, p, err), tol)
}

func TestScoreBaseline(t *testing.T) {
	assert.InDelta(t, 0.9992446762628607, scoreLowRiskWomen.chd.survival(35), 1e-10)
}

func TestScoreIsBounded(t *testing.T) {
	for _, age := range []float64{5, 40, 70, 90} {
		for _, chol := range []float64{0, 5, 15} {
			p, err := ScoreRisk(ScoreInput{Age: age, TotChol: chol, SBP: 220, CurSmoker: true}, false)
			require.NoError(t, err)
			assert.True(t, p >= 0 && p <= 1, "age %v chol %v gave %v", age, chol, p)
		}
	}
}

func TestUkpds(t *testing.T) {
	cases := []struct {
		in    UkpdsInput
		years float64
		want  float64
	}{
		{UkpdsInput{DiabAge: 45, Age: 45, HbA1c: 7.5, SBP: 160, TCHDL: 4.9}, 20, 0.326349},
		{UkpdsInput{DiabAge: 55, Age: 55, Female: true, HbA1c: 6, SBP: 140, TCHDL: 4.0}, 10, 0.057219},
		{UkpdsInput{DiabAge: 55, Age: 55, Female: true, HbA1c: 8, SBP: 140, TCHDL: 4.0}, 10, 0.079152},
		{UkpdsInput{DiabAge: 55, Age: 55, Female: true, HbA1c: 10, SBP: 140, TCHDL: 4.0}, 10, 0.108992},
		{UkpdsInput{DiabAge: 55, Age: 55, Female: true, CurSmoker: true, HbA1c: 10, SBP: 140, TCHDL: 4.0}, 10, 0.144264},
		{UkpdsInput{DiabAge: 55, Age: 55, Female: true, CurSmoker: true, HbA1c: 10, SBP: 140, TCHDL: 8.0}, 10, 0.327160},
		{UkpdsInput{DiabAge: 55, Age: 55, CurSmoker: true, HbA1c: 10, SBP: 140, TCHDL: 8.0}, 10, 0.529875},
		{UkpdsInput{DiabAge: 55, Age: 55, HbA1c: 8, SBP: 160, TCHDL: 8.0}, 10, 0.376803},
		{UkpdsInput{DiabAge: 55, Age: 55, HbA1c: 6, SBP: 140, TCHDL: 4.0}, 10, 0.106163},
	}
	for _, c := range cases {
		p, err := UkpdsRisk(c.in, c.years)
		assert.InDelta(t, c.want, riskOf(t, p, err), tol, "%+v", c.in)
	}

	_, err := UkpdsRisk(cases[0].in, 0)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestUkpdsOM2(t *testing.T) {
	p, err := UkpdsOM2CHFRisk(UkpdsOM2CHFInput{
		DiabDur: 8, DiabAge: 62, BMI: 32, EGFR: 50, LDL: 3.0, UrineAlbumin: 55, Amputation: true,
	}, 1)
	assert.InDelta(t, 0.026732, riskOf(t, p, err), tol)

	p, err = UkpdsOM2StrokeRisk(UkpdsOM2StrokeInput{
		DiabDur: 8, DiabAge: 62, EGFR: 50, HbA1c: 8, LDL: 3.0, UrineAlbumin: 55, SBP: 140,
		CurSmoker: true, WBC: 7,
	}, 1)
	assert.InDelta(t, 0.019953, riskOf(t, p, err), tol)

	mi := UkpdsOM2MIInput{
		DiabDur: 8, DiabAge: 62, EGFR: 50, HbA1c: 8, HDL: 1.2, LDL: 3.0, UrineAlbumin: 55,
		SBP: 140, CurSmoker: true, WBC: 7,
	}
	p, err = UkpdsOM2MIRisk(mi, 1)
	assert.InDelta(t, 0.023731, riskOf(t, p, err), tol)
	mi.Female = true
	p, err = UkpdsOM2MIRisk(mi, 1)
	assert.InDelta(t, 0.006408, riskOf(t, p, err), tol)
}

func TestUkpdsOM2Record(t *testing.T) {
	m, err := NewUkpdsOM2CHF(1)
	require.NoError(t, err)
	p, err := m.Score(Record{
		"diab_dur": 8, "diab_age": 62, "afib": false, "bmi": 32, "egfr": 50,
		"chol_ldl_mmol": 3.0, "albumin_urine": 55, "pvd": false, "amp_hist": true, "ulcer_hist": false,
	})
	assert.InDelta(t, 0.027, riskOf(t, p, err), 0.001)

	_, err = UkpdsOM2CHFRisk(UkpdsOM2CHFInput{}, 0)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
	_, err = NewUkpdsOM2MI(-5)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestEgfrBelow60(t *testing.T) {
	assert.Equal(t, 5.0, egfrBelow60(50))
	assert.Equal(t, 0.0, egfrBelow60(60))
	assert.Equal(t, 0.0, egfrBelow60(95))
	assert.Equal(t, 0.1, egfrBelow60(-4))
}
