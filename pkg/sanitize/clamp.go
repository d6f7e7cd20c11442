// Package sanitize bounds physiologically implausible measurements before they
// reach a risk equation. Every function is total and idempotent: it never
// fails, it only raises a value to its documented floor.
package sanitize

import "math"

type Unit string

const (
	Percent    Unit = "percent"
	MmolPerMol Unit = "mmol/mol"
	MgPerDL    Unit = "mg/dl"
	MmolPerL   Unit = "mmol/l"
	MgPerG     Unit = "mg/g"
	MgPerMmol  Unit = "mg/mmol"
	Metres     Unit = "m"
	Inches     Unit = "in"
)

// mg/dL per mmol/L of cholesterol.
const CholesterolMgPerMmol = 38.67

const (
	minAge         = 18
	minHbA1cPct    = 3
	minHbA1cMmol   = 9
	minACRMgG      = 1
	minACRMgMmol   = 0.113 // 1 mg/g
	minBP          = 10
	minHeightM     = 0.2
	minHeightIn    = 7.87
	minEGFR        = 1
	minLipidMmol   = 0.01
	minTCHDL       = 1
	minBMI         = 10
	minPulsePress  = 0
	minNonHDL      = 0
	minLDL         = 0
	minHemoglobin  = 0
	minDiabetesDur = 0
)

func Age(age float64) float64 {
	return math.Max(minAge, age)
}

// DiabetesDuration floors the years since diagnosis at floor, which is never
// below zero. Models that take the log of the duration pass 1.
func DiabetesDuration(years, floor float64) float64 {
	return math.Max(math.Max(minDiabetesDur, floor), years)
}

func HbA1c(v float64, unit Unit) float64 {
	if unit == MmolPerMol {
		return math.Max(minHbA1cMmol, v)
	}
	return math.Max(minHbA1cPct, v)
}

// ACR is the urinary albumin:creatinine ratio.
func ACR(v float64, unit Unit) float64 {
	if unit == MgPerMmol {
		return math.Max(minACRMgMmol, v)
	}
	return math.Max(minACRMgG, v)
}

func PulsePressure(v float64) float64 {
	return math.Max(minPulsePress, v)
}

// BloodPressure applies to both systolic and diastolic readings.
func BloodPressure(v float64) float64 {
	return math.Max(minBP, v)
}

func Height(v float64, unit Unit) float64 {
	if unit == Inches {
		return math.Max(minHeightIn, v)
	}
	return math.Max(minHeightM, v)
}

func EGFR(v float64) float64 {
	return math.Max(minEGFR, v)
}

func NonHDL(v float64) float64 {
	return math.Max(minNonHDL, v)
}

func LDL(v float64) float64 {
	return math.Max(minLDL, v)
}

// HDL keeps the value strictly positive so log(HDL) stays finite.
func HDL(v float64, unit Unit) float64 {
	return math.Max(lipidFloor(unit), v)
}

// TotalCholesterol shares the HDL floor since several equations take its log.
func TotalCholesterol(v float64, unit Unit) float64 {
	return math.Max(lipidFloor(unit), v)
}

// TCHDL is the total:HDL cholesterol ratio.
func TCHDL(v float64) float64 {
	return math.Max(minTCHDL, v)
}

func BMI(v float64) float64 {
	return math.Max(minBMI, v)
}

func Hemoglobin(v float64) float64 {
	return math.Max(minHemoglobin, v)
}

func lipidFloor(unit Unit) float64 {
	if unit == MmolPerL {
		return minLipidMmol
	}
	return minLipidMmol * CholesterolMgPerMmol
}
