// Package clinical holds pure calculations derived from patient data.
package clinical

import (
	"math"
	"time"
)

// CalculateAge returns the age in completed years at now, using calendar-year
// arithmetic adjusted for month and day. A birthday later than now yields a
// negative age so callers can reject it.
func CalculateAge(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// AgePtr is CalculateAge for optional dates.
func AgePtr(dob *time.Time, now time.Time) *int {
	if dob == nil || dob.IsZero() {
		return nil
	}
	age := CalculateAge(*dob, now)
	return &age
}

// BMI computes body mass index from height in cm and weight in kg, rounded to
// one decimal place. Zero is returned for a non-positive height.
func BMI(heightCm, weightKg float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10
}
