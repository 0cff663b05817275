package pvmodel

import "math"

// Physical IAM parameters for uncoated glass.
const (
	glassIndex     = 1.526
	glassExtinct   = 4.0   // 1/m
	glassThickness = 0.002 // m
)

// PhysicalIAM is the incidence angle modifier from Fresnel reflection and
// absorption in the glazing. Zero at and beyond 90°.
func PhysicalIAM(aoi float64) float64 {
	if math.IsNaN(aoi) {
		return math.NaN()
	}
	if math.Abs(aoi) >= 90 {
		return 0
	}
	n1, n2 := 1.0, glassIndex
	cos1 := cosd(aoi)
	sin1 := sind(aoi)
	cos2 := math.Sqrt(1 - math.Pow(n1/n2*sin1, 2))

	rhoS := math.Pow((n1*cos1-n2*cos2)/(n1*cos1+n2*cos2), 2)
	rhoP := math.Pow((n1*cos2-n2*cos1)/(n1*cos2+n2*cos1), 2)
	rho0 := math.Pow((n1-n2)/(n1+n2), 2)

	absorb := math.Exp(-glassExtinct * glassThickness / cos2)
	tauS := (1 - rhoS) * absorb
	tauP := (1 - rhoP) * absorb
	tau0 := (1 - rho0) * math.Exp(-glassExtinct*glassThickness)

	return (tauS + tauP) / 2 / tau0
}

// Equivalent beam angles for isotropic sky and ground diffuse on a surface tilted
// by tilt degrees (Brandemuehl and Beckman).
func skyDiffuseAngle(tilt float64) float64 {
	return 59.7 - 0.1388*tilt + 0.001497*tilt*tilt
}

func groundDiffuseAngle(tilt float64) float64 {
	return 90 - 0.5788*tilt + 0.002693*tilt*tilt
}
