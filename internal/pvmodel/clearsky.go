package pvmodel

import (
	"errors"
	"math"
	"time"

	"bifacial-compare/internal/model"
)

const (
	solarConstant = 1366.1 // W/m²
	// DefaultLinkeTurbidity is a typical clear, moderately hazy sky.
	DefaultLinkeTurbidity = 3.0
)

// ExtraterrestrialDNI is the normal irradiance at the top of the atmosphere,
// adjusted for the Earth-Sun distance on day-of-year n.
func ExtraterrestrialDNI(n int) float64 {
	return solarConstant * (1 + 0.033*math.Cos(degToRad(360.0*(float64(n)-3)/365.0)))
}

// AirmassRelative is the Kasten-Young relative airmass. NaN below the horizon.
func AirmassRelative(zenith float64) float64 {
	if zenith >= 90 || math.IsNaN(zenith) {
		return math.NaN()
	}
	return 1.0 / (cosd(zenith) + 0.50572*math.Pow(96.07995-zenith, -1.6364))
}

// PressureFromAltitude is the standard-atmosphere pressure (Pa) at altitude (m).
func PressureFromAltitude(altitude float64) float64 {
	return 101325 * math.Pow(1-2.25577e-5*altitude, 5.25588)
}

// IneichenPerez computes clear-sky GHI, DNI and DHI for each timestamp.
// Values are zero while the sun is below the horizon.
func IneichenPerez(times []time.Time, site model.Site, pos *model.SolarPosition, linkeTurbidity float64) (*model.ClearSky, error) {
	if pos == nil || len(pos.ApparentZenith) != len(times) {
		return nil, errors.New("clear sky: solar position does not match timestamps")
	}
	if linkeTurbidity <= 0 {
		linkeTurbidity = DefaultLinkeTurbidity
	}

	n := len(times)
	cs := &model.ClearSky{
		GHI: make([]float64, n),
		DNI: make([]float64, n),
		DHI: make([]float64, n),
	}

	alt := site.Altitude
	tl := linkeTurbidity
	fh1 := math.Exp(-alt / 8000)
	fh2 := math.Exp(-alt / 1250)
	cg1 := 5.09e-5*alt + 0.868
	cg2 := 3.92e-5*alt + 0.0387
	pressureRatio := PressureFromAltitude(alt) / 101325

	for i, t := range times {
		z := pos.ApparentZenith[i]
		am := AirmassRelative(z)
		if math.IsNaN(am) {
			continue
		}
		amAbs := am * pressureRatio
		cosZ := math.Max(cosd(z), 0)
		dniExtra := ExtraterrestrialDNI(t.YearDay())

		ghi := cg1 * dniExtra * cosZ * math.Max(math.Exp(-cg2*amAbs*(fh1+fh2*(tl-1))), 0)

		b := 0.664 + 0.163/fh1
		bnci := dniExtra * math.Max(b*math.Exp(-0.09*amAbs*(tl-1)), 0)

		bnci2 := 0.0
		if cosZ > 0 {
			bnci2 = ghi * math.Max((1-(0.1-0.2*math.Exp(-tl))/(0.1+0.882/fh1))/cosZ, 0)
		}
		dni := math.Min(bnci, bnci2)
		dhi := ghi - dni*cosZ

		cs.GHI[i] = ghi
		cs.DNI[i] = dni
		cs.DHI[i] = math.Max(dhi, 0)
	}
	return cs, nil
}
