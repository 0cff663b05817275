package pvmodel

import (
	"errors"
	"math"
	"time"

	"bifacial-compare/internal/model"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/refraction"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

func sind(deg float64) float64 { return math.Sin(degToRad(deg)) }
func cosd(deg float64) float64 { return math.Cos(degToRad(deg)) }

// SolarPosition computes topocentric sun angles for each timestamp. Apparent
// values include atmospheric refraction.
func SolarPosition(times []time.Time, site model.Site) (*model.SolarPosition, error) {
	if len(times) == 0 {
		return nil, errors.New("solar position: no timestamps")
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}

	n := len(times)
	pos := &model.SolarPosition{
		ApparentZenith: make([]float64, n),
		Zenith:         make([]float64, n),
		Azimuth:        make([]float64, n),
		Elevation:      make([]float64, n),
	}

	φ := degToRad(site.Latitude)
	lonEast := degToRad(site.Longitude)
	for i, t := range times {
		jd := julian.TimeToJD(t.UTC())
		// ΔT (about a minute) is below the resolution that matters here, so JDE ≈ JD.
		α, δ := solar.ApparentEquatorial(jd)
		θ0 := sidereal.Apparent(jd)

		H := θ0.Rad() + lonEast - α.Rad()
		sH, cH := math.Sincos(H)
		sδ, cδ := math.Sincos(δ.Rad())
		sφ, cφ := math.Sincos(φ)

		h := math.Asin(sφ*sδ + cφ*cδ*cH)
		// azimuth measured clockwise from north
		A := math.Atan2(-cδ*sH, sδ*cφ-cδ*sφ*cH)

		elev := radToDeg(h)
		apparent := elev
		if elev > -1 {
			apparent += refraction.Saemundsson(unit.Angle(h)).Deg()
		}

		pos.Zenith[i] = 90 - elev
		pos.ApparentZenith[i] = 90 - apparent
		pos.Elevation[i] = apparent
		pos.Azimuth[i] = fixAngle(radToDeg(A))
	}
	return pos, nil
}
