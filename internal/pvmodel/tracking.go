package pvmodel

import (
	"errors"
	"math"

	"bifacial-compare/internal/model"
)

// sunInAxisFrame rotates the sun vector into the tracker axis frame. xp points
// across the axis, zp along the axis normal; the ideal rotation is atan2(xp, zp).
func sunInAxisFrame(zenith, azimuth float64, g model.Geometry) (xp, zp float64) {
	az := azimuth - 180
	el := 90 - zenith
	x := cosd(el) * sind(az)
	y := cosd(el) * cosd(az)
	z := sind(el)

	aas := g.AxisAzimuth - 180
	xp = x*cosd(aas) - y*sind(aas)
	zp = x*sind(g.AxisTilt)*sind(aas) + y*sind(g.AxisTilt)*cosd(aas) + z*cosd(g.AxisTilt)
	return xp, zp
}

// TrueTrackingAngle is the rotation (degrees, positive toward west for a
// north-south axis) that points the module normal at the sun.
func TrueTrackingAngle(zenith, azimuth float64, g model.Geometry) float64 {
	xp, zp := sunInAxisFrame(zenith, azimuth, g)
	return radToDeg(math.Atan2(xp, zp))
}

// SingleAxis computes the tracker rotation, surface tilt/azimuth and angle of
// incidence for each timestamp. All fields are NaN while the sun is down.
func SingleAxis(pos *model.SolarPosition, g model.Geometry) (*model.Orientation, error) {
	if pos == nil {
		return nil, errors.New("tracking: missing solar position")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	n := len(pos.ApparentZenith)
	o := &model.Orientation{
		TrackerTheta:   make([]float64, n),
		SurfaceTilt:    make([]float64, n),
		SurfaceAzimuth: make([]float64, n),
		AOI:            make([]float64, n),
	}
	axesDistance := 1 / g.GCR

	for i := 0; i < n; i++ {
		zen := pos.ApparentZenith[i]
		azi := pos.Azimuth[i]
		if zen > 90 || math.IsNaN(zen) {
			o.TrackerTheta[i] = math.NaN()
			o.SurfaceTilt[i] = math.NaN()
			o.SurfaceAzimuth[i] = math.NaN()
			o.AOI[i] = math.NaN()
			continue
		}

		wid := TrueTrackingAngle(zen, azi, g)
		theta := wid
		if g.Backtrack {
			temp := math.Abs(axesDistance * cosd(wid))
			if temp < 1 {
				wc := radToDeg(-sign(wid) * math.Acos(temp))
				theta = wid + wc
			}
		}
		theta = math.Max(-g.MaxAngle, math.Min(g.MaxAngle, theta))

		tilt, az := surfaceOrientation(theta, g)
		o.TrackerTheta[i] = theta
		o.SurfaceTilt[i] = tilt
		o.SurfaceAzimuth[i] = az
		o.AOI[i] = AOI(tilt, az, zen, azi)
	}
	return o, nil
}

func surfaceOrientation(theta float64, g model.Geometry) (tilt, azimuth float64) {
	tilt = radToDeg(math.Acos(cosd(theta) * cosd(g.AxisTilt)))
	var delta float64
	if st := sind(tilt); st != 0 {
		delta = radToDeg(math.Asin(clip(sind(theta)/st, -1, 1)))
		if math.Abs(theta) >= 90 {
			delta = -delta + sign(theta)*180
		}
	} else {
		delta = 90
	}
	return tilt, fixAngle(g.AxisAzimuth + delta)
}

// AOIProjection is the cosine of the angle between the surface normal and the sun.
func AOIProjection(surfaceTilt, surfaceAzimuth, zenith, azimuth float64) float64 {
	p := cosd(surfaceTilt)*cosd(zenith) + sind(surfaceTilt)*sind(zenith)*cosd(azimuth-surfaceAzimuth)
	return clip(p, -1, 1)
}

// AOI is the angle of incidence in degrees.
func AOI(surfaceTilt, surfaceAzimuth, zenith, azimuth float64) float64 {
	return radToDeg(math.Acos(AOIProjection(surfaceTilt, surfaceAzimuth, zenith, azimuth)))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
