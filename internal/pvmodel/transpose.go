package pvmodel

import (
	"errors"
	"fmt"
	"math"

	"bifacial-compare/internal/model"
)

// Transpose computes front and back plane-of-array irradiance for a row inside
// an infinitely long array of single-axis trackers. Incident values use
// isotropic sky and ground view factors; the back side sees the ground
// reflection of the unshaded beam and the sky diffuse not blocked by the rows.
// Absorbed values apply the physical IAM to each component. NaN at night.
func Transpose(in model.TransposeInput) (*model.IrradianceFrame, error) {
	if in.Position == nil || in.Orientation == nil || in.ClearSky == nil {
		return nil, errors.New("transposition: missing solar position, orientation or clear sky")
	}
	n := len(in.Times)
	for _, c := range []interface{ CheckLen(int) error }{in.Position, in.Orientation, in.ClearSky} {
		if err := c.CheckLen(n); err != nil {
			return nil, fmt.Errorf("transposition: %w", err)
		}
	}
	if in.Albedo < 0 || in.Albedo > 1 {
		return nil, errors.New("transposition: albedo out of range [0, 1]")
	}
	if err := in.Geometry.Validate(); err != nil {
		return nil, err
	}

	f := &model.IrradianceFrame{
		Times:         in.Times,
		TotalIncFront: make([]float64, n),
		TotalIncBack:  make([]float64, n),
		TotalAbsFront: make([]float64, n),
		TotalAbsBack:  make([]float64, n),
	}
	gcr := in.Geometry.GCR

	for i := 0; i < n; i++ {
		tilt := in.Orientation.SurfaceTilt[i]
		aoi := in.Orientation.AOI[i]
		if math.IsNaN(tilt) || math.IsNaN(aoi) {
			f.TotalIncFront[i] = math.NaN()
			f.TotalIncBack[i] = math.NaN()
			f.TotalAbsFront[i] = math.NaN()
			f.TotalAbsBack[i] = math.NaN()
			continue
		}
		ghi, dni, dhi := in.ClearSky.GHI[i], in.ClearSky.DNI[i], in.ClearSky.DHI[i]
		zen := in.Position.ApparentZenith[i]
		cosT := cosd(tilt)
		cosAOI := cosd(aoi)

		// front
		beamF := dni * math.Max(cosAOI, 0)
		skyF := dhi * (1 + cosT) / 2
		gndF := ghi * in.Albedo * (1 - cosT) / 2

		// back: the surface normal is reversed, tilt 180 - tilt
		beamB := dni * math.Max(-cosAOI, 0)
		skyB := dhi * (1 - cosT) / 2 * (1 - gcr)
		shaded := groundShadeFraction(in.Orientation.TrackerTheta[i], zen, in.Position.Azimuth[i], in.Geometry)
		ground := in.Albedo * (dni*math.Max(cosd(zen), 0)*(1-shaded) + dhi*(1-gcr))
		gndB := ground * (1 + cosT) / 2

		f.TotalIncFront[i] = beamF + skyF + gndF
		f.TotalIncBack[i] = beamB + skyB + gndB

		f.TotalAbsFront[i] = beamF*PhysicalIAM(aoi) +
			skyF*PhysicalIAM(skyDiffuseAngle(tilt)) +
			gndF*PhysicalIAM(groundDiffuseAngle(tilt))
		backTilt := 180 - tilt
		f.TotalAbsBack[i] = beamB*PhysicalIAM(180-aoi) +
			skyB*PhysicalIAM(skyDiffuseAngle(backTilt)) +
			gndB*PhysicalIAM(groundDiffuseAngle(backTilt))
	}
	return f, nil
}

// groundShadeFraction is the share of ground between two rows covered by the
// row shadow, from the rotation and the sun angle projected across the axis.
func groundShadeFraction(theta, zenith, azimuth float64, g model.Geometry) float64 {
	xp, zp := sunInAxisFrame(zenith, azimuth, g)
	if zp <= 0 {
		return 1
	}
	tanPsi := xp / zp
	shadow := g.GCR * math.Abs(cosd(theta)+sind(theta)*tanPsi)
	return clip(shadow, 0, 1)
}
