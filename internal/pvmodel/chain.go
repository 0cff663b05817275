package pvmodel

import (
	"errors"
	"math"
)

// SAPM open-rack glass/polymer temperature coefficients.
const (
	sapmA      = -3.47
	sapmB      = -0.0594
	sapmDeltaT = 3.0
)

// Faiman default heat loss factors.
const (
	faimanU0 = 25.0 // W/(m²·°C)
	faimanU1 = 6.84 // W·s/(m³·°C)
)

// PVWatts inverter reference efficiency.
const etaInvRef = 0.9637

// SAPMCellTemperature is the Sandia cell temperature (°C) for plane-of-array
// irradiance e (W/m²).
func SAPMCellTemperature(e []float64, tempAir, windSpeed float64) []float64 {
	out := make([]float64, len(e))
	for i, v := range e {
		module := v*math.Exp(sapmA+sapmB*windSpeed) + tempAir
		out[i] = module + v/1000*sapmDeltaT
	}
	return out
}

// FaimanCellTemperature is the Faiman cell temperature (°C).
func FaimanCellTemperature(e []float64, tempAir, windSpeed float64) []float64 {
	out := make([]float64, len(e))
	total := faimanU0 + faimanU1*windSpeed
	for i, v := range e {
		out[i] = tempAir + v/total
	}
	return out
}

// PVWattsDC is the DC power (W) of a module rated pdc0 at STC with temperature
// coefficient gamma (1/°C).
func PVWattsDC(e, tempCell []float64, pdc0, gamma float64) ([]float64, error) {
	if len(e) != len(tempCell) {
		return nil, errors.New("pvwatts dc: irradiance and temperature lengths differ")
	}
	out := make([]float64, len(e))
	for i := range e {
		out[i] = e[i] / 1000 * pdc0 * (1 + gamma*(tempCell[i]-25))
	}
	return out, nil
}

// PVWattsInverter is the AC power (W) of an inverter with DC input rating pdc0
// and nominal efficiency etaNom, clipped to [0, etaNom·pdc0].
func PVWattsInverter(pdc []float64, pdc0, etaNom float64) ([]float64, error) {
	if pdc0 <= 0 {
		return nil, errors.New("pvwatts inverter: pdc0 must be > 0")
	}
	pac0 := etaNom * pdc0
	out := make([]float64, len(pdc))
	for i, p := range pdc {
		if math.IsNaN(p) {
			out[i] = math.NaN()
			continue
		}
		zeta := p / pdc0
		eta := 0.0
		if zeta != 0 {
			eta = etaNom / etaInvRef * (-0.0162*zeta - 0.0059/zeta + 0.9858)
		}
		out[i] = clip(eta*p, 0, pac0)
	}
	return out, nil
}
