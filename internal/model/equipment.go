package model

// Module is the subset of a module datasheet the model chain uses.
// Units:
// - PDC0: W at STC
// - GammaPDC: 1/°C
type Module struct {
	Name        string  `json:"name"`
	Technology  string  `json:"technology,omitempty"`
	PDC0        float64 `json:"pdc0"`
	GammaPDC    float64 `json:"gamma_pdc"`
	Bifacial    bool    `json:"bifacial"`
	Bifaciality float64 `json:"bifaciality,omitempty"`
}

// Inverter is the subset of an inverter datasheet the model chain uses.
// Units:
// - Paco: W AC rated
// - Pdco: W DC at which Paco is reached
type Inverter struct {
	Name string  `json:"name"`
	Paco float64 `json:"paco"`
	Pdco float64 `json:"pdco"`
	Vac  float64 `json:"vac,omitempty"`
}

// EtaNom is the nominal conversion efficiency Paco/Pdco, capped below 1.
func (i Inverter) EtaNom() float64 {
	if i.Pdco <= 0 {
		return 0
	}
	eta := i.Paco / i.Pdco
	if eta > 0.99 {
		eta = 0.99
	}
	return eta
}
