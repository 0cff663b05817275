package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validScenario() Scenario {
	return Scenario{
		Name:       "Fresh snow",
		Site:       Site{Name: "Greensboro, NC", Latitude: 36.084, Longitude: -79.817, Timezone: "Etc/GMT+5"},
		Albedo:     0.8,
		Geometry:   DefaultGeometry(),
		ModuleID:   "Zytech_Solar_ZT320P",
		InverterID: "iPower__SHO_5_2__240V_",
	}
}

func TestScenarioValidate(t *testing.T) {
	assert.NoError(t, validScenario().Validate())

	bad := validScenario()
	bad.Albedo = 1.5
	assert.Error(t, bad.Validate())

	bad = validScenario()
	bad.Site.Latitude = 95
	assert.Error(t, bad.Validate())

	bad = validScenario()
	bad.Geometry.GCR = 0
	assert.Error(t, bad.Validate())

	bad = validScenario()
	bad.InverterID = ""
	assert.Error(t, bad.Validate())
}

func TestScenarioLabel(t *testing.T) {
	sc := validScenario()
	assert.Equal(t, "0.8", sc.Label(ModeAlbedo))
	assert.Equal(t, "Fresh snow: 0.8", sc.Title(ModeAlbedo))
	assert.Equal(t, "Greensboro, NC", sc.Label(ModeLocation))
	assert.Equal(t, "Albedo", ModeAlbedo.KeyHeader())
	assert.Equal(t, "location_results", ModeLocation.ResultSheet())
}

func TestInverterEtaNom(t *testing.T) {
	assert.InDelta(t, 0.96, Inverter{Paco: 4800, Pdco: 5000}.EtaNom(), 1e-12)
	assert.Equal(t, 0.99, Inverter{Paco: 5000, Pdco: 5000}.EtaNom())
	assert.Equal(t, 0.0, Inverter{Paco: 5000}.EtaNom())
}

func TestAOIModelFor(t *testing.T) {
	assert.Equal(t, AOINoLoss, AOIModelFor(VariantBifacial))
	assert.Equal(t, AOIPhysical, AOIModelFor(VariantMonofacial))
}
