package model

// Variant is the panel technology a curve was produced for.
// Keep these values stable; they are intended for CSV output.
type Variant string

const (
	VariantBifacial   Variant = "BIFACIAL"
	VariantMonofacial Variant = "MONOFACIAL"
)

// AOIModel names the reflection-loss model a model chain run uses.
type AOIModel string

const (
	// AOINoLoss disables reflection losses; the transposition step already applied them.
	AOINoLoss   AOIModel = "no_loss"
	AOIPhysical AOIModel = "physical"
)

// AOIModelFor returns the reflection-loss model each variant is run with.
func AOIModelFor(v Variant) AOIModel {
	if v == VariantBifacial {
		return AOINoLoss
	}
	return AOIPhysical
}
