package params

import "errors"

// Domain errors for parameter operations.
var (
	// ErrUnknownChemistry indicates a chemistry name outside the supported table.
	ErrUnknownChemistry = errors.New("params: unknown chemistry")

	// ErrNoVoltageLimits indicates a chemistry without a voltage limit record.
	ErrNoVoltageLimits = errors.New("params: no voltage limits for chemistry")

	// ErrMissingBaseValue indicates a base set missing a field an override depends on.
	ErrMissingBaseValue = errors.New("params: missing base value")
)
