package homing

import "github.com/pthm-cable/snaphome/config"

// Params weights the two correction terms of the homing vector.
type Params struct {
	// TurningWeight scales the bearing correction.
	TurningWeight float64
	// PositioningWeight scales the range correction. The default of 3
	// favors range over bearing.
	PositioningWeight float64
	// TurningSign is +1 for the standard convention, -1 mirrors every
	// turning contribution.
	TurningSign float64
	// HomeTolerance is how close (radians) two images must be, segment for
	// segment, to count as identical and produce no correction.
	HomeTolerance float64
}

// DefaultParams returns the standard weighting.
func DefaultParams() Params {
	return Params{
		TurningWeight:     1,
		PositioningWeight: 3,
		TurningSign:       1,
		HomeTolerance:     1e-9,
	}
}

// ParamsFromConfig returns parameters from the homing config section.
// Weights are taken as given; a zero tolerance keeps the default.
func ParamsFromConfig(cfg config.HomingConfig) Params {
	p := DefaultParams()
	p.TurningWeight = cfg.TurningWeight
	p.PositioningWeight = cfg.PositioningWeight
	if cfg.TurningSign < 0 {
		p.TurningSign = -1
	}
	if cfg.HomeTolerance > 0 {
		p.HomeTolerance = cfg.HomeTolerance
	}
	return p
}
