package physics

// Params are the tunable constants of the resolver.
type Params struct {
	// SparkThreshold is the impulse magnitude above which a collision blends
	// colours and transfers spin.
	SparkThreshold float64 `yaml:"spark_threshold"`
	ColorMix       float64 `yaml:"color_mix"`
	SpinTransfer   float64 `yaml:"spin_transfer"`

	MagnetRadius  float64 `yaml:"magnet_radius"`
	MagnetEpsilon float64 `yaml:"magnet_epsilon"`
	MagnetScale   float64 `yaml:"magnet_scale"`
}

func DefaultParams() Params {
	return Params{
		SparkThreshold: 0.03,
		ColorMix:       0.1,
		SpinTransfer:   0.1,
		MagnetRadius:   1.0,
		MagnetEpsilon:  0.01,
		MagnetScale:    0.001,
	}
}
