package sampling

// Permill is a saturating fixed-point fraction with parts-per-million
// precision, modeled on Substrate's sp_arithmetic::Permill (the fixed-point
// type the reference confidence engine computes availability scores with).
// No example in this corpus ships a parts-per-million fixed-point type, so
// this is a deliberately small, self-contained port rather than an
// additional dependency.
type Permill uint32

// permillUnit is Permill's denominator: 1.0 represented as 1_000_000.
const permillUnit = 1_000_000

// PermillOne and PermillZero are the fixed-point representations of 1.0
// and 0.0.
const (
	PermillOne  Permill = permillUnit
	PermillZero Permill = 0
)

// NewPermill constructs a Permill from raw parts-per-million, saturating
// at PermillOne.
func NewPermill(partsPerMillion uint32) Permill {
	if partsPerMillion > permillUnit {
		return PermillOne
	}
	return Permill(partsPerMillion)
}

// Sub returns p - other, saturating at zero instead of underflowing.
func (p Permill) Sub(other Permill) Permill {
	if other >= p {
		return PermillZero
	}
	return p - other
}

// Mul returns p * other, computed in a wider integer to avoid overflow and
// rounded down.
func (p Permill) Mul(other Permill) Permill {
	product := uint64(p) * uint64(other) / permillUnit
	return Permill(product)
}

// SaturatingPow returns p raised to the given non-negative exponent.
func (p Permill) SaturatingPow(exp int) Permill {
	if exp <= 0 {
		return PermillOne
	}
	result := PermillOne
	base := p
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		exp >>= 1
	}
	return result
}

// Float64 returns p as a float64 in [0, 1], for logging and display only.
func (p Permill) Float64() float64 {
	return float64(p) / permillUnit
}
