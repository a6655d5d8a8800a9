package kzg

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
)

// EvalPoly evaluates poly (low-degree-first coefficients) at x via Horner's
// method.
func EvalPoly(poly []fr.Element, x fr.Element) fr.Element {
	var result fr.Element
	for i := len(poly) - 1; i >= 0; i-- {
		result.Mul(&result, &x)
		result.Add(&result, &poly[i])
	}
	return result
}

// ExtendEvaluations doubles the size of an evaluation vector via the DAS
// FFT-extension trick: IFFT back to coefficients on the size-n domain, zero
// pad to 2n, then FFT forward on the size-2n domain. The result is in
// natural domain order: its even-indexed entries reproduce the original
// evaluations in their original order; the odd-indexed entries are the
// redundant half used for erasure recovery.
func ExtendEvaluations(evals []fr.Element) ([]fr.Element, error) {
	n := len(evals)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("kzg: ExtendEvaluations requires a power-of-two length, got %d", n)
	}
	domainN := fft.NewDomain(uint64(n))
	coeffs := make([]fr.Element, n)
	copy(coeffs, evals)
	domainN.FFTInverse(coeffs, fft.DIF)
	fft.BitReverse(coeffs)

	extended := make([]fr.Element, 2*n)
	copy(extended, coeffs)

	domain2N := fft.NewDomain(uint64(2 * n))
	domain2N.FFT(extended, fft.DIF)
	fft.BitReverse(extended)
	return extended, nil
}

// CoeffsFromEvaluations recovers the coefficient form of a polynomial of
// degree < n from exactly n evaluations on the canonical n-th-root-of-unity
// domain (the inverse of evaluating via fft.Domain.FFT).
func CoeffsFromEvaluations(evals []fr.Element) ([]fr.Element, error) {
	n := len(evals)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("kzg: CoeffsFromEvaluations requires a power-of-two length, got %d", n)
	}
	domain := fft.NewDomain(uint64(n))
	coeffs := make([]fr.Element, n)
	copy(coeffs, evals)
	domain.FFTInverse(coeffs, fft.DIF)
	fft.BitReverse(coeffs)
	return coeffs, nil
}

// Interpolate returns the unique polynomial (in coefficient form, low
// degree first) of degree < len(xs) passing through every (xs[i], ys[i]),
// via direct Lagrange interpolation. Used for small point sets (segment
// multi-proofs, erasure recovery of a handful of missing cells), where
// O(n^2) is preferable to the bookkeeping of a fast interpolation scheme.
func Interpolate(xs, ys []fr.Element) ([]fr.Element, error) {
	n := len(xs)
	if n != len(ys) {
		return nil, fmt.Errorf("kzg: Interpolate: mismatched input lengths %d/%d", n, len(ys))
	}
	result := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		// Build the Lagrange basis polynomial L_i(X) = prod_{j!=i} (X - x_j)/(x_i - x_j).
		basis := make([]fr.Element, 1, n)
		basis[0].SetOne()
		var denom fr.Element
		denom.SetOne()
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			basis = mulLinear(basis, xs[j])
			var diff fr.Element
			diff.Sub(&xs[i], &xs[j])
			denom.Mul(&denom, &diff)
		}
		var denomInv fr.Element
		denomInv.Inverse(&denom)
		var scale fr.Element
		scale.Mul(&ys[i], &denomInv)
		for k := range basis {
			var term fr.Element
			term.Mul(&basis[k], &scale)
			result[k].Add(&result[k], &term)
		}
	}
	return result, nil
}

// mulLinear multiplies poly (coefficient form) by (X - root), returning a
// new, one-degree-higher coefficient slice.
func mulLinear(poly []fr.Element, root fr.Element) []fr.Element {
	out := make([]fr.Element, len(poly)+1)
	var negRoot fr.Element
	negRoot.Neg(&root)
	for i, c := range poly {
		var term fr.Element
		term.Mul(&c, &negRoot)
		out[i].Add(&out[i], &term)
		out[i+1].Add(&out[i+1], &c)
	}
	return out
}

// VanishingPolynomial returns the coefficients of Z(X) = prod_i (X - xs[i]).
func VanishingPolynomial(xs []fr.Element) []fr.Element {
	poly := []fr.Element{{}}
	poly[0].SetOne()
	for _, x := range xs {
		poly = mulLinear(poly, x)
	}
	return poly
}

// DivideExact computes the quotient of num / den, assuming the division is
// exact (den's roots are also roots of num, i.e. remainder is the zero
// polynomial). Used to build KZG opening-proof quotient polynomials, where
// this property holds by construction: num = poly - I, whose roots include
// every evaluation point of den = Z.
func DivideExact(num, den []fr.Element) ([]fr.Element, error) {
	num = trimTrailingZeros(num)
	den = trimTrailingZeros(den)
	if len(den) == 0 || den[len(den)-1].IsZero() {
		return nil, fmt.Errorf("kzg: DivideExact: invalid divisor")
	}
	if len(num) < len(den) {
		if len(num) == 0 || (len(num) == 1 && num[0].IsZero()) {
			return []fr.Element{{}}, nil
		}
		return nil, fmt.Errorf("kzg: DivideExact: numerator degree lower than divisor")
	}

	remainder := make([]fr.Element, len(num))
	copy(remainder, num)
	quotientLen := len(num) - len(den) + 1
	quotient := make([]fr.Element, quotientLen)

	var denLeadInv fr.Element
	denLeadInv.Inverse(&den[len(den)-1])

	for d := quotientLen - 1; d >= 0; d-- {
		lead := remainder[d+len(den)-1]
		if lead.IsZero() {
			continue
		}
		var coeff fr.Element
		coeff.Mul(&lead, &denLeadInv)
		quotient[d] = coeff
		for i, dc := range den {
			var sub fr.Element
			sub.Mul(&coeff, &dc)
			remainder[d+i].Sub(&remainder[d+i], &sub)
		}
	}
	for _, r := range remainder {
		if !r.IsZero() {
			return nil, fmt.Errorf("kzg: DivideExact: division left a non-zero remainder")
		}
	}
	return quotient, nil
}

func trimTrailingZeros(poly []fr.Element) []fr.Element {
	i := len(poly)
	for i > 0 && poly[i-1].IsZero() {
		i--
	}
	return poly[:i]
}
