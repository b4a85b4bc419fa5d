package sym

// Bernstein conversion over the unit box.
//
// For a polynomial p(alpha) = sum_j a_j * alpha^j of multi-degree d,
// the coefficients of p in the Bernstein basis over [0,1]^n are
//
//	b_i = sum_{j <= i} prod_k [ C(i_k, j_k) / C(d_k, j_k) ] * a_j
//
// and min_i b_i <= p(alpha) <= max_i b_i for every alpha in the box.
// The bound is exact for multi-degree-one polynomials.

type powerCoeff struct {
	index []int
	coeff Expression
}

// BernsteinCoeffs returns the Bernstein coefficients of e with respect
// to the alpha symbols over [0,1]^len(alpha), enumerated in
// lexicographic multi-index order. Symbols other than alpha (system
// parameters) survive into the returned coefficients.
func BernsteinCoeffs(alpha []Symbol, e Expression) []Expression {
	degrees := make([]int, len(alpha))
	for k, a := range alpha {
		degrees[k] = e.DegreeIn(a)
	}

	coeffs := powerBasisCoeffs(alpha, e)

	total := 1
	for _, d := range degrees {
		total *= d + 1
	}

	result := make([]Expression, 0, total)
	index := make([]int, len(alpha))
	for n := 0; n < total; n++ {
		b := Zero()
		for _, pc := range coeffs {
			if !indexLeq(pc.index, index) {
				continue
			}
			w := 1.0
			for k := range index {
				w *= binomial(index[k], pc.index[k]) / binomial(degrees[k], pc.index[k])
			}
			b = b.Add(pc.coeff.Scale(w))
		}
		result = append(result, b)
		incrementIndex(index, degrees)
	}
	return result
}

// powerBasisCoeffs groups the terms of e by their alpha exponents; the
// residual factor of each group keeps any remaining symbols.
func powerBasisCoeffs(alpha []Symbol, e Expression) []powerCoeff {
	alphaSet := make(map[Symbol]int, len(alpha))
	for k, a := range alpha {
		alphaSet[a] = k
	}

	grouped := map[string]*powerCoeff{}
	order := []string{}
	for _, t := range e.terms {
		index := make([]int, len(alpha))
		residual := map[Symbol]int{}
		for s, exp := range t.powers {
			if k, ok := alphaSet[s]; ok {
				index[k] = exp
			} else {
				residual[s] = exp
			}
		}
		key := indexKey(index)
		entry, ok := grouped[key]
		if !ok {
			entry = &powerCoeff{index: index, coeff: Zero()}
			grouped[key] = entry
			order = append(order, key)
		}
		entry.coeff = entry.coeff.Add(Term(t.coeff, residual))
	}

	result := make([]powerCoeff, 0, len(order))
	for _, key := range order {
		result = append(result, *grouped[key])
	}
	return result
}

func indexKey(index []int) string {
	key := make([]byte, 0, 2*len(index))
	for _, v := range index {
		key = append(key, byte(v), ',')
	}
	return string(key)
}

func indexLeq(a, b []int) bool {
	for k := range a {
		if a[k] > b[k] {
			return false
		}
	}
	return true
}

// incrementIndex advances a multi-index odometer bounded by degrees.
func incrementIndex(index, degrees []int) {
	for k := len(index) - 1; k >= 0; k-- {
		if index[k] < degrees[k] {
			index[k]++
			return
		}
		index[k] = 0
	}
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result = result * float64(n-i) / float64(i+1)
	}
	return result
}
