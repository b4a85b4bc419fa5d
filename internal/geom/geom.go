package geom

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular indicates a direction set that does not form a basis.
var ErrSingular = errors.New("geom: singular system (directions not linearly independent)")

type Vector []float64

type Matrix []Vector

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) Dot(other Vector) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * other[i]
	}
	return sum
}

func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vector) Scale(factor float64) Vector {
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] * factor
	}
	return result
}

func (v Vector) Neg() Vector {
	return v.Scale(-1)
}

func (m Matrix) Clone() Matrix {
	c := make(Matrix, len(m))
	for i, row := range m {
		c[i] = row.Clone()
	}
	return c
}

// Angle returns the angle between v1 and v2 in [0, pi].
func Angle(v1, v2 Vector) float64 {
	cos := v1.Dot(v2) / (v1.Norm() * v2.Norm())
	// clamp against rounding before acos
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// OrthProx measures how far the angle between v1 and v2 is from pi/2.
// Orthogonal directions score 0; parallel or anti-parallel directions
// score pi/2.
func OrthProx(v1, v2 Vector) float64 {
	return math.Abs(Angle(v1, v2) - math.Pi/2)
}

// ContainsIndex reports whether n occurs in row.
func ContainsIndex(n int, row []int) bool {
	for _, v := range row {
		if v == n {
			return true
		}
	}
	return false
}

// IsPermutation reports whether v1 and v2 contain the same indices,
// regardless of order.
func IsPermutation(v1, v2 []int) bool {
	if len(v1) != len(v2) {
		return false
	}
	s2 := append([]int(nil), v2...)
	sort.Ints(s2)
	return isPermutationOfSorted(v1, s2)
}

func isPermutationOfSorted(v1, sorted []int) bool {
	if len(v1) != len(sorted) {
		return false
	}
	s1 := append([]int(nil), v1...)
	sort.Ints(s1)
	for i := range s1 {
		if s1[i] != sorted[i] {
			return false
		}
	}
	return true
}

// IsPermutationOfOtherRows reports whether row i of rows is a
// permutation of any other row.
func IsPermutationOfOtherRows(rows [][]int, i int) bool {
	sorted := append([]int(nil), rows[i]...)
	sort.Ints(sorted)
	for j, row := range rows {
		if j != i && isPermutationOfSorted(row, sorted) {
			return true
		}
	}
	return false
}

func toDense(m Matrix) *mat.Dense {
	r := len(m)
	c := len(m[0])
	d := mat.NewDense(r, c, nil)
	for i, row := range m {
		for j, v := range row {
			d.Set(i, j, v)
		}
	}
	return d
}

// Rank returns the numerical rank of m.
func Rank(m Matrix) int {
	var svd mat.SVD
	if !svd.Factorize(toDense(m), mat.SVDNone) {
		return 0
	}
	values := svd.Values(nil)
	tol := 1e-10 * values[0]
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	return rank
}

// IsSingular reports whether the square matrix m fails to form a basis.
func IsSingular(m Matrix) bool {
	return Rank(m) < len(m)
}

// SolveSystem solves the square linear system m*x = b via LU
// factorization. It returns ErrSingular when m is not invertible.
func SolveSystem(m Matrix, b Vector) (Vector, error) {
	n := len(m)
	var lu mat.LU
	lu.Factorize(toDense(m))
	x := mat.NewVecDense(n, nil)
	if err := lu.SolveVecTo(x, false, mat.NewVecDense(n, append([]float64(nil), b...))); err != nil {
		return nil, ErrSingular
	}
	result := make(Vector, n)
	for i := 0; i < n; i++ {
		result[i] = x.AtVec(i)
	}
	return result, nil
}
