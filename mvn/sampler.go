// Copyright 2025 bayesfm Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package mvn samples from structured high-dimensional multivariate normal
distributions.

The target distribution is N(m, V) with

	V = (Phi^T Phi + Delta^{-1})^{-1}
	m = V Phi^T alpha

for a design matrix Phi (rows x dims), a linear term alpha and a symmetric
positive definite prior covariance Delta. This is the full conditional of the
coefficient block in Bayesian linear regression with a Gaussian prior.

Sample and SampleFull implement the algorithm of Bhattacharya, Chakraborty
and Mallick (2016), which reduces one draw to a rows x rows linear system
instead of a dims x dims Cholesky factorization:

 1. u ~ N(0, Delta)
 2. v = Phi u + e, e ~ N(0, I)
 3. solve (Phi Delta Phi^T + I) w = alpha - v
 4. theta = u + Delta Phi^T w

The cost is O(rows^2 dims + rows^3), advantageous whenever rows << dims.
Direct builds the naive sampler that factors the dims x dims precision; it is
the correctness and performance baseline.
*/
package mvn

import (
	"math"

	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/gibbs-io/bayesfm/base"
	"github.com/gibbs-io/bayesfm/floats"
)

// Sample draws one sample from N(m, V) for a diagonal prior covariance,
// given as the slice of its diagonal entries. All entries must be strictly
// positive.
func Sample(rng base.RandomGenerator, phi *mat.Dense, alpha, delta []float64) ([]float64, error) {
	rows, dims := phi.Dims()
	if err := checkShapes(rows, dims, alpha, delta); err != nil {
		return nil, errors.Trace(err)
	}
	// u ~ N(0, Delta) decomposes into independent univariate draws
	u := make([]float64, dims)
	for j := range u {
		u[j] = rng.NormFloat64() * math.Sqrt(delta[j])
	}
	// Phi Delta scales the columns of Phi
	b := mat.NewDense(rows, dims, nil)
	for i := 0; i < rows; i++ {
		floats.MulTo(phi.RawRowView(i), delta, b.RawRowView(i))
	}
	return sample(rng, phi, b, alpha, u)
}

// SampleFull draws one sample from N(m, V) for a general symmetric positive
// definite prior covariance. A non-positive-definite delta is rejected.
func SampleFull(rng base.RandomGenerator, phi *mat.Dense, alpha []float64, delta *mat.SymDense) ([]float64, error) {
	rows, dims := phi.Dims()
	if len(alpha) != rows {
		return nil, errors.Errorf("dimension mismatch: alpha has length %d, expect %d", len(alpha), rows)
	}
	if delta.SymmetricDim() != dims {
		return nil, errors.Errorf("dimension mismatch: delta is %d x %d, expect %d x %d",
			delta.SymmetricDim(), delta.SymmetricDim(), dims, dims)
	}
	var cholDelta mat.Cholesky
	if !cholDelta.Factorize(delta) {
		return nil, errors.New("prior covariance is not positive definite")
	}
	// u ~ N(0, Delta) via u = L z
	var l mat.TriDense
	cholDelta.LTo(&l)
	z := mat.NewVecDense(dims, rng.NormalVector(dims, 0, 1))
	uVec := mat.NewVecDense(dims, nil)
	uVec.MulVec(&l, z)
	u := uVec.RawVector().Data
	// Phi Delta
	var b mat.Dense
	b.Mul(phi, delta)
	return sample(rng, phi, &b, alpha, u)
}

// sample runs steps 2-4 given u ~ N(0, Delta) and b = Phi Delta.
func sample(rng base.RandomGenerator, phi, b *mat.Dense, alpha, u []float64) ([]float64, error) {
	rows, _ := phi.Dims()
	// v ~ N(Phi u, I)
	v := make([]float64, rows)
	for i := 0; i < rows; i++ {
		v[i] = floats.Dot(phi.RawRowView(i), u) + rng.NormFloat64()
	}
	// M = Phi Delta Phi^T + I
	m := mat.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		bi := b.RawRowView(i)
		for j := i; j < rows; j++ {
			mij := floats.Dot(bi, phi.RawRowView(j))
			if i == j {
				mij++
			}
			m.SetSym(i, j, mij)
		}
	}
	// solve M w = alpha - v
	var chol mat.Cholesky
	if !chol.Factorize(m) {
		return nil, errors.New("numerical instability: Phi Delta Phi^T + I is not positive definite")
	}
	rhs := make([]float64, rows)
	floats.SubTo(alpha, v, rhs)
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, mat.NewVecDense(rows, rhs)); err != nil {
		return nil, errors.Annotate(err, "solve failed")
	}
	// theta = u + Delta Phi^T w = u + (Phi Delta)^T w
	theta := append([]float64(nil), u...)
	for i := 0; i < rows; i++ {
		floats.MulConstAddTo(b.RawRowView(i), w.AtVec(i), theta)
	}
	return theta, nil
}

// Direct builds the naive sampler for the same target N(m, V) with diagonal
// prior covariance by forming the dims x dims precision Phi^T Phi +
// Delta^{-1} explicitly. One draw costs O(dims^3).
func Direct(rng base.RandomGenerator, phi *mat.Dense, alpha, delta []float64) (*distmv.Normal, error) {
	rows, dims := phi.Dims()
	if err := checkShapes(rows, dims, alpha, delta); err != nil {
		return nil, errors.Trace(err)
	}
	prec, mean, _, err := directMoments(phi, alpha, delta)
	if err != nil {
		return nil, errors.Trace(err)
	}
	normal, ok := distmv.NewNormalPrecision(mean, prec, rng.Source())
	if !ok {
		return nil, errors.New("numerical instability: precision matrix is not positive definite")
	}
	return normal, nil
}

// Moments returns the exact mean and covariance of the target distribution
// for a diagonal prior covariance, computed the naive way.
func Moments(phi *mat.Dense, alpha, delta []float64) (mean []float64, cov *mat.SymDense, err error) {
	rows, dims := phi.Dims()
	if err := checkShapes(rows, dims, alpha, delta); err != nil {
		return nil, nil, errors.Trace(err)
	}
	_, mean, chol, err := directMoments(phi, alpha, delta)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	cov = mat.NewSymDense(dims, nil)
	if err := chol.InverseTo(cov); err != nil {
		return nil, nil, errors.Annotate(err, "inverse failed")
	}
	return mean, cov, nil
}

// directMoments forms the precision Phi^T Phi + Delta^{-1} and solves for
// the mean m = (Phi^T Phi + Delta^{-1})^{-1} Phi^T alpha.
func directMoments(phi *mat.Dense, alpha, delta []float64) (*mat.SymDense, []float64, *mat.Cholesky, error) {
	rows, dims := phi.Dims()
	prec := mat.NewSymDense(dims, nil)
	rhs := make([]float64, dims)
	for d := 0; d < rows; d++ {
		row := phi.RawRowView(d)
		for i := 0; i < dims; i++ {
			for j := i; j < dims; j++ {
				prec.SetSym(i, j, prec.At(i, j)+row[i]*row[j])
			}
		}
		floats.MulConstAddTo(row, alpha[d], rhs)
	}
	for i := 0; i < dims; i++ {
		prec.SetSym(i, i, prec.At(i, i)+1/delta[i])
	}
	chol := new(mat.Cholesky)
	if !chol.Factorize(prec) {
		return nil, nil, nil, errors.New("numerical instability: precision matrix is not positive definite")
	}
	var mean mat.VecDense
	if err := chol.SolveVecTo(&mean, mat.NewVecDense(dims, rhs)); err != nil {
		return nil, nil, nil, errors.Annotate(err, "solve failed")
	}
	return prec, mean.RawVector().Data, chol, nil
}

func checkShapes(rows, dims int, alpha, delta []float64) error {
	if len(alpha) != rows {
		return errors.Errorf("dimension mismatch: alpha has length %d, expect %d", len(alpha), rows)
	}
	if len(delta) != dims {
		return errors.Errorf("dimension mismatch: delta has length %d, expect %d", len(delta), dims)
	}
	for j, dj := range delta {
		if dj <= 0 {
			return errors.Errorf("prior covariance must have strictly positive diagonal, got %v at %d", dj, j)
		}
	}
	return nil
}
