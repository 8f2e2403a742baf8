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

package model

import (
	"github.com/gibbs-io/bayesfm/base"
	"github.com/gibbs-io/bayesfm/floats"
	"github.com/juju/errors"
)

// ParamKind identifies which scalar parameter of a factorization machine a
// derivative or update targets.
type ParamKind int

const (
	// BiasParam targets the global bias w_0.
	BiasParam ParamKind = iota
	// WeightParam targets a linear weight w_i.
	WeightParam
	// FactorParam targets a latent factor entry v_{i,f}.
	FactorParam
)

func (kind ParamKind) String() string {
	switch kind {
	case BiasParam:
		return "bias"
	case WeightParam:
		return "weight"
	case FactorParam:
		return "factor"
	default:
		return "unknown"
	}
}

// FMCache holds the scoring state of a factorization machine over a fixed
// batch of rows. The prediction is affine-linear in every single scalar
// parameter, so after a one-parameter change the cached scores can be
// adjusted in O(rows) instead of recomputed in O(rows * features * factors).
//
// F is the current score per row. Q caches the per-factor projections
//
//	Q[d][f] = \sum^n_{j=1} v_{j,f} x_{d,j}
//
// Q is initialized once and only ever adjusted incrementally by ApplyUpdate;
// its invariant Q = X V holds up to floating-point error for any update
// sequence. The cache keeps a reference to the batch, not a copy: rows must
// not be modified while the cache is alive.
type FMCache struct {
	F []float64   // current prediction per row
	Q [][]float64 // cached projections, rows x factors

	x [][]float64
}

// NewCache builds the incremental scoring state for a batch of rows at
// O(rows * features * factors) cost.
func (fm *FM) NewCache(x [][]float64) (*FMCache, error) {
	cache := &FMCache{
		F: make([]float64, len(x)),
		Q: base.NewMatrix(len(x), fm.nFactors),
		x: x,
	}
	for d, row := range x {
		if len(row) != fm.nFeatures {
			return nil, errors.Errorf("dimension mismatch: row %d has %d features, expect %d", d, len(row), fm.nFeatures)
		}
		for i, xi := range row {
			floats.MulConstAddTo(fm.V[i], xi, cache.Q[d])
		}
		// Score the row through the cached projections: the squared sum in
		// the pairwise term is exactly Q[d][f]^2.
		pred := fm.B + floats.Dot(fm.W, row)
		sum := 0.0
		for f := 0; f < fm.nFactors; f++ {
			b := 0.0
			for i, xi := range row {
				b += fm.V[i][f] * fm.V[i][f] * xi * xi
			}
			sum += cache.Q[d][f]*cache.Q[d][f] - b
		}
		cache.F[d] = pred + sum/2
	}
	return cache, nil
}

// Len returns the number of cached rows.
func (cache *FMCache) Len() int {
	return len(cache.F)
}

// Derivative writes into dst the partial derivative of every cached row's
// score with respect to a single scalar parameter:
//
//	bias:   dst[d] = 1
//	weight: dst[d] = x_{d,i}
//	factor: dst[d] = x_{d,i} * (Q[d][f] - x_{d,i} * v_{i,f})
//
// The factor case reads the cached projection instead of recomputing it, so
// every kind costs O(rows). The index i is ignored for the bias and f is
// ignored for everything but factors.
func (cache *FMCache) Derivative(fm *FM, kind ParamKind, i, f int, dst []float64) error {
	if len(dst) != len(cache.F) {
		return errors.Errorf("dimension mismatch: expect %d rows, got %d", len(cache.F), len(dst))
	}
	switch kind {
	case BiasParam:
		for d := range dst {
			dst[d] = 1
		}
	case WeightParam:
		if i < 0 || i >= fm.nFeatures {
			return errors.Errorf("feature index %d out of range [0, %d)", i, fm.nFeatures)
		}
		for d := range dst {
			dst[d] = cache.x[d][i]
		}
	case FactorParam:
		if i < 0 || i >= fm.nFeatures {
			return errors.Errorf("feature index %d out of range [0, %d)", i, fm.nFeatures)
		}
		if f < 0 || f >= fm.nFactors {
			return errors.Errorf("factor index %d out of range [0, %d)", f, fm.nFactors)
		}
		vif := fm.V[i][f]
		for d := range dst {
			xdi := cache.x[d][i]
			dst[d] = xdi * (cache.Q[d][f] - xdi*vif)
		}
	default:
		return errors.Errorf("unknown parameter kind: %v", kind)
	}
	return nil
}

// ApplyUpdate adjusts the cached state after a single scalar parameter moves
// from oldValue to newValue, given the derivative h previously returned by
// Derivative for the same parameter:
//
//	F[d] += (newValue - oldValue) * h[d]
//	Q[d][f] += (newValue - oldValue) * x_{d,i}   (factors only)
//
// The caller commits newValue into the FM afterwards. Updates must be applied
// in the order parameters are sampled: each derivative depends on the cached
// projections left behind by all earlier updates.
func (cache *FMCache) ApplyUpdate(kind ParamKind, i, f int, newValue, oldValue float64, h []float64) error {
	if len(h) != len(cache.F) {
		return errors.Errorf("dimension mismatch: expect %d rows, got %d", len(cache.F), len(h))
	}
	delta := newValue - oldValue
	if kind == FactorParam && len(cache.x) > 0 {
		if i < 0 || i >= len(cache.x[0]) {
			return errors.Errorf("feature index %d out of range [0, %d)", i, len(cache.x[0]))
		}
		if f < 0 || f >= len(cache.Q[0]) {
			return errors.Errorf("factor index %d out of range [0, %d)", f, len(cache.Q[0]))
		}
	}
	floats.MulConstAddTo(h, delta, cache.F)
	if kind == FactorParam {
		for d := range cache.Q {
			cache.Q[d][f] += cache.x[d][i] * delta
		}
	}
	return nil
}
