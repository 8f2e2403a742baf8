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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gibbs-io/bayesfm/base"
	"github.com/gibbs-io/bayesfm/floats"
)

const predictEpsilon = 1e-10

// naivePredict scores a row through the quadratic pairwise sum. It is the
// correctness oracle for the reformulated fast path.
func naivePredict(fm *FM, x []float64) float64 {
	pred := fm.B
	for i := range x {
		pred += fm.W[i] * x[i]
	}
	for i := 0; i < len(x); i++ {
		for j := i + 1; j < len(x); j++ {
			pred += floats.Dot(fm.V[i], fm.V[j]) * x[i] * x[j]
		}
	}
	return pred
}

func newTestFM(nFeatures int, seed int64) *FM {
	fm := NewFM(nFeatures, Params{
		NFactors:    4,
		RandomState: seed,
		InitStdDev:  0.5,
	})
	rng := base.NewRandomGenerator(seed + 1)
	copy(fm.W, rng.NormalVector(nFeatures, 0, 1))
	fm.B = rng.NormFloat64()
	return fm
}

func TestFM_Predict(t *testing.T) {
	fm := newTestFM(10, 0)
	rng := base.NewRandomGenerator(42)
	for trial := 0; trial < 10; trial++ {
		x := rng.NormalVector(10, 0, 1)
		pred, err := fm.Predict(x)
		require.NoError(t, err)
		assert.InDelta(t, naivePredict(fm, x), pred, predictEpsilon)
	}
}

func TestFM_BatchPredict(t *testing.T) {
	fm := newTestFM(10, 0)
	rng := base.NewRandomGenerator(42)
	x := rng.NormalMatrix(16, 10, 0, 1)
	scores, err := fm.BatchPredict(x)
	require.NoError(t, err)
	require.Equal(t, 16, len(scores))
	for d := range x {
		pred, err := fm.Predict(x[d])
		require.NoError(t, err)
		assert.Equal(t, pred, scores[d])
	}
}

func TestFM_ShapeMismatch(t *testing.T) {
	fm := newTestFM(10, 0)
	_, err := fm.Predict(make([]float64, 11))
	assert.Error(t, err)
	_, err = fm.Predict(nil)
	assert.Error(t, err)
	_, err = fm.BatchPredict([][]float64{make([]float64, 10), make([]float64, 9)})
	assert.Error(t, err)
}

func TestFM_Dimensions(t *testing.T) {
	fm := NewFM(20, Params{NFactors: 6})
	assert.Equal(t, 20, fm.NumFeatures())
	assert.Equal(t, 6, fm.NumFactors())
	assert.Equal(t, 20, len(fm.W))
	assert.Equal(t, 20, len(fm.V))
	assert.Equal(t, 6, len(fm.V[0]))
}

func TestParams(t *testing.T) {
	params := Params{
		NFactors:    8,
		RandomState: int64(7),
		InitStdDev:  0.01,
	}
	assert.Equal(t, 8, params.GetInt(NFactors, 4))
	assert.Equal(t, int64(7), params.GetInt64(RandomState, 0))
	assert.Equal(t, 0.01, params.GetFloat64(InitStdDev, 0.1))
	// defaults
	assert.Equal(t, 4, params.GetInt(NEpochs, 4))
	assert.Equal(t, 0.1, params.GetFloat64(TauPrior, 0.1))
	assert.True(t, params.GetBool("Missing", true))
	// int promotion
	assert.Equal(t, 8.0, params.GetFloat64(NFactors, 0))
	assert.Equal(t, int64(8), params.GetInt64(NFactors, 0))
	// type mismatch falls back to default
	assert.Equal(t, 4, params.GetInt(InitStdDev, 4))
	// copy and join
	joined := params.Copy().Join(Params{NFactors: 16})
	assert.Equal(t, 16, joined.GetInt(NFactors, 0))
	assert.Equal(t, 8, params.GetInt(NFactors, 0))
}

func BenchmarkFM_BatchPredict(b *testing.B) {
	fm := NewFM(256, Params{NFactors: 16})
	rng := base.NewRandomGenerator(0)
	x := rng.NormalMatrix(64, 256, 0, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fm.BatchPredict(x)
	}
}
