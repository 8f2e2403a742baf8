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
package gibbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/gibbs-io/bayesfm/base"
	"github.com/gibbs-io/bayesfm/model"
)

func TestFMRegression_Fit(t *testing.T) {
	const (
		rows  = 300
		dims  = 8
		sigma = 0.1
	)
	// synthetic data from a known factorization machine
	rng := base.NewRandomGenerator(0)
	truth := model.NewFM(dims, model.Params{
		model.NFactors:    2,
		model.RandomState: int64(1),
		model.InitStdDev:  0.6,
	})
	truth.B = 0.5
	copy(truth.W, rng.NormalVector(dims, 0, 1))
	x := rng.NormalMatrix(rows, dims, 0, 1)
	y, err := truth.BatchPredict(x)
	require.NoError(t, err)
	for i := range y {
		y[i] += rng.NormFloat64() * sigma
	}

	r := NewFMRegression(model.Params{
		model.NFactors:    2,
		model.NEpochs:     150,
		model.BurnIn:      50,
		model.TauPrior:    0.5,
		model.InitStdDev:  0.1,
		model.RandomState: int64(2),
	})
	posterior, err := r.Fit(x, y, NewFitConfig().SetVerbose(50))
	require.NoError(t, err)
	assert.Equal(t, 100, len(posterior.Tau))
	assert.Equal(t, rows, len(posterior.PredictionMean))

	// the posterior predictive mean must explain far more of the target than
	// its standard deviation baseline
	baseline := stat.StdDev(y, nil)
	assert.Less(t, posterior.RMSE, 0.3*baseline)
	assert.Less(t, posterior.RMSE, 0.5)
	// the fitted state must still satisfy the projection invariant, so a
	// fresh forward pass agrees with the sampled trajectory
	scores, err := r.FM.BatchPredict(x)
	require.NoError(t, err)
	cache, err := r.FM.NewCache(x)
	require.NoError(t, err)
	for d := range scores {
		assert.InDelta(t, scores[d], cache.F[d], 1e-8)
	}
}

func TestFMRegression_Rejections(t *testing.T) {
	rng := base.NewRandomGenerator(3)
	x := rng.NormalMatrix(10, 4, 0, 1)
	// empty training set
	r := NewFMRegression(nil)
	_, err := r.Fit(nil, nil, nil)
	assert.Error(t, err)
	// wrong target length
	_, err = r.Fit(x, make([]float64, 9), nil)
	assert.Error(t, err)
	// ragged design matrix
	ragged := [][]float64{make([]float64, 4), make([]float64, 5)}
	_, err = r.Fit(ragged, make([]float64, 2), nil)
	assert.Error(t, err)
	// burn-in swallows the whole chain
	r = NewFMRegression(model.Params{model.NEpochs: 10, model.BurnIn: 20})
	_, err = r.Fit(x, make([]float64, 10), nil)
	assert.Error(t, err)
}
