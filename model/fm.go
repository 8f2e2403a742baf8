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

// FM is a factorization machine over dense feature vectors. The prediction
// is given by
//
//	\hat y(x) = w_0 + \sum^n_{i=1} w_i x_i + \sum^n_{i=1} \sum^n_{j=i+1} <v_i, v_j> x_i x_j
//
// The pairwise term is evaluated through the O(nk) reformulation
//
//	1/2 \sum^k_{f=1} ((\sum_i v_{i,f} x_i)^2 - \sum_i v^2_{i,f} x^2_i)
//
// Hyper-parameters:
//
//	NFactors    - The number of latent factors. Default is 8.
//	RandomState - The random seed for initialization. Default is 0.
//	InitMean    - The mean of initial random latent factors. Default is 0.
//	InitStdDev  - The standard deviation of initial random latent factors. Default is 0.1.
type FM struct {
	B float64     // w_0
	W []float64   // w_i
	V [][]float64 // v_{i,f}
	// Hyper parameters
	nFeatures int
	nFactors  int
}

// NewFM creates a factorization machine for nFeatures dense features.
func NewFM(nFeatures int, params Params) *FM {
	fm := new(FM)
	fm.nFeatures = nFeatures
	fm.nFactors = params.GetInt(NFactors, 8)
	initMean := params.GetFloat64(InitMean, 0)
	initStdDev := params.GetFloat64(InitStdDev, 0.1)
	rng := base.NewRandomGenerator(params.GetInt64(RandomState, 0))
	fm.B = 0
	fm.W = make([]float64, nFeatures)
	fm.V = rng.NormalMatrix(nFeatures, fm.nFactors, initMean, initStdDev)
	return fm
}

// NumFeatures returns the feature dimension of the factorization machine.
func (fm *FM) NumFeatures() int {
	return fm.nFeatures
}

// NumFactors returns the number of latent factors.
func (fm *FM) NumFactors() int {
	return fm.nFactors
}

// Predict returns the score of a single feature vector. The input length
// must match the feature dimension.
func (fm *FM) Predict(x []float64) (float64, error) {
	if len(x) != fm.nFeatures {
		return 0, errors.Errorf("dimension mismatch: expect %d features, got %d", fm.nFeatures, len(x))
	}
	return fm.predict(x), nil
}

// BatchPredict returns the scores of a batch of feature vectors, one score
// per row.
func (fm *FM) BatchPredict(x [][]float64) ([]float64, error) {
	scores := make([]float64, len(x))
	for d, row := range x {
		if len(row) != fm.nFeatures {
			return nil, errors.Errorf("dimension mismatch: row %d has %d features, expect %d", d, len(row), fm.nFeatures)
		}
		scores[d] = fm.predict(row)
	}
	return scores, nil
}

func (fm *FM) predict(x []float64) float64 {
	// w_0
	pred := fm.B
	// \sum^n_{i=1} w_i x_i
	pred += floats.Dot(fm.W, x)
	// \sum^n_{i=1}\sum^n_{j=i+1} <v_i,v_j> x_i x_j
	sum := 0.0
	for f := 0; f < fm.nFactors; f++ {
		a, b := 0.0, 0.0
		for i, xi := range x {
			// 1) \sum^n_{i=1} v_{i,f} x_i
			a += fm.V[i][f] * xi
			// 2) \sum^n_{i=1} v^2_{i,f} x^2_i
			b += fm.V[i][f] * fm.V[i][f] * xi * xi
		}
		// 3) (\sum^n_{i=1} v_{i,f} x_i)^2 - \sum^n_{i=1} v^2_{i,f} x^2_i
		sum += a*a - b
	}
	pred += sum / 2
	return pred
}
