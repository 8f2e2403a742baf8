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
	"math"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gibbs-io/bayesfm/base"
	"github.com/gibbs-io/bayesfm/base/log"
	"github.com/gibbs-io/bayesfm/floats"
	"github.com/gibbs-io/bayesfm/model"
	"github.com/gibbs-io/bayesfm/mvn"
)

// LinearRegression is a Gibbs sampler for Bayesian linear regression
//
//	y = Phi theta + e,  e ~ N(0, 1/tau I),  theta_j ~ N(0, 1/TauPrior)
//
// The coefficient block is drawn jointly through the structured Gaussian
// sampler, the noise precision tau through its gamma full conditional.
//
// Hyper-parameters:
//
//	NEpochs     - The number of Gibbs sweeps. Default is 200.
//	BurnIn      - The number of discarded sweeps. Default is NEpochs / 5.
//	TauPrior    - The prior precision of the coefficients. Default is 1.
//	Alpha0      - The shape of the gamma prior on tau. Default is 1.
//	Beta0       - The rate of the gamma prior on tau. Default is 1.
//	RandomState - The random seed. Default is 0.
type LinearRegression struct {
	nEpochs  int
	burnIn   int
	tauPrior float64
	alpha0   float64
	beta0    float64
	rng      base.RandomGenerator
}

// LinearPosterior holds the retained Gibbs chain of a linear regression run.
type LinearPosterior struct {
	Theta [][]float64 // coefficient draws, one row per retained sweep
	Tau   []float64   // noise precision draws
}

// ThetaMean returns the posterior mean of the coefficients.
func (posterior *LinearPosterior) ThetaMean() []float64 {
	mean := make([]float64, len(posterior.Theta[0]))
	for _, theta := range posterior.Theta {
		floats.Add(mean, theta)
	}
	floats.MulConst(mean, 1/float64(len(posterior.Theta)))
	return mean
}

// TauMean returns the posterior mean of the noise precision.
func (posterior *LinearPosterior) TauMean() float64 {
	return floats.Mean(posterior.Tau)
}

// NewLinearRegression creates a Gibbs sampler for Bayesian linear regression.
func NewLinearRegression(params model.Params) *LinearRegression {
	r := new(LinearRegression)
	r.nEpochs = params.GetInt(model.NEpochs, 200)
	r.burnIn = params.GetInt(model.BurnIn, r.nEpochs/5)
	r.tauPrior = params.GetFloat64(model.TauPrior, 1)
	r.alpha0 = params.GetFloat64(model.Alpha0, 1)
	r.beta0 = params.GetFloat64(model.Beta0, 1)
	r.rng = base.NewRandomGenerator(params.GetInt64(model.RandomState, 0))
	return r
}

// Fit runs the Gibbs sampler on a design matrix and targets and returns the
// retained chain.
func (r *LinearRegression) Fit(phi *mat.Dense, y []float64, config *FitConfig) (*LinearPosterior, error) {
	config = config.LoadDefaultIfNil()
	rows, dims := phi.Dims()
	if len(y) != rows {
		return nil, errors.Errorf("dimension mismatch: y has length %d, expect %d", len(y), rows)
	}
	if r.burnIn >= r.nEpochs {
		return nil, errors.Errorf("burn-in (%d) must be smaller than the number of sweeps (%d)", r.burnIn, r.nEpochs)
	}
	log.Logger().Info("fit linear regression",
		zap.Int("rows", rows),
		zap.Int("dims", dims),
		zap.Int("n_epochs", r.nEpochs),
		zap.Int("burn_in", r.burnIn))

	delta := lo.RepeatBy(dims, func(int) float64 { return 1 / r.tauPrior })
	posterior := &LinearPosterior{}
	tau := 1.0
	scaled := mat.NewDense(rows, dims, nil)
	alpha := make([]float64, rows)
	residual := make([]float64, rows)
	for epoch := 1; epoch <= r.nEpochs; epoch++ {
		// theta | tau, y: scale the system by sqrt(tau) so that the noise
		// covariance becomes the identity required by the sampler.
		sqrtTau := math.Sqrt(tau)
		for i := 0; i < rows; i++ {
			floats.MulConstTo(phi.RawRowView(i), sqrtTau, scaled.RawRowView(i))
		}
		floats.MulConstTo(y, sqrtTau, alpha)
		theta, err := mvn.Sample(r.rng, scaled, alpha, delta)
		if err != nil {
			return nil, errors.Trace(err)
		}
		// tau | theta, y
		for i := 0; i < rows; i++ {
			residual[i] = y[i] - floats.Dot(phi.RawRowView(i), theta)
		}
		tau = distuv.Gamma{
			Alpha: r.alpha0 + float64(rows)/2,
			Beta:  r.beta0 + sumSquares(residual)/2,
			Src:   r.rng.Source(),
		}.Rand()

		if epoch > r.burnIn {
			posterior.Theta = append(posterior.Theta, theta)
			posterior.Tau = append(posterior.Tau, tau)
		}
		if epoch%config.Verbose == 0 || epoch == r.nEpochs {
			log.Logger().Debug("gibbs sweep",
				zap.Int("epoch", epoch),
				zap.Float64("tau", tau),
				zap.Float64("rmse", math.Sqrt(sumSquares(residual)/float64(rows))))
		}
	}
	return posterior, nil
}
