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
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gibbs-io/bayesfm/base"
	"github.com/gibbs-io/bayesfm/base/log"
	"github.com/gibbs-io/bayesfm/floats"
	"github.com/gibbs-io/bayesfm/model"
)

// FMRegression is an MCMC sampler for Bayesian factorization machine
// regression
//
//	y = fm(x) + e,  e ~ N(0, 1/tau)
//
// with independent N(MuPrior, 1/TauPrior) priors on every model parameter.
// Each sweep draws every scalar parameter from its Gaussian full
// conditional. Because the score is affine-linear in any single parameter,
// the conditional only needs the derivative vector h and the residual, both
// maintained by the incremental scoring cache in O(rows) per parameter.
//
// Hyper-parameters:
//
//	NFactors    - The number of latent factors. Default is 8.
//	NEpochs     - The number of Gibbs sweeps. Default is 200.
//	BurnIn      - The number of discarded sweeps. Default is NEpochs / 5.
//	MuPrior     - The prior mean of model parameters. Default is 0.
//	TauPrior    - The prior precision of model parameters. Default is 1.
//	Alpha0      - The shape of the gamma prior on tau. Default is 1.
//	Beta0       - The rate of the gamma prior on tau. Default is 1.
//	InitStdDev  - The standard deviation of initial latent factors. Default is 0.1.
//	RandomState - The random seed. Default is 0.
type FMRegression struct {
	FM *model.FM // state after the last sweep

	params   model.Params
	nEpochs  int
	burnIn   int
	muPrior  float64
	tauPrior float64
	alpha0   float64
	beta0    float64
	rng      base.RandomGenerator
}

// FMPosterior holds the posterior predictive summary of an FM regression run.
type FMPosterior struct {
	// PredictionMean is the per-row posterior predictive mean over the
	// retained sweeps.
	PredictionMean []float64
	// Tau is the retained chain of noise precision draws.
	Tau []float64
	// RMSE is the training error of the posterior predictive mean.
	RMSE float64
}

// coordinate addresses one scalar parameter of a factorization machine.
type coordinate struct {
	kind    model.ParamKind
	feature int
	factor  int
}

// NewFMRegression creates an MCMC sampler for Bayesian FM regression.
func NewFMRegression(params model.Params) *FMRegression {
	r := new(FMRegression)
	r.params = params.Copy()
	r.nEpochs = params.GetInt(model.NEpochs, 200)
	r.burnIn = params.GetInt(model.BurnIn, r.nEpochs/5)
	r.muPrior = params.GetFloat64(model.MuPrior, 0)
	r.tauPrior = params.GetFloat64(model.TauPrior, 1)
	r.alpha0 = params.GetFloat64(model.Alpha0, 1)
	r.beta0 = params.GetFloat64(model.Beta0, 1)
	r.rng = base.NewRandomGenerator(params.GetInt64(model.RandomState, 0))
	return r
}

// Fit runs the MCMC sampler on a dense design matrix and targets.
func (r *FMRegression) Fit(x [][]float64, y []float64, config *FitConfig) (*FMPosterior, error) {
	config = config.LoadDefaultIfNil()
	if len(x) == 0 {
		return nil, errors.New("empty training set")
	}
	if len(y) != len(x) {
		return nil, errors.Errorf("dimension mismatch: y has length %d, expect %d", len(y), len(x))
	}
	if r.burnIn >= r.nEpochs {
		return nil, errors.Errorf("burn-in (%d) must be smaller than the number of sweeps (%d)", r.burnIn, r.nEpochs)
	}
	rows := len(x)
	dims := len(x[0])
	r.FM = model.NewFM(dims, r.params)
	cache, err := r.FM.NewCache(x)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("fit fm regression",
		zap.Int("rows", rows),
		zap.Int("dims", dims),
		zap.Int("n_factors", r.FM.NumFactors()),
		zap.Int("n_epochs", r.nEpochs),
		zap.Int("burn_in", r.burnIn))

	// one coordinate per scalar parameter
	schedule := []coordinate{{kind: model.BiasParam}}
	for i := 0; i < dims; i++ {
		schedule = append(schedule, coordinate{kind: model.WeightParam, feature: i})
	}
	for i := 0; i < dims; i++ {
		for f := 0; f < r.FM.NumFactors(); f++ {
			schedule = append(schedule, coordinate{kind: model.FactorParam, feature: i, factor: f})
		}
	}

	residual := make([]float64, rows)
	floats.SubTo(y, cache.F, residual)
	h := make([]float64, rows)
	predictionSum := make([]float64, rows)
	retained := 0
	tau := 1.0
	posterior := &FMPosterior{}
	for epoch := 1; epoch <= r.nEpochs; epoch++ {
		// randomize the sweep order
		for _, idx := range r.rng.Perm(len(schedule)) {
			if err := r.update(cache, schedule[idx], tau, h, residual); err != nil {
				return nil, errors.Trace(err)
			}
		}
		// tau | parameters, y
		tau = distuv.Gamma{
			Alpha: r.alpha0 + float64(rows)/2,
			Beta:  r.beta0 + sumSquares(residual)/2,
			Src:   r.rng.Source(),
		}.Rand()

		if epoch > r.burnIn {
			floats.Add(predictionSum, cache.F)
			posterior.Tau = append(posterior.Tau, tau)
			retained++
		}
		if epoch%config.Verbose == 0 || epoch == r.nEpochs {
			log.Logger().Debug("mcmc sweep",
				zap.Int("epoch", epoch),
				zap.Float64("tau", tau),
				zap.Float64("rmse", math.Sqrt(sumSquares(residual)/float64(rows))))
		}
	}
	posterior.PredictionMean = predictionSum
	floats.MulConst(posterior.PredictionMean, 1/float64(retained))
	posterior.RMSE = RMSE(posterior.PredictionMean, y)
	log.Logger().Info("fit fm regression complete",
		zap.Float64("rmse", posterior.RMSE),
		zap.Float64("tau", posterior.Tau[len(posterior.Tau)-1]))
	return posterior, nil
}

// update draws one scalar parameter from its Gaussian full conditional and
// applies the move to the cache, the residual and the parameter store.
func (r *FMRegression) update(cache *model.FMCache, c coordinate, tau float64, h, residual []float64) error {
	if err := cache.Derivative(r.FM, c.kind, c.feature, c.factor, h); err != nil {
		return errors.Trace(err)
	}
	var oldValue float64
	switch c.kind {
	case model.BiasParam:
		oldValue = r.FM.B
	case model.WeightParam:
		oldValue = r.FM.W[c.feature]
	case model.FactorParam:
		oldValue = r.FM.V[c.feature][c.factor]
	}
	// f = theta h + g, so with e = y - f the conditional is Gaussian with
	//   precision = TauPrior + tau sum h^2
	//   mean = (TauPrior MuPrior + tau sum h (e + theta h)) / precision
	sumH2 := sumSquares(h)
	sumHE := floats.Dot(h, residual)
	precision := r.tauPrior + tau*sumH2
	mean := (r.tauPrior*r.muPrior + tau*(sumHE+oldValue*sumH2)) / precision
	newValue := mean + r.rng.NormFloat64()/math.Sqrt(precision)
	if err := cache.ApplyUpdate(c.kind, c.feature, c.factor, newValue, oldValue, h); err != nil {
		return errors.Trace(err)
	}
	// the scores moved, so the residual moves the opposite way
	floats.MulConstAddTo(h, oldValue-newValue, residual)
	switch c.kind {
	case model.BiasParam:
		r.FM.B = newValue
	case model.WeightParam:
		r.FM.W[c.feature] = newValue
	case model.FactorParam:
		r.FM.V[c.feature][c.factor] = newValue
	}
	return nil
}
