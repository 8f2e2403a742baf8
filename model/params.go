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
	"github.com/gibbs-io/bayesfm/base/log"
	"go.uber.org/zap"
)

/* ParamName */

// ParamName is the type of hyper-parameter names.
type ParamName string

// Predefined hyper-parameter names
const (
	NFactors    ParamName = "NFactors"    // number of latent factors
	NEpochs     ParamName = "NEpochs"     // number of Gibbs sweeps
	BurnIn      ParamName = "BurnIn"      // number of discarded sweeps
	RandomState ParamName = "RandomState" // random state (seed)
	InitMean    ParamName = "InitMean"    // mean of gaussian initial parameter
	InitStdDev  ParamName = "InitStdDev"  // standard deviation of gaussian initial parameter
	Alpha0      ParamName = "Alpha0"      // shape of the gamma prior on the noise precision
	Beta0       ParamName = "Beta0"       // rate of the gamma prior on the noise precision
	MuPrior     ParamName = "MuPrior"     // mean of the gaussian prior on model parameters
	TauPrior    ParamName = "TauPrior"    // precision of the gaussian prior on model parameters
)

// Params stores hyper-parameters for a sampler. It is a map between strings
// (names) and interface{}s (values). For example, hyper-parameters for a
// Bayesian FM regression is given by:
//
//	model.Params{
//		model.NFactors: 8,
//		model.NEpochs:  200,
//		model.BurnIn:   50,
//		model.TauPrior: 1.0,
//	}
type Params map[ParamName]interface{}

// Copy hyper-parameters.
func (parameters Params) Copy() Params {
	newParams := make(Params)
	for k, v := range parameters {
		newParams[k] = v
	}
	return newParams
}

// GetInt gets a integer parameter by name. Returns _default if not exists or type doesn't match.
func (parameters Params) GetInt(name ParamName, _default int) int {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int:
			return val
		default:
			log.Logger().Error("invalid parameter type, expect int",
				zap.String("name", string(name)), zap.Any("value", val))
		}
	}
	return _default
}

// GetInt64 gets a int64 parameter by name. Returns _default if not exists or type doesn't match.
// The type will be converted if given int.
func (parameters Params) GetInt64(name ParamName, _default int64) int64 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int64:
			return val
		case int:
			return int64(val)
		default:
			log.Logger().Error("invalid parameter type, expect int64",
				zap.String("name", string(name)), zap.Any("value", val))
		}
	}
	return _default
}

// GetFloat64 gets a float parameter by name. Returns _default if not exists or type doesn't match.
// The type will be converted if given int.
func (parameters Params) GetFloat64(name ParamName, _default float64) float64 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case float64:
			return val
		case int:
			return float64(val)
		default:
			log.Logger().Error("invalid parameter type, expect float64",
				zap.String("name", string(name)), zap.Any("value", val))
		}
	}
	return _default
}

// GetBool gets a bool parameter by name. Returns _default if not exists or type doesn't match.
func (parameters Params) GetBool(name ParamName, _default bool) bool {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case bool:
			return val
		default:
			log.Logger().Error("invalid parameter type, expect bool",
				zap.String("name", string(name)), zap.Any("value", val))
		}
	}
	return _default
}

// Join returns the union of two sets of hyper-parameters. Values in params
// override values in the receiver.
func (parameters Params) Join(params Params) Params {
	newParams := make(Params)
	for k, v := range parameters {
		newParams[k] = v
	}
	for k, v := range params {
		newParams[k] = v
	}
	return newParams
}
