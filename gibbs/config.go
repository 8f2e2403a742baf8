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

// Package gibbs provides Gibbs samplers for Bayesian regression models built
// on the structured Gaussian sampler and the incremental factorization
// machine scorer. Sweeps are strictly sequential: the scoring cache is
// mutated in sampling order and must not be shared across goroutines.
package gibbs

// FitConfig controls the reporting behavior of a sampling run.
type FitConfig struct {
	Verbose int
}

// NewFitConfig creates the default fit config.
func NewFitConfig() *FitConfig {
	return &FitConfig{
		Verbose: 10,
	}
}

// SetVerbose sets the reporting interval in sweeps.
func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

// LoadDefaultIfNil returns the default config if the receiver is nil.
func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}
