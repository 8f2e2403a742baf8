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

	"github.com/gibbs-io/bayesfm/floats"
)

// RMSE computes the root mean square error between predictions and targets.
func RMSE(predictions, targets []float64) float64 {
	if len(predictions) != len(targets) {
		panic("gibbs: slice lengths do not match")
	}
	sum := 0.0
	for i := range predictions {
		e := predictions[i] - targets[i]
		sum += e * e
	}
	return math.Sqrt(sum / float64(len(predictions)))
}

// sumSquares returns the squared Euclidean norm of a vector.
func sumSquares(a []float64) float64 {
	return floats.Dot(a, a)
}
