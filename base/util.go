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

package base

// NewMatrix creates a 2D matrix of 64-bit floats.
func NewMatrix(row, col int) [][]float64 {
	ret := make([][]float64, row)
	for i := range ret {
		ret[i] = make([]float64, col)
	}
	return ret
}

// CopyMatrix returns a deep copy of a 2D matrix of 64-bit floats.
func CopyMatrix(x [][]float64) [][]float64 {
	ret := make([][]float64, len(x))
	for i := range ret {
		ret[i] = make([]float64, len(x[i]))
		copy(ret[i], x[i])
	}
	return ret
}

// RangeInt generate a slice [0, ..., n-1].
func RangeInt(n int) []int {
	a := make([]int, n)
	for i := range a {
		a[i] = i
	}
	return a
}
