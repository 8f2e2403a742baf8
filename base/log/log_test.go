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

package log

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDevelopmentLogger(t *testing.T) {
	temp := t.TempDir()
	// set existed path
	SetDevelopmentLogger(temp + "/bayesfm.log")
	_, err := os.Stat(temp + "/bayesfm.log")
	assert.NoError(t, err)
	// set non-existed path
	SetDevelopmentLogger(temp + "/bayesfm/bayesfm.log")
	_, err = os.Stat(temp + "/bayesfm/bayesfm.log")
	assert.NoError(t, err)
	assert.NotNil(t, Logger())
}

func TestSetProductionLogger(t *testing.T) {
	temp := t.TempDir()
	// set existed path
	SetProductionLogger(temp + "/bayesfm.log")
	_, err := os.Stat(temp + "/bayesfm.log")
	assert.NoError(t, err)
	// set non-existed path
	SetProductionLogger(temp + "/bayesfm/bayesfm.log")
	_, err = os.Stat(temp + "/bayesfm/bayesfm.log")
	assert.NoError(t, err)
	assert.NotNil(t, Logger())
}

func TestCloseLogger(t *testing.T) {
	CloseLogger()
	assert.NotNil(t, Logger())
	SetProductionLogger()
}
