// Copyright 2025 The framed Authors
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

package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabels(t *testing.T) {
	ls := Labels{
		{Name: "source", Value: "node1.dat"},
		{Name: "format", Value: "pd0"},
	}.Sorted()

	assert.Equal(t, "format", ls[0].Name)
	assert.Equal(t, []string{"pd0", "node1.dat"}, ls.Values())
}

func TestLabelsHash(t *testing.T) {
	ls1 := Labels{{Name: "format", Value: "pd0"}, {Name: "source", Value: "a"}}
	ls2 := Labels{{Name: "source", Value: "a"}, {Name: "format", Value: "pd0"}}.Sorted()
	assert.Equal(t, ls1.Hash(), ls2.Hash())

	ls3 := Labels{{Name: "format", Value: "wvs"}, {Name: "source", Value: "a"}}
	assert.NotEqual(t, ls1.Hash(), ls3.Hash())
}
