// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package typeutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueSet(t *testing.T) {
	set := NewUniqueSet(1, 2, 3)
	assert.True(t, set.Contain(1))
	assert.True(t, set.Contain(1, 2, 3))
	assert.False(t, set.Contain(1, 4))
	assert.Equal(t, 3, set.Len())

	set.Insert(4)
	assert.True(t, set.Contain(4))
	set.Remove(2)
	assert.False(t, set.Contain(2))
	assert.ElementsMatch(t, []UniqueID{1, 3, 4}, set.Collect())

	clone := set.Clone()
	clone.Clear()
	assert.Equal(t, 0, clone.Len())
	assert.Equal(t, 3, set.Len())
}

func TestSetOperations(t *testing.T) {
	left := NewSet("a", "b", "c")
	right := NewSet("b", "c", "d")

	assert.ElementsMatch(t, []string{"b", "c"}, left.Intersection(right).Collect())
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, left.Union(right).Collect())
	assert.ElementsMatch(t, []string{"a"}, left.Complement(right).Collect())

	count := 0
	left.Range(func(element string) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestConcurrentSet(t *testing.T) {
	set := NewConcurrentSet[UniqueID]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base UniqueID) {
			defer wg.Done()
			for j := UniqueID(0); j < 100; j++ {
				set.Upsert(base*100 + j)
			}
		}(UniqueID(i))
	}
	wg.Wait()

	assert.Equal(t, 800, len(set.Collect()))
	assert.True(t, set.Contain(0, 101, 799))

	assert.True(t, set.Insert(1000))
	assert.False(t, set.Insert(1000))
	assert.True(t, set.TryRemove(1000))
	assert.False(t, set.TryRemove(1000))
}
