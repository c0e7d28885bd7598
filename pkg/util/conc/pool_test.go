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

package conc

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
)

func TestPool(t *testing.T) {
	pool := NewPool[int](4)
	defer pool.Release()

	assert.Equal(t, 4, pool.Cap())

	futures := make([]*Future[int], 0, 16)
	for i := 0; i < 16; i++ {
		i := i
		futures = append(futures, pool.Submit(func() (int, error) {
			return i * i, nil
		}))
	}

	assert.NoError(t, AwaitAll(futures...))
	for i, f := range futures {
		assert.True(t, f.OK())
		assert.Equal(t, i*i, f.Value())
	}
}

func TestPoolError(t *testing.T) {
	pool := NewPool[struct{}](2)
	defer pool.Release()

	mockErr := errors.New("mock submit error")
	ok := pool.Submit(func() (struct{}, error) {
		return struct{}{}, nil
	})
	bad := pool.Submit(func() (struct{}, error) {
		return struct{}{}, mockErr
	})

	assert.NoError(t, ok.Err())
	assert.ErrorIs(t, bad.Err(), mockErr)
	assert.False(t, bad.OK())
	assert.Error(t, AwaitAll(ok, bad))
}

func TestPoolResize(t *testing.T) {
	pool := NewPool[struct{}](4)
	defer pool.Release()

	assert.NoError(t, pool.Resize(8))
	assert.Equal(t, 8, pool.Cap())
	assert.ErrorIs(t, pool.Resize(0), merr.ErrParameterInvalid)

	prealloc := NewPool[struct{}](4, WithPreAlloc(true))
	defer prealloc.Release()
	assert.Error(t, prealloc.Resize(8))
}

func TestPoolConcurrency(t *testing.T) {
	pool := NewPool[struct{}](2)
	defer pool.Release()

	running := atomic.Int32{}
	peak := atomic.Int32{}

	futures := make([]*Future[struct{}], 0, 8)
	for i := 0; i < 8; i++ {
		futures = append(futures, pool.Submit(func() (struct{}, error) {
			cur := running.Add(1)
			defer running.Add(-1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return struct{}{}, nil
		}))
	}

	assert.NoError(t, AwaitAll(futures...))
	// 并发 worker 数不超过池容量。
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestGo(t *testing.T) {
	f := Go(func() (string, error) {
		return "done", nil
	})
	val, err := f.Await()
	assert.NoError(t, err)
	assert.Equal(t, "done", val)
}
