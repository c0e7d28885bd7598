// Copyright (c) 2019 The Gnet Authors. All rights reserved.
// Copyright (c) 2019 Chao yuepan, Allen Xu
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE

package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeepsExactCapacity(t *testing.T) {
	// 容量不做 2 的幂取整。
	rb := New(100)
	assert.Equal(t, 100, rb.Cap())
	assert.Equal(t, 100, rb.Len())
	assert.Equal(t, 100, rb.Available())
	assert.True(t, rb.IsEmpty())
	assert.False(t, rb.IsFull())

	empty := New(0)
	assert.Equal(t, 0, empty.Cap())
	_, err := empty.Write([]byte{1})
	assert.ErrorIs(t, err, ErrIsFull)
}

func TestWriteRejectsWhenFull(t *testing.T) {
	rb := New(8)

	n, err := rb.Write([]byte("abcde"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, rb.Buffered())
	assert.Equal(t, 3, rb.Available())

	// 整段写入超出剩余空间时被整体拒绝，内容保持不变。
	n, err = rb.Write([]byte("wxyz"))
	assert.ErrorIs(t, err, ErrIsFull)
	assert.Equal(t, 0, n)
	assert.Equal(t, []byte("abcde"), rb.Bytes())
	assert.Equal(t, 5, rb.Buffered())

	n, err = rb.Write([]byte("fgh"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, rb.IsFull())
	assert.Equal(t, 0, rb.Available())

	assert.ErrorIs(t, rb.WriteByte('!'), ErrIsFull)
	assert.Equal(t, []byte("abcdefgh"), rb.Bytes())
}

func TestReadAndReset(t *testing.T) {
	rb := New(8)
	_, err := rb.WriteString("abcdefgh")
	assert.NoError(t, err)

	p := make([]byte, 3)
	n, err := rb.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte("abc"), p)
	assert.Equal(t, 5, rb.Buffered())

	// 读空后缓冲区回到“空”状态。
	rest := make([]byte, 8)
	n, err = rb.Read(rest)
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, rb.IsEmpty())

	_, err = rb.Read(p)
	assert.ErrorIs(t, err, ErrIsEmpty)
	_, err = rb.ReadByte()
	assert.ErrorIs(t, err, ErrIsEmpty)
}

func TestWrapAround(t *testing.T) {
	rb := New(8)
	_, err := rb.Write([]byte("abcdef"))
	assert.NoError(t, err)

	p := make([]byte, 4)
	_, err = rb.Read(p)
	assert.NoError(t, err)

	// 写入跨越环形边界。
	n, err := rb.Write([]byte("ghijkl"))
	assert.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 8, rb.Buffered())
	assert.True(t, rb.IsFull())
	assert.Equal(t, []byte("efghijkl"), rb.Bytes())

	head, tail := rb.Peek(8)
	assert.Equal(t, 8, len(head)+len(tail))
	assert.Equal(t, []byte("efghijkl"), append(append([]byte{}, head...), tail...))

	out := make([]byte, 8)
	n, err = rb.Read(out)
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte("efghijkl"), out)
	assert.True(t, rb.IsEmpty())
}

func TestPeekDoesNotAdvance(t *testing.T) {
	rb := New(16)
	_, err := rb.WriteString("hello")
	assert.NoError(t, err)

	head, tail := rb.Peek(3)
	assert.Equal(t, []byte("hel"), head)
	assert.Empty(t, tail)
	assert.Equal(t, 5, rb.Buffered())

	head, tail = rb.Peek(-1)
	assert.Equal(t, []byte("hello"), head)
	assert.Empty(t, tail)
	assert.Equal(t, 5, rb.Buffered())
}

func TestDiscard(t *testing.T) {
	rb := New(16)
	_, err := rb.WriteString("hello world")
	assert.NoError(t, err)

	discarded, err := rb.Discard(6)
	assert.NoError(t, err)
	assert.Equal(t, 6, discarded)
	assert.Equal(t, []byte("world"), rb.Bytes())

	// 丢弃超过可读数据时只丢弃现有数据并重置。
	discarded, err = rb.Discard(100)
	assert.NoError(t, err)
	assert.Equal(t, 5, discarded)
	assert.True(t, rb.IsEmpty())
	assert.Equal(t, 16, rb.Available())
}
