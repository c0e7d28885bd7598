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

package merr

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrSessionNotFound(1)
	errors.Wrap(err, "failed to get session")
	s.ErrorIs(err, ErrSessionNotFound)
	s.Equal(Code(ErrSessionNotFound), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))

	sameCodeErr := newZeusError("new error", ErrSessionNotFound.errCode, false)
	s.True(sameCodeErr.Is(ErrSessionNotFound))
}

func (s *ErrSuite) TestWrap() {
	// Service 相关错误。
	s.ErrorIs(WrapErrServiceInternal("never throw out"), ErrServiceInternal)

	// Packet 相关错误。
	s.ErrorIs(WrapErrPacketEmpty("nothing to dispatch"), ErrPacketEmpty)
	s.ErrorIs(WrapErrPacketTruncated(16384, 2, "failed to decode heartbeat"), ErrPacketTruncated)
	s.ErrorIs(WrapErrPacketMalformed(2, "header incomplete"), ErrPacketMalformed)
	s.ErrorIs(WrapErrPacketTooLarge(70000, 65535, "failed to decode heartbeat"), ErrPacketTooLarge)
	s.ErrorIs(WrapErrPacketTypeUnknown(0x7f, "failed to dispatch"), ErrPacketTypeUnknown)
	s.ErrorIs(WrapErrOutputTooSmall(1024, 16, "failed to echo heartbeat"), ErrOutputTooSmall)

	// Session 相关错误。
	s.ErrorIs(WrapErrSessionNotFound(42, "failed to dispatch"), ErrSessionNotFound)
	s.ErrorIs(WrapErrSessionAuthFailed(42, "failed to authenticate"), ErrSessionAuthFailed)
	s.ErrorIs(WrapErrSessionUnauthorized(42, "failed to enqueue chat"), ErrSessionUnauthorized)

	// Inbox 相关错误。
	s.ErrorIs(WrapErrInboxOverflow(128, 16, "failed to enqueue chat"), ErrInboxOverflow)

	// 参数相关错误。
	s.ErrorIs(WrapErrParameterInvalid(8, 1, "failed to create"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidRange(1, 1<<16, 0, "capacity should be in range"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterMissing("auth-token", "no token configured"), ErrParameterMissing)
}

func (s *ErrSuite) TestRetriable() {
	s.True(IsRetryableErr(ErrInboxOverflow))
	s.False(IsRetryableErr(ErrPacketTruncated))
	s.False(IsRetryableErr(ErrSessionNotFound))
	s.True(IsRetryableErr(WrapErrInboxOverflow(128, 16)))
	// 追加消息后错误被再包装，不再是裸的 zeusError。
	s.False(IsRetryableErr(WrapErrInboxOverflow(128, 16, "enqueue chat")))
}

func (s *ErrSuite) TestErrorType() {
	s.Equal(SystemError, GetErrorType(ErrPacketTruncated))

	marked := WrapErrAsInputError(ErrPacketTruncated)
	s.Equal(InputError, GetErrorType(marked))
	s.ErrorIs(marked, ErrPacketTruncated)
	s.Equal("input_error", GetErrorType(marked).String())

	when := WrapErrAsInputErrorWhen(ErrPacketMalformed, ErrPacketEmpty, ErrPacketMalformed)
	s.Equal(InputError, GetErrorType(when))
	s.Equal(SystemError, GetErrorType(WrapErrAsInputErrorWhen(ErrSessionNotFound, ErrPacketMalformed)))
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	err = Combine(nil, err)
	s.NotNil(err)
}

func (s *ErrSuite) TestCombineOnlyNil() {
	err := Combine(nil, nil)
	s.Nil(err)
}

func (s *ErrSuite) TestCombineCode() {
	err := Combine(WrapErrInboxOverflow(128, 16), WrapErrSessionNotFound(1))
	s.Equal(Code(ErrSessionNotFound), Code(err))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
