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

package syncutil

import "context"

// AsyncTaskNotifier 用于管理后台任务的取消与完成通知。
// 任务方通过 Context 感知取消信号，退出前调用 Finish 上报结果；
// 控制方调用 Cancel 发出取消，并通过 BlockUntilFinish 等待任务退出。
type AsyncTaskNotifier[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	future *Future[T]
}

// NewAsyncTaskNotifier 创建一个新的后台任务通知器。
func NewAsyncTaskNotifier[T any]() *AsyncTaskNotifier[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncTaskNotifier[T]{
		ctx:    ctx,
		cancel: cancel,
		future: NewFuture[T](),
	}
}

// Context 返回任务侧用于监听取消信号的上下文。
func (n *AsyncTaskNotifier[T]) Context() context.Context {
	return n.ctx
}

// Cancel 向任务发出取消信号。
func (n *AsyncTaskNotifier[T]) Cancel() {
	n.cancel()
}

// Finish 标记任务完成并携带结果，只允许任务方调用一次。
func (n *AsyncTaskNotifier[T]) Finish(result T) {
	n.future.Set(result)
}

// FinishChan 返回任务完成时关闭的通道。
func (n *AsyncTaskNotifier[T]) FinishChan() <-chan struct{} {
	return n.future.Done()
}

// BlockUntilFinish 阻塞等待任务完成并返回其结果。
func (n *AsyncTaskNotifier[T]) BlockUntilFinish() T {
	return n.future.Get()
}
