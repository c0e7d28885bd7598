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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const gatewaySubsystem = "gateway"

var (
	// payloadBuckets 为载荷大小直方图的桶划分，单位为字节。
	// 实际桶分布为：
	// [1 2 4 8 16 32 64 128 256 512 1024 2048 4096 8192 16384 32768 65536 1.31072e+05]
	payloadBuckets = prometheus.ExponentialBuckets(1, 2, 18)

	// GatewayPackets 按包类型与处理结果统计分发过的包数量。
	GatewayPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "packets_total",
			Help:      "number of packets dispatched, by packet type and status",
		}, []string{packetTypeLabelName, statusLabelName})

	// GatewayUnknownPacketTypes 按具体的类型字节统计未知包。
	GatewayUnknownPacketTypes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "unknown_packet_types_total",
			Help:      "number of packets rejected for an unknown type byte, by type byte",
		}, []string{packetTypeLabelName})

	// GatewayHeartbeatPayloadBytes 统计成功回显的心跳载荷大小分布。
	GatewayHeartbeatPayloadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: zeusNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "heartbeat_payload_bytes",
			Help:      "distribution of echoed heartbeat payload sizes",
			Buckets:   payloadBuckets,
		})

	// GatewayAuthenticatedSessions 为当前处于已认证状态的会话数量。
	GatewayAuthenticatedSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: zeusNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "authenticated_sessions",
			Help:      "number of sessions currently authenticated",
		})

	// GatewayAuthAttempts 按结果统计认证尝试次数。
	GatewayAuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "auth_attempts_total",
			Help:      "number of session authentication attempts, by status",
		}, []string{statusLabelName})

	// GatewayReapedSessions 统计被空闲回收器重置的会话数量。
	GatewayReapedSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "reaped_sessions_total",
			Help:      "number of sessions reset by the idle reaper",
		})

	// GatewayInboxOccupancy 为各会话收件箱当前占用的字节数。
	GatewayInboxOccupancy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: zeusNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "inbox_occupancy_bytes",
			Help:      "bytes currently buffered in the session inbox",
		}, []string{sessionIDLabelName})

	// GatewayInboxBackpressure 统计使收件箱占用越过水位线的入队次数。
	GatewayInboxBackpressure = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "inbox_backpressure_total",
			Help:      "number of enqueues that left an inbox above its watermark",
		})
)
