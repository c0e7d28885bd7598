package json

import (
	stdjson "encoding/json"

	"github.com/bytedance/sonic"
)

// 统一走 sonic 的标准库兼容配置，保持与 encoding/json 一致的行为。
var json = sonic.ConfigStd

var (
	// Marshal 序列化对象为 JSON 字节。
	Marshal = json.Marshal
	// Unmarshal 反序列化 JSON 字节到对象。
	Unmarshal = json.Unmarshal
	// MarshalIndent 序列化对象为带缩进的 JSON 字节。
	MarshalIndent = json.MarshalIndent
	// NewDecoder 基于 io.Reader 创建解码器。
	NewDecoder = json.NewDecoder
	// NewEncoder 基于 io.Writer 创建编码器。
	NewEncoder = json.NewEncoder
)

type (
	// Number 与标准库 json.Number 保持一致。
	Number = stdjson.Number
	// RawMessage 与标准库 json.RawMessage 保持一致。
	RawMessage = stdjson.RawMessage
)
