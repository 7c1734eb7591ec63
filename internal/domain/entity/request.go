// Package entity 定义领域实体
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// GenerationRequest 生成请求，提交给流水线后不再变更
type GenerationRequest struct {
	// Prompt 自然语言描述，必填
	Prompt string `json:"prompt"`
	// Framework 目标框架，可选 (react/vue/gin/...)
	Framework string `json:"framework,omitempty"`
	// Language 目标语言，空值时使用配置默认
	Language string `json:"language,omitempty"`
	// Context 自由上下文 (domain/complexity/style 等提示)
	Context map[string]string `json:"context,omitempty"`
	// Components 调用方预先指定的组件，空则由流水线推导
	Components []ComponentSpec `json:"components,omitempty"`
	// Provider 指定 LLM 提供商，空值取默认
	Provider string `json:"provider,omitempty"`
}

// Valid 检查请求是否结构有效
func (r *GenerationRequest) Valid() bool {
	return r != nil && strings.TrimSpace(r.Prompt) != ""
}

// Fingerprint 计算请求的内容指纹，用于缓存/并发去重
func (r *GenerationRequest) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(r.Prompt)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(r.Framework))))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(r.Language))))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(r.Provider))))

	// context 按 key 排序保证稳定
	keys := make([]string, 0, len(r.Context))
	for k := range r.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(r.Context[k]))
	}

	for _, c := range r.Components {
		h.Write([]byte{0})
		h.Write([]byte(c.Name))
		h.Write([]byte{':'})
		h.Write([]byte(c.Purpose))
	}

	return hex.EncodeToString(h.Sum(nil))
}
