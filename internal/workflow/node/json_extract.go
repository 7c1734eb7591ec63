package node

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject 从模型输出中截取第一个完整 JSON 值（对象或数组）。
// 模型常把 JSON 包进围栏或夹杂说明文本：先找 json 围栏块，
// 再按括号定位并用 Decoder 消费一个完整值来确定截止位置。
func ExtractJSONObject(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return raw
	}

	for _, b := range ExtractCodeBlocks(raw) {
		lang := strings.ToLower(b.Lang)
		if lang != "" && lang != "json" {
			continue
		}
		if v := decodeFirstJSONValue(b.Content); v != "" {
			return v
		}
	}
	if v := decodeFirstJSONValue(raw); v != "" {
		return v
	}
	return raw
}

// decodeFirstJSONValue 定位首个 { 或 [ 并解码一个完整 JSON 值，
// 返回值原文；解析失败返回空串。
func decodeFirstJSONValue(s string) string {
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	start := objStart
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start = arrStart
	}
	if start < 0 {
		return ""
	}

	dec := json.NewDecoder(strings.NewReader(s[start:]))
	dec.UseNumber()
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	return strings.TrimSpace(string(v))
}
