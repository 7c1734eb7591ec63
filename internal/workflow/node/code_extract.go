package node

import "strings"

// CodeBlock 从模型输出中提取的一个围栏代码块
type CodeBlock struct {
	// Info 围栏信息串原文 (``` 之后的部分)
	Info string
	// Lang 语言标签，info 串的第一个字段
	Lang string
	// Marker 组件标注，形如 component:<name>:<kind>:<path>，可为空
	Marker string
	// Content 代码正文，不含围栏
	Content string
}

// MarkerPrefix 组件标注的固定前缀
const MarkerPrefix = "component:"

// ExtractCodeBlocks 从模型输出中提取全部围栏代码块。
// 容错逻辑：模型可能在代码前后夹杂说明文本，也可能遗漏结尾围栏。
func ExtractCodeBlocks(s string) []CodeBlock {
	var blocks []CodeBlock
	lines := strings.Split(s, "\n")
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "```") {
			i++
			continue
		}
		info := strings.TrimSpace(strings.TrimPrefix(line, "```"))
		i++
		start := i
		for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			i++
		}
		content := strings.Join(lines[start:i], "\n")
		if i < len(lines) {
			i++ // 跳过结尾围栏
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		blocks = append(blocks, parseBlock(info, content))
	}
	return blocks
}

// ExtractFirstCode 提取第一个代码块正文；没有围栏时返回去除首尾空白的全文。
func ExtractFirstCode(s string) string {
	blocks := ExtractCodeBlocks(s)
	if len(blocks) > 0 {
		return blocks[0].Content
	}
	return strings.TrimSpace(s)
}

func parseBlock(info, content string) CodeBlock {
	b := CodeBlock{Info: info, Content: content}
	fields := strings.Fields(info)
	for _, f := range fields {
		if strings.HasPrefix(f, MarkerPrefix) {
			b.Marker = f
			continue
		}
		if b.Lang == "" {
			b.Lang = f
		}
	}
	return b
}

// ParseMarker 解析组件标注，返回 name/kind/path。
// 标注不合法时 ok 为 false。
func ParseMarker(marker string) (name, kind, path string, ok bool) {
	if !strings.HasPrefix(marker, MarkerPrefix) {
		return "", "", "", false
	}
	rest := strings.TrimPrefix(marker, MarkerPrefix)
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return "", "", "", false
	}
	name = strings.TrimSpace(parts[0])
	kind = strings.TrimSpace(parts[1])
	if len(parts) == 3 {
		path = strings.TrimSpace(parts[2])
	}
	return name, kind, path, true
}
