package node

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// esImportRe 匹配 ES 模块导入：import x from 'pkg' / import 'pkg' / export ... from 'pkg'
	esImportRe = regexp.MustCompile(`(?m)^\s*(?:import|export)\b[^'"\n]*?['"]([^'"\n]+)['"]`)
	// requireRe 匹配 CommonJS 导入：require('pkg')
	requireRe = regexp.MustCompile(`\brequire\(\s*['"]([^'"\n]+)['"]\s*\)`)
	// pyImportRe 匹配 Python 导入：import x / from x import y
	pyImportRe = regexp.MustCompile(`(?m)^\s*(?:from\s+([A-Za-z_][\w.]*)\s+import\b|import\s+([A-Za-z_][\w.]*))`)
	// goImportRe 匹配 Go 单行导入以及导入块内的路径行
	goImportRe = regexp.MustCompile(`(?m)^\s*(?:import\s+)?(?:[A-Za-z_.]\w*\s+)?"([^"\n]+)"`)
)

// ExtractDependencies 从代码正文中提取外部依赖名。
// 相对路径导入 (./ 和 ../) 不算依赖；作用域包保留 @scope/pkg 两段，
// 其余取首段。返回去重且排序后的列表。
func ExtractDependencies(content, language string) []string {
	set := make(map[string]struct{})

	switch normalizeLang(language) {
	case "python":
		for _, m := range pyImportRe.FindAllStringSubmatch(content, -1) {
			mod := m[1]
			if mod == "" {
				mod = m[2]
			}
			if name := pythonPackage(mod); name != "" {
				set[name] = struct{}{}
			}
		}
	case "go":
		inBlock := false
		for _, line := range strings.Split(content, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "import (") {
				inBlock = true
				continue
			}
			if inBlock && trimmed == ")" {
				inBlock = false
				continue
			}
			if !inBlock && !strings.HasPrefix(trimmed, "import") {
				continue
			}
			if m := goImportRe.FindStringSubmatch(line); m != nil {
				if name := goModulePath(m[1]); name != "" {
					set[name] = struct{}{}
				}
			}
		}
	default:
		for _, m := range esImportRe.FindAllStringSubmatch(content, -1) {
			if name := jsPackage(m[1]); name != "" {
				set[name] = struct{}{}
			}
		}
		for _, m := range requireRe.FindAllStringSubmatch(content, -1) {
			if name := jsPackage(m[1]); name != "" {
				set[name] = struct{}{}
			}
		}
	}

	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalizeLang(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "python", "py":
		return "python"
	case "go", "golang":
		return "go"
	default:
		return "js"
	}
}

// jsPackage 归一化 JS 模块说明符：相对路径返回空，
// @scope/pkg 保留两段，其余取首段。
func jsPackage(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		return ""
	}
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") {
		if len(parts) < 2 {
			return ""
		}
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// pythonPackage 取模块路径首段，相对导入 (首字符为点) 已被正则排除
func pythonPackage(mod string) string {
	mod = strings.TrimSpace(mod)
	if mod == "" {
		return ""
	}
	return strings.SplitN(mod, ".", 2)[0]
}

// goModulePath 只保留第三方路径：首段不含点的视为标准库
func goModulePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	first := strings.SplitN(path, "/", 2)[0]
	if !strings.Contains(first, ".") {
		return ""
	}
	return path
}
