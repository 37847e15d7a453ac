// Package binding 把脚本中的 ${path} 占位符与表格数据源绑定到统计流程产出的嵌套结果树。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/quire/errs"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则返回原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return Format(val)
		}
		return match
	})
}

// Lookup 按 a.b[0].c 形式的路径取值。
func Lookup(data any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if data == nil || path == "" {
		return nil, false
	}
	return resolvePath(data, path)
}

// Format 把绑定值转换为单元格文本；浮点数去掉多余的零。
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

// Rows 把 path 指向的数组展开为表格行。
// 元素为对象时按 fields 取列（缺失字段为空串）；元素为数组时逐项转换，fields 被忽略。
func Rows(data any, path string, fields []string) ([][]string, error) {
	val, ok := Lookup(data, path)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "数据路径 %s 不存在", path)
	}
	items, ok := val.([]interface{})
	if !ok {
		return nil, errs.Validation("数据路径 %s 不是数组", path)
	}
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		switch it := item.(type) {
		case map[string]interface{}:
			if len(fields) == 0 {
				return nil, errs.Validation("%s[%d] 为对象，需要指定字段", path, i)
			}
			row := make([]string, len(fields))
			for j, f := range fields {
				if v, ok := resolvePath(it, f); ok {
					row[j] = Format(v)
				}
			}
			rows = append(rows, row)
		case []interface{}:
			row := make([]string, len(it))
			for j, v := range it {
				row[j] = Format(v)
			}
			rows = append(rows, row)
		default:
			rows = append(rows, []string{Format(it)})
		}
	}
	return rows, nil
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]interface{}:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []interface{}:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
