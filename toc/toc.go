// Package toc 收集目录条目并负责目录排版。
package toc

import (
	"github.com/ByLCY/quire/errs"
)

// MaxLevel 为最深的目录层级（0 起）。
const MaxLevel = 2

// Entry 为一条目录项。Page 为 0 表示页码尚未确定。
type Entry struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
	Page   int    `json:"page"`
}

// Collector 在一次构建中按出现顺序记录标题，每个锚点只能登记一次。
type Collector struct {
	entries []Entry
	seen    map[string]bool
}

// NewCollector 创建空收集器。
func NewCollector() *Collector {
	return &Collector{seen: map[string]bool{}}
}

// Record 登记一个已放置的标题及其页码。
func (c *Collector) Record(level int, text, anchor string, page int) error {
	if level < 0 || level > MaxLevel {
		return errs.Validation("目录层级必须在 0..%d 之间：%d", MaxLevel, level)
	}
	if page < 1 {
		return errs.Validation("标题 %q 的页码无效：%d", text, page)
	}
	if anchor != "" {
		if c.seen[anchor] {
			return errs.Validation("锚点 %s 重复登记", anchor)
		}
		c.seen[anchor] = true
	}
	c.entries = append(c.entries, Entry{Level: level, Text: text, Anchor: anchor, Page: page})
	return nil
}

// Entries 返回条目副本。
func (c *Collector) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len 返回已登记条目数。
func (c *Collector) Len() int { return len(c.entries) }

// Same 判断两组条目的文本与页码是否一致。
func Same(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
