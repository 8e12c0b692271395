package util

import (
	"regexp"
	"strconv"
	"strings"
)

const slugTitleMaxLen = 50

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugHyphens      = regexp.MustCompile(`-+`)
	slugDigits       = regexp.MustCompile(`^\d+$`)
)

// EncodeSlug 生成 "标题片段-ID" 形式的 URL 段，ID 始终位于最后一个连字符之后
func EncodeSlug(title string, id uint) string {
	s := strings.ToLower(title)
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	if len(s) > slugTitleMaxLen {
		s = s[:slugTitleMaxLen]
	}
	return s + "-" + strconv.FormatUint(uint64(id), 10)
}

// DecodeSlug 从右向左取最后一段数字作为 ID；无法解析时原样返回，由调用方按“未找到”处理
func DecodeSlug(slug string) string {
	if slugDigits.MatchString(slug) {
		return slug
	}
	parts := strings.Split(slug, "-")
	last := parts[len(parts)-1]
	if slugDigits.MatchString(last) {
		return last
	}
	return slug
}

// ParseSlugID 解析 slug 中的实体 ID，返回 false 表示不存在可用 ID
func ParseSlugID(slug string) (uint, bool) {
	raw := DecodeSlug(slug)
	if !slugDigits.MatchString(raw) {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
