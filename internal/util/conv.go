package util

import (
	"strconv"
)

// ParsePositiveInt 解析正整数，失败返回 false
func ParsePositiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
