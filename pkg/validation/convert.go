package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ticksPerSecond 一个 tick 为 100 纳秒
const ticksPerSecond = 10_000_000

// unixEpochSeconds 0001-01-01 到 1970-01-01 的秒数
const unixEpochSeconds = 62_135_596_800

// dateLayouts Range 边界可接受的日期格式
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// parseRangeBound 按 日期 → 浮点数 → 整数 的顺序解析
// 日期转换为自 0001-01-01 UTC 起的 tick 数
func parseRangeBound(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(timeTicks(t)), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(n), nil
	}
	return 0, fmt.Errorf("%q is not a date, float or integer", s)
}

// timeTicks 自 0001-01-01 UTC 起的 tick 数
func timeTicks(t time.Time) int64 {
	t = t.UTC()
	return (t.Unix()+unixEpochSeconds)*ticksPerSecond + int64(t.Nanosecond())/100
}
