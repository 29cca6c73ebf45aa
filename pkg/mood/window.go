package mood

import "time"

// BuildWindow 生成以windowEnd为最后一天的固定长度窗口，按时间升序排列。
// 没有记录的日期填充空桶(Scores为空, Average为0)。
func (a *Aggregator) BuildWindow(aggregated map[string]DayBucket, windowEnd time.Time, size int) []DayBucket {
	if size <= 0 {
		size = TrendWindowDays
	}

	window := make([]DayBucket, 0, size)
	for i := size - 1; i >= 0; i-- {
		day := a.dayOffset(windowEnd, -i)
		if b, ok := aggregated[a.DateKey(day)]; ok {
			window = append(window, b)
			continue
		}
		window = append(window, a.emptyBucket(day))
	}
	return window
}

// WindowStart 返回窗口第一天在参考时区下的零点
func (a *Aggregator) WindowStart(windowEnd time.Time, size int) time.Time {
	if size <= 0 {
		size = TrendWindowDays
	}
	y, m, d := windowEnd.In(a.loc).Date()
	return time.Date(y, m, d-(size-1), 0, 0, 0, 0, a.loc)
}

// Trend 聚合记录并生成7天趋势窗口
func (a *Aggregator) Trend(entries []Entry, now time.Time) []DayBucket {
	return a.BuildWindow(a.Aggregate(entries), now, TrendWindowDays)
}

// dayOffset 按日历天偏移，取正午避免夏令时切换导致跨日
func (a *Aggregator) dayOffset(t time.Time, days int) time.Time {
	y, m, d := t.In(a.loc).Date()
	return time.Date(y, m, d+days, 12, 0, 0, 0, a.loc)
}
