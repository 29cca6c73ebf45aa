package mood

import "time"

const (
	// TrendWindowDays 趋势图固定窗口天数
	TrendWindowDays = 7

	dateKeyLayout = "2006-01-02"
)

// Entry 聚合输入的心情记录(只读)
type Entry struct {
	UserID    uint
	Mood      string
	Timestamp time.Time
	Notes     *string
}

// DayBucket 单日聚合结果
type DayBucket struct {
	DateKey string  `json:"date"`
	Weekday string  `json:"day"`
	Label   string  `json:"label"`
	Scores  []int   `json:"scores"`
	Average float64 `json:"average"`
}

// HasData 当天是否有记录
func (b DayBucket) HasData() bool {
	return len(b.Scores) > 0
}

// Aggregator 按固定时区将记录分组到自然日
type Aggregator struct {
	loc *time.Location
}

// NewAggregator 创建聚合器，loc为nil时使用UTC
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{loc: loc}
}

// Location 返回参考时区
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// DateKey 返回时间在参考时区下的日期键(YYYY-MM-DD)
func (a *Aggregator) DateKey(t time.Time) string {
	return t.In(a.loc).Format(dateKeyLayout)
}

// Aggregate 按日期分组并计算每日平均分
func (a *Aggregator) Aggregate(entries []Entry) map[string]DayBucket {
	buckets := make(map[string]DayBucket)
	for _, e := range entries {
		key := a.DateKey(e.Timestamp)
		b, ok := buckets[key]
		if !ok {
			b = a.emptyBucket(e.Timestamp)
		}
		b.Scores = append(b.Scores, ScoreOf(e.Mood))
		buckets[key] = b
	}

	for key, b := range buckets {
		sum := 0
		for _, s := range b.Scores {
			sum += s
		}
		b.Average = float64(sum) / float64(len(b.Scores))
		buckets[key] = b
	}
	return buckets
}

func (a *Aggregator) emptyBucket(t time.Time) DayBucket {
	local := t.In(a.loc)
	return DayBucket{
		DateKey: local.Format(dateKeyLayout),
		Weekday: local.Format("Mon"),
		Label:   local.Format("Jan 2"),
		Scores:  []int{},
	}
}
