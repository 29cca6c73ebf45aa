package mood

// Summary 一段时间内的心情统计
type Summary struct {
	Total    int          `json:"total"`
	Counts   map[Mood]int `json:"counts"`
	Average  float64      `json:"average"`
	Dominant Mood         `json:"dominant"`
}

// Summarize 统计各心情出现次数、平均分和主导心情
func Summarize(entries []Entry) Summary {
	s := Summary{
		Counts:   make(map[Mood]int, len(ordered)),
		Dominant: Neutral,
	}
	for _, m := range ordered {
		s.Counts[m] = 0
	}
	if len(entries) == 0 {
		return s
	}

	sum := 0
	for _, e := range entries {
		m, ok := ParseMood(e.Mood)
		if !ok {
			m = Neutral
		}
		s.Counts[m]++
		sum += scores[m]
	}
	s.Total = len(entries)
	s.Average = float64(sum) / float64(s.Total)

	// 次数相同时取分值较高者
	best := -1
	for _, m := range ordered {
		if s.Counts[m] >= best && s.Counts[m] > 0 {
			best = s.Counts[m]
			s.Dominant = m
		}
	}
	return s
}
