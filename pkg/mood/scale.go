package mood

import "strings"

// Mood 心情标签
type Mood string

const (
	Angry   Mood = "angry"
	Sad     Mood = "sad"
	Neutral Mood = "neutral"
	Calm    Mood = "calm"
	Happy   Mood = "happy"
)

// NeutralScore 未知标签的默认分值
const NeutralScore = 3

var scores = map[Mood]int{
	Angry:   1,
	Sad:     2,
	Neutral: 3,
	Calm:    4,
	Happy:   5,
}

var ordered = [...]Mood{Angry, Sad, Neutral, Calm, Happy}

// Moods 按分值升序返回全部心情标签
func Moods() []Mood {
	out := make([]Mood, len(ordered))
	copy(out, ordered[:])
	return out
}

// ParseMood 解析心情标签，忽略首尾空白和大小写
func ParseMood(label string) (Mood, bool) {
	m := Mood(strings.ToLower(strings.TrimSpace(label)))
	if _, ok := scores[m]; !ok {
		return "", false
	}
	return m, true
}

// ScoreOf 返回标签对应的分值(1-5)，未知标签返回中性分值
func ScoreOf(label string) int {
	m, ok := ParseMood(label)
	if !ok {
		return NeutralScore
	}
	return scores[m]
}

// Score 返回该心情的分值
func (m Mood) Score() int {
	return ScoreOf(string(m))
}

func (m Mood) String() string {
	return string(m)
}
