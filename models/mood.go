package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/BinLe1988/mood-tracker/pkg/mood"
)

// MoodEntry 心情记录
type MoodEntry struct {
	gorm.Model
	UserID   uint      `gorm:"not null;index:idx_mood_user_logged" json:"userId"`
	Mood     string    `gorm:"size:20;not null" json:"mood"`
	Notes    *string   `gorm:"type:text" json:"notes"`
	LoggedAt time.Time `gorm:"not null;index:idx_mood_user_logged" json:"loggedAt"`
}

// ToEntry 转换为聚合使用的记录
func (m *MoodEntry) ToEntry() mood.Entry {
	return mood.Entry{
		UserID:    m.UserID,
		Mood:      m.Mood,
		Timestamp: m.LoggedAt,
		Notes:     m.Notes,
	}
}

// ToEntries 批量转换
func ToEntries(records []MoodEntry) []mood.Entry {
	entries := make([]mood.Entry, len(records))
	for i := range records {
		entries[i] = records[i].ToEntry()
	}
	return entries
}

// MoodRequest 记录心情请求
type MoodRequest struct {
	Mood     string     `json:"mood" binding:"required,mood"`
	Notes    *string    `json:"notes" binding:"omitempty,max=2000"`
	LoggedAt *time.Time `json:"loggedAt"`
}

// AnalyzeRequest 文本情绪分析请求
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// MoodResponse 心情记录响应
type MoodResponse struct {
	ID       uint      `json:"id"`
	Mood     string    `json:"mood"`
	Score    int       `json:"score"`
	Notes    *string   `json:"notes"`
	LoggedAt time.Time `json:"loggedAt"`
}

// ToResponse 转换为响应
func (m *MoodEntry) ToResponse() MoodResponse {
	return MoodResponse{
		ID:       m.ID,
		Mood:     m.Mood,
		Score:    mood.ScoreOf(m.Mood),
		Notes:    m.Notes,
		LoggedAt: m.LoggedAt,
	}
}

// ToMoodResponses 批量转换
func ToMoodResponses(records []MoodEntry) []MoodResponse {
	out := make([]MoodResponse, len(records))
	for i := range records {
		out[i] = records[i].ToResponse()
	}
	return out
}

// TrendResponse 7天趋势
type TrendResponse struct {
	Timezone string           `json:"timezone"`
	Window   []mood.DayBucket `json:"window"`
}
