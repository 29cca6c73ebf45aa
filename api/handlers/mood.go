package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BinLe1988/mood-tracker/models"
	"github.com/BinLe1988/mood-tracker/pkg/metrics"
	"github.com/BinLe1988/mood-tracker/pkg/mood"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxRecentHours  = 720
	// 允许客户端时钟略快于服务器
	futureTolerance = time.Minute
)

// MoodHandler 心情记录、趋势和统计
type MoodHandler struct {
	moods      MoodRepository
	agg        *mood.Aggregator
	classifier EmotionClassifier
	lookback   int
	now        func() time.Time
}

// NewMoodHandler 创建心情处理器，lookbackHours为recent接口的默认回溯小时数
func NewMoodHandler(moods MoodRepository, agg *mood.Aggregator, classifier EmotionClassifier, lookbackHours int) *MoodHandler {
	if agg == nil {
		agg = mood.NewAggregator(nil)
	}
	if lookbackHours <= 0 {
		lookbackHours = 24 * mood.TrendWindowDays
	}
	return &MoodHandler{
		moods:      moods,
		agg:        agg,
		classifier: classifier,
		lookback:   lookbackHours,
		now:        time.Now,
	}
}

// CreateMood 记录心情
func (h *MoodHandler) CreateMood(c *gin.Context) {
	userID := currentUserID(c)

	var req models.MoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, _ := mood.ParseMood(req.Mood)
	now := h.now()
	loggedAt := now
	if req.LoggedAt != nil {
		if req.LoggedAt.After(now.Add(futureTolerance)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "loggedAt cannot be in the future"})
			return
		}
		loggedAt = *req.LoggedAt
	}

	var notes *string
	if req.Notes != nil {
		if trimmed := strings.TrimSpace(*req.Notes); trimmed != "" {
			notes = &trimmed
		}
	}

	entry := models.MoodEntry{
		UserID:   userID,
		Mood:     m.String(),
		Notes:    notes,
		LoggedAt: loggedAt,
	}
	if err := h.moods.Create(c.Request.Context(), &entry); err != nil {
		internalError(c, err, "Failed to save mood")
		return
	}
	metrics.RecordMoodLogged(entry.Mood)

	c.JSON(http.StatusCreated, gin.H{
		"entry": entry.ToResponse(),
	})
}

// ListMoods 分页获取心情历史，按时间倒序
func (h *MoodHandler) ListMoods(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
		return
	}

	records, total, err := h.moods.List(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		internalError(c, err, "Failed to load moods")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": models.ToMoodResponses(records),
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// RecentMoods 获取最近若干小时的心情
func (h *MoodHandler) RecentMoods(c *gin.Context) {
	hours := h.lookback
	if raw := c.Query("hours"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxRecentHours {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be between 1 and 720"})
			return
		}
		hours = v
	}

	since := h.now().Add(-time.Duration(hours) * time.Hour)
	records, err := h.moods.ListSince(c.Request.Context(), currentUserID(c), since)
	if err != nil {
		internalError(c, err, "Failed to load moods")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": models.ToMoodResponses(records),
		"hours":   hours,
	})
}

// LatestMood 获取最近一次心情
func (h *MoodHandler) LatestMood(c *gin.Context) {
	entry, err := h.moods.Latest(c.Request.Context(), currentUserID(c))
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No mood logged yet"})
			return
		}
		internalError(c, err, "Failed to load mood")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry": entry.ToResponse(),
	})
}

// DeleteMood 删除心情记录
func (h *MoodHandler) DeleteMood(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mood id"})
		return
	}

	if err := h.moods.Delete(c.Request.Context(), currentUserID(c), uint(id)); err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Mood entry not found"})
			return
		}
		internalError(c, err, "Failed to delete mood")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Mood entry deleted",
	})
}

// Trend 最近7天的每日平均分，缺失日期也会返回
func (h *MoodHandler) Trend(c *gin.Context) {
	now := h.now()
	records, err := h.windowRecords(c, now)
	if err != nil {
		internalError(c, err, "Failed to load moods")
		return
	}

	c.JSON(http.StatusOK, models.TrendResponse{
		Timezone: h.agg.Location().String(),
		Window:   h.agg.Trend(models.ToEntries(records), now),
	})
}

// Stats 最近7天的心情分布
func (h *MoodHandler) Stats(c *gin.Context) {
	now := h.now()
	records, err := h.windowRecords(c, now)
	if err != nil {
		internalError(c, err, "Failed to load moods")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":    h.agg.WindowStart(now, mood.TrendWindowDays),
		"to":      now,
		"summary": mood.Summarize(models.ToEntries(records)),
	})
}

// windowRecords 取7天窗口起始日零点之后的记录
func (h *MoodHandler) windowRecords(c *gin.Context, now time.Time) ([]models.MoodEntry, error) {
	since := h.agg.WindowStart(now, mood.TrendWindowDays)
	return h.moods.ListSince(c.Request.Context(), currentUserID(c), since)
}

// AnalyzeText 分析文本情绪并给出建议心情
func (h *MoodHandler) AnalyzeText(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), req.Text)
	if err != nil {
		externalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis": result,
		"profile":  mood.SelectProfile(result.SuggestedMood.String()),
	})
}
