package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/BinLe1988/mood-tracker/pkg/mood"
)

const (
	defaultHuggingFaceAPI   = "https://api-inference.huggingface.co/models"
	defaultHuggingFaceModel = "j-hartmann/emotion-english-distilroberta-base"
	maxAnalyzeLength        = 2000
)

// ErrEmptyText 待分析文本为空
var ErrEmptyText = errors.New("text is required")

// EmotionScore 模型输出的单个情绪得分
type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EmotionResult 情绪分析结果
type EmotionResult struct {
	SuggestedMood mood.Mood      `json:"suggestedMood"`
	TopEmotion    string         `json:"topEmotion"`
	Scores        []EmotionScore `json:"scores"`
}

// SentimentClient Hugging Face推理接口
type SentimentClient struct {
	base
	apiKey  string
	model   string
	baseURL string
}

// NewSentimentClient 创建情绪分析客户端
func NewSentimentClient(apiKey, model string, opts Options) *SentimentClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultHuggingFaceAPI
	}
	if model == "" {
		model = defaultHuggingFaceModel
	}
	return &SentimentClient{
		base:    newBase("huggingface", opts),
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Configured 是否已配置密钥
func (c *SentimentClient) Configured() bool {
	return c.apiKey != ""
}

// Classify 分析文本情绪并映射到心情标签。用户文本不做缓存。
func (c *SentimentClient) Classify(ctx context.Context, text string) (*EmotionResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	text = truncateRunes(text, maxAnalyzeLength)

	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, err
	}

	body, err := c.fetch(ctx, "", 0, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	scores, err := decodeEmotionScores(body)
	if err != nil {
		return nil, fmt.Errorf("%w: huggingface: decode response: %v", ErrUpstream, err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: huggingface: no classification returned", ErrUpstream)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return &EmotionResult{
		SuggestedMood: MoodFromEmotion(scores[0].Label),
		TopEmotion:    scores[0].Label,
		Scores:        scores,
	}, nil
}

// truncateRunes 按字符截断，避免切断多字节字符
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// decodeEmotionScores 兼容 [[{...}]] 和 [{...}] 两种返回格式
func decodeEmotionScores(body []byte) ([]EmotionScore, error) {
	var nested [][]EmotionScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []EmotionScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}

var emotionToMood = map[string]mood.Mood{
	"joy":      mood.Happy,
	"happy":    mood.Happy,
	"surprise": mood.Happy,
	"love":     mood.Calm,
	"calm":     mood.Calm,
	"sadness":  mood.Sad,
	"fear":     mood.Sad,
	"anger":    mood.Angry,
	"disgust":  mood.Angry,
	"neutral":  mood.Neutral,
	"positive": mood.Happy,
	"negative": mood.Sad,
}

// MoodFromEmotion 将模型情绪标签映射为心情，未知标签返回neutral
func MoodFromEmotion(label string) mood.Mood {
	if m, ok := emotionToMood[strings.ToLower(strings.TrimSpace(label))]; ok {
		return m
	}
	return mood.Neutral
}
