package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BinLe1988/mood-tracker/database"
	"github.com/BinLe1988/mood-tracker/models"
	"github.com/BinLe1988/mood-tracker/pkg/external"
	"github.com/BinLe1988/mood-tracker/pkg/mood"
)

var fixedNow = time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

type fakeMusic struct {
	query string
	limit int
	err   error
}

func (f *fakeMusic) Playlists(_ context.Context, query string, limit int) ([]external.Playlist, error) {
	f.query, f.limit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	return []external.Playlist{{ID: "p1", Name: "Mix"}}, nil
}

type fakeMovies struct {
	genreID int
	err     error
}

func (f *fakeMovies) MoviesByGenre(_ context.Context, genreID int, _ int) ([]external.Movie, error) {
	f.genreID = genreID
	if f.err != nil {
		return nil, f.err
	}
	return []external.Movie{{ID: 1, Title: "Film"}}, nil
}

type fakeWeather struct {
	query external.WeatherQuery
	err   error
}

func (f *fakeWeather) Current(_ context.Context, q external.WeatherQuery) (*external.Weather, error) {
	f.query = q
	if f.err != nil {
		return nil, f.err
	}
	return &external.Weather{Location: q.City, Condition: "Clear"}, nil
}

type fakeClassifier struct {
	result *external.EmotionResult
	err    error
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (*external.EmotionResult, error) {
	return f.result, f.err
}

type testEnv struct {
	router     *gin.Engine
	moods      *database.MoodStore
	users      *database.UserStore
	user       *models.User
	music      *fakeMusic
	movies     *fakeMovies
	weather    *fakeWeather
	classifier *fakeClassifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, models.RegisterValidators())

	db, err := database.OpenInMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	env := &testEnv{
		moods:      database.NewMoodStore(db),
		users:      database.NewUserStore(db),
		music:      &fakeMusic{},
		movies:     &fakeMovies{},
		weather:    &fakeWeather{},
		classifier: &fakeClassifier{},
	}

	env.user = &models.User{Username: "alice", Email: "alice@example.com", Password: "x", City: "Paris"}
	require.NoError(t, env.users.Create(context.Background(), env.user))

	moodHandler := NewMoodHandler(env.moods, mood.NewAggregator(nil), env.classifier, 0)
	moodHandler.now = func() time.Time { return fixedNow }
	recHandler := NewRecommendationHandler(env.moods, env.music, env.movies)
	weatherHandler := NewWeatherHandler(env.weather)
	authHandler := NewAuthHandler(env.users)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", env.user.ID)
		c.Set("user", env.user)
		c.Next()
	})
	r.GET("/user", authHandler.GetCurrentUser)
	r.PUT("/user/profile", authHandler.UpdateUserProfile)
	r.POST("/moods", moodHandler.CreateMood)
	r.GET("/moods", moodHandler.ListMoods)
	r.GET("/moods/recent", moodHandler.RecentMoods)
	r.GET("/moods/latest", moodHandler.LatestMood)
	r.GET("/moods/trend", moodHandler.Trend)
	r.GET("/moods/stats", moodHandler.Stats)
	r.POST("/moods/analyze", moodHandler.AnalyzeText)
	r.DELETE("/moods/:id", moodHandler.DeleteMood)
	r.GET("/recommendations", recHandler.GetRecommendations)
	r.GET("/recommendations/music", recHandler.GetMusic)
	r.GET("/recommendations/movies", recHandler.GetMovies)
	r.GET("/weather", weatherHandler.GetWeather)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed(t *testing.T, label string, at time.Time) *models.MoodEntry {
	t.Helper()
	entry := &models.MoodEntry{UserID: e.user.ID, Mood: label, LoggedAt: at}
	require.NoError(t, e.moods.Create(context.Background(), entry))
	return entry
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestCreateMood(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/moods", gin.H{"mood": " Happy ", "notes": "  sunny walk "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Entry models.MoodResponse `json:"entry"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "happy", resp.Entry.Mood)
	assert.Equal(t, 5, resp.Entry.Score)
	require.NotNil(t, resp.Entry.Notes)
	assert.Equal(t, "sunny walk", *resp.Entry.Notes)
	assert.True(t, resp.Entry.LoggedAt.Equal(fixedNow))
}

func TestCreateMoodBlankNotesStoredAsNull(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/moods", gin.H{"mood": "calm", "notes": "   "})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Entry models.MoodResponse `json:"entry"`
	}
	decode(t, w, &resp)
	assert.Nil(t, resp.Entry.Notes)
}

func TestCreateMoodRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body interface{}
	}{
		{"unknown mood", gin.H{"mood": "ecstatic"}},
		{"missing mood", gin.H{"notes": "hi"}},
		{"future timestamp", gin.H{"mood": "sad", "loggedAt": fixedNow.Add(time.Hour)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/moods", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateMoodWithBackdatedTimestamp(t *testing.T) {
	env := newTestEnv(t)

	at := fixedNow.Add(-26 * time.Hour)
	w := env.do(t, http.MethodPost, "/moods", gin.H{"mood": "sad", "loggedAt": at})
	require.Equal(t, http.StatusCreated, w.Code)

	latest, err := env.moods.Latest(context.Background(), env.user.ID)
	require.NoError(t, err)
	assert.True(t, latest.LoggedAt.Equal(at))
}

func TestListMoodsPaginates(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.seed(t, "calm", fixedNow.Add(-time.Duration(i)*time.Hour))
	}

	w := env.do(t, http.MethodGet, "/moods?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Entries []models.MoodResponse `json:"entries"`
		Total   int64                 `json:"total"`
		Limit   int                   `json:"limit"`
	}
	decode(t, w, &resp)
	assert.EqualValues(t, 5, resp.Total)
	assert.Equal(t, 2, resp.Limit)
	require.Len(t, resp.Entries, 2)
	assert.True(t, resp.Entries[0].LoggedAt.Equal(fixedNow.Add(-time.Hour)))

	w = env.do(t, http.MethodGet, "/moods?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecentMoods(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "happy", fixedNow.Add(-2*time.Hour))
	env.seed(t, "sad", fixedNow.Add(-30*time.Hour))
	env.seed(t, "angry", fixedNow.Add(-200*time.Hour))

	w := env.do(t, http.MethodGet, "/moods/recent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Entries []models.MoodResponse `json:"entries"`
		Hours   int                   `json:"hours"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 168, resp.Hours)
	assert.Len(t, resp.Entries, 2)

	w = env.do(t, http.MethodGet, "/moods/recent?hours=24", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "happy", resp.Entries[0].Mood)

	w = env.do(t, http.MethodGet, "/moods/recent?hours=721", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLatestMood(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/moods/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.seed(t, "sad", fixedNow.Add(-3*time.Hour))
	env.seed(t, "calm", fixedNow.Add(-1*time.Hour))

	w = env.do(t, http.MethodGet, "/moods/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Entry models.MoodResponse `json:"entry"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "calm", resp.Entry.Mood)
}

func TestDeleteMood(t *testing.T) {
	env := newTestEnv(t)
	entry := env.seed(t, "angry", fixedNow)

	other := &models.MoodEntry{UserID: env.user.ID + 100, Mood: "happy", LoggedAt: fixedNow}
	require.NoError(t, env.moods.Create(context.Background(), other))

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/moods/%d", other.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/moods/zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/moods/%d", entry.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/moods/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrendFillsMissingDays(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "happy", time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	env.seed(t, "sad", time.Date(2024, 6, 10, 13, 0, 0, 0, time.UTC))
	env.seed(t, "calm", time.Date(2024, 6, 7, 20, 0, 0, 0, time.UTC))
	// 窗口之外
	env.seed(t, "angry", time.Date(2024, 6, 3, 23, 0, 0, 0, time.UTC))

	w := env.do(t, http.MethodGet, "/moods/trend", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TrendResponse
	decode(t, w, &resp)
	assert.Equal(t, "UTC", resp.Timezone)
	require.Len(t, resp.Window, 7)

	assert.Equal(t, "2024-06-04", resp.Window[0].DateKey)
	assert.False(t, resp.Window[0].HasData())
	assert.Equal(t, 0.0, resp.Window[0].Average)

	assert.Equal(t, "2024-06-07", resp.Window[3].DateKey)
	assert.Equal(t, []int{4}, resp.Window[3].Scores)
	assert.Equal(t, 4.0, resp.Window[3].Average)

	last := resp.Window[6]
	assert.Equal(t, "2024-06-10", last.DateKey)
	assert.Equal(t, "Mon", last.Weekday)
	assert.ElementsMatch(t, []int{5, 2}, last.Scores)
	assert.Equal(t, 3.5, last.Average)
}

func TestTrendEmpty(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/moods/trend", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TrendResponse
	decode(t, w, &resp)
	require.Len(t, resp.Window, 7)
	for _, b := range resp.Window {
		assert.Empty(t, b.Scores)
		assert.Equal(t, 0.0, b.Average)
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "happy", fixedNow.Add(-1*time.Hour))
	env.seed(t, "happy", fixedNow.Add(-25*time.Hour))
	env.seed(t, "sad", fixedNow.Add(-49*time.Hour))

	w := env.do(t, http.MethodGet, "/moods/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Summary mood.Summary `json:"summary"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, 2, resp.Summary.Counts[mood.Happy])
	assert.Equal(t, 0, resp.Summary.Counts[mood.Angry])
	assert.Equal(t, mood.Happy, resp.Summary.Dominant)
	assert.InDelta(t, 4.0, resp.Summary.Average, 1e-9)
}

func TestAnalyzeText(t *testing.T) {
	env := newTestEnv(t)
	env.classifier.result = &external.EmotionResult{SuggestedMood: mood.Sad, TopEmotion: "sadness"}

	w := env.do(t, http.MethodPost, "/moods/analyze", gin.H{"text": "rough day"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Analysis external.EmotionResult `json:"analysis"`
		Profile  mood.Profile           `json:"profile"`
	}
	decode(t, w, &resp)
	assert.Equal(t, mood.Sad, resp.Analysis.SuggestedMood)
	assert.Equal(t, mood.Sad, resp.Profile.Mood)

	env.classifier.err = external.ErrNotConfigured
	w = env.do(t, http.MethodPost, "/moods/analyze", gin.H{"text": "rough day"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(t, http.MethodPost, "/moods/analyze", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendationsProfileSource(t *testing.T) {
	env := newTestEnv(t)

	var resp struct {
		Profile mood.Profile `json:"profile"`
		Source  string       `json:"source"`
	}

	w := env.do(t, http.MethodGet, "/recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, mood.Neutral, resp.Profile.Mood)
	assert.Equal(t, "default", resp.Source)

	env.seed(t, "angry", fixedNow)
	w = env.do(t, http.MethodGet, "/recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, mood.Angry, resp.Profile.Mood)
	assert.Equal(t, "latest", resp.Source)

	w = env.do(t, http.MethodGet, "/recommendations?mood=HAPPY", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, mood.Happy, resp.Profile.Mood)
	assert.Equal(t, "query", resp.Source)
	assert.Equal(t, "Comedy", resp.Profile.MovieGenre)

	w = env.do(t, http.MethodGet, "/recommendations?mood=grumpy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, mood.Neutral, resp.Profile.Mood)
	assert.Equal(t, "default", resp.Source)
	assert.NotEmpty(t, resp.Profile.Music)
}

func TestUnknownMoodFallsBackForProviders(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/recommendations/music?mood=grumpy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mood.SelectProfile("neutral").MusicQuery, env.music.query)

	w = env.do(t, http.MethodGet, "/recommendations/movies?mood=grumpy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mood.SelectProfile("neutral").MovieGenreID, env.movies.genreID)
}

func TestMusicAndMovieRecommendations(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/recommendations/music?mood=calm&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lofi chill", env.music.query)
	assert.Equal(t, 5, env.music.limit)

	w = env.do(t, http.MethodGet, "/recommendations/movies?mood=sad", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 18, env.movies.genreID)

	w = env.do(t, http.MethodGet, "/recommendations/music?limit=100", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExternalErrorMapping(t *testing.T) {
	env := newTestEnv(t)

	env.music.err = external.ErrNotConfigured
	w := env.do(t, http.MethodGet, "/recommendations/music", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	env.movies.err = fmt.Errorf("%w: tmdb: status 500", external.ErrUpstream)
	w = env.do(t, http.MethodGet, "/recommendations/movies", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	env.weather.err = context.DeadlineExceeded
	w = env.do(t, http.MethodGet, "/weather?city=Oslo", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestWeather(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/weather", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Paris", env.weather.query.City)

	w = env.do(t, http.MethodGet, "/weather?lat=51.5&lon=-0.12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.weather.query.Lat)
	assert.InDelta(t, 51.5, *env.weather.query.Lat, 1e-9)
	assert.Empty(t, env.weather.query.City)

	w = env.do(t, http.MethodGet, "/weather?lat=200&lon=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/weather?lat=NaN&lon=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, "/weather?lat=10&lon=nan", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.weather.err = external.ErrInvalidLocation
	w = env.do(t, http.MethodGet, "/weather", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateUserProfile(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.users.Create(context.Background(), &models.User{Username: "bob", Email: "bob@example.com", Password: "x"}))

	w := env.do(t, http.MethodPut, "/user/profile", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPut, "/user/profile", gin.H{"username": "alice2", "city": " Berlin "})
	require.Equal(t, http.StatusOK, w.Code)

	u, err := env.users.FindByID(context.Background(), env.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", u.Username)
	assert.Equal(t, "Berlin", u.City)
}

func TestWeatherUpstreamTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
	}))
	defer srv.Close()

	client := external.NewWeatherClient("key", "", external.Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	r := gin.New()
	r.GET("/weather", NewWeatherHandler(client).GetWeather)

	req := httptest.NewRequest(http.MethodGet, "/weather?city=Oslo", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code, w.Body.String())
}

func TestExternalErrorTimeoutKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	wrapped := fmt.Errorf("%w: openweather: %w", external.ErrUpstream, context.DeadlineExceeded)

	for _, err := range []error{context.DeadlineExceeded, wrapped} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		externalError(c, err)
		assert.Equal(t, http.StatusGatewayTimeout, w.Code, err.Error())
	}
}
