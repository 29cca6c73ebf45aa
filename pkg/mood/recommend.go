package mood

// Profile 心情对应的推荐内容
type Profile struct {
	Mood         Mood   `json:"mood"`
	Music        string `json:"music"`
	MovieGenre   string `json:"movieGenre"`
	Activity     string `json:"activity"`
	MusicQuery   string `json:"musicQuery"`
	MovieGenreID int    `json:"movieGenreId"`
}

// TMDB电影类型ID
const (
	genreAction      = 28
	genreAdventure   = 12
	genreComedy      = 35
	genreDocumentary = 99
	genreDrama       = 18
)

var profiles = map[Mood]Profile{
	Happy: {
		Mood:         Happy,
		Music:        "Upbeat pop and feel-good hits",
		MovieGenre:   "Comedy",
		Activity:     "Share the good mood: call a friend or go for a walk outside",
		MusicQuery:   "happy hits",
		MovieGenreID: genreComedy,
	},
	Calm: {
		Mood:         Calm,
		Music:        "Lo-fi beats and soft instrumentals",
		MovieGenre:   "Documentary",
		Activity:     "Read a book or try a short meditation",
		MusicQuery:   "lofi chill",
		MovieGenreID: genreDocumentary,
	},
	Neutral: {
		Mood:         Neutral,
		Music:        "A mix of new releases to discover",
		MovieGenre:   "Adventure",
		Activity:     "Pick up a hobby or learn something new",
		MusicQuery:   "discover new music",
		MovieGenreID: genreAdventure,
	},
	Sad: {
		Mood:         Sad,
		Music:        "Comforting acoustic and mellow songs",
		MovieGenre:   "Drama",
		Activity:     "Write down your thoughts or reach out to someone you trust",
		MusicQuery:   "comforting acoustic",
		MovieGenreID: genreDrama,
	},
	Angry: {
		Mood:         Angry,
		Music:        "High-energy rock and workout tracks",
		MovieGenre:   "Action",
		Activity:     "Burn it off with exercise or take a few deep breaths",
		MusicQuery:   "workout rock",
		MovieGenreID: genreAction,
	},
}

// SelectProfile 返回心情对应的推荐内容，未知心情返回中性推荐
func SelectProfile(label string) Profile {
	m, ok := ParseMood(label)
	if !ok {
		m = Neutral
	}
	return profiles[m]
}
