package models

import (
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestMoodEntryConversions(t *testing.T) {
	notes := "long day"
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	rec := MoodEntry{UserID: 3, Mood: "calm", Notes: &notes, LoggedAt: at}
	rec.ID = 11

	e := rec.ToEntry()
	assert.Equal(t, uint(3), e.UserID)
	assert.Equal(t, "calm", e.Mood)
	assert.Equal(t, at, e.Timestamp)
	assert.Equal(t, &notes, e.Notes)

	resp := rec.ToResponse()
	assert.Equal(t, uint(11), resp.ID)
	assert.Equal(t, 4, resp.Score)

	assert.Len(t, ToEntries([]MoodEntry{rec, rec}), 2)
	assert.Empty(t, ToMoodResponses(nil))
}

func TestUserToResponseHidesPassword(t *testing.T) {
	u := User{Username: "ann", Email: "ann@example.com", Password: "hash", City: "Oslo"}
	resp := u.ToResponse()
	assert.Equal(t, "ann", resp.Username)
	assert.Equal(t, "Oslo", resp.City)
}

func TestMoodRequestValidation(t *testing.T) {
	if err := RegisterValidators(); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	assert.NoError(t, binding.Validator.ValidateStruct(&MoodRequest{Mood: "Happy"}))
	assert.NoError(t, binding.Validator.ValidateStruct(&MoodRequest{Mood: " sad "}))
	assert.Error(t, binding.Validator.ValidateStruct(&MoodRequest{Mood: "ecstatic"}))
	assert.Error(t, binding.Validator.ValidateStruct(&MoodRequest{}))

	long := strings.Repeat("x", 2001)
	assert.Error(t, binding.Validator.ValidateStruct(&MoodRequest{Mood: "calm", Notes: &long}))
}
