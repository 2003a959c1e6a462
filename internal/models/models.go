// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

// Package models defines the data structures shared by the storage layer,
// the feed composer, and the HTTP API. JSON tags use camelCase to match
// the researcher dashboard and participant player clients.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Researcher is an authenticated study author. The password hash never
// leaves the database layer; the struct carries it only for login checks.
type Researcher struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Lastname     string    `json:"lastname"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Project groups experiments and carries the per-project settings that
// feed delivery depends on, most importantly RandomizationSeed: the
// project-level seed half of the deterministic shuffle contract. Changing
// it reassigns every participant's ordering in every experiment of the
// project, so the dashboard warns before edits.
type Project struct {
	ID                uuid.UUID `json:"id"`
	ResearcherID      uuid.UUID `json:"researcherId"`
	Name              string    `json:"name"`
	QueryKey          string    `json:"queryKey"`
	TimeLimitSeconds  int       `json:"timeLimitSeconds"`
	RedirectURL       string    `json:"redirectUrl"`
	EndScreenMessage  string    `json:"endScreenMessage"`
	LockAllPositions  bool      `json:"lockAllPositions"`
	RandomizationSeed int64     `json:"randomizationSeed"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Experiment is one study run: a set of video cards published under an
// unguessable PublicURL. IsActive is the kill switch - participants get a
// 403 when it is false.
type Experiment struct {
	ID               uuid.UUID `json:"id"`
	ProjectID        uuid.UUID `json:"projectId"`
	Name             string    `json:"name"`
	PublicURL        string    `json:"publicUrl"`
	PersistTimer     bool      `json:"persistTimer"`
	ShowUnmutePrompt bool      `json:"showUnmutePrompt"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SocialAccount is a fictional creator persona attached to videos so the
// player can render an author handle and avatar.
type SocialAccount struct {
	ID           uuid.UUID `json:"id"`
	ResearcherID uuid.UUID `json:"researcherId"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	AvatarURL    string    `json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Video is one card in an experiment's feed.
//
// Position is the zero-based slot in the experiment's default (unshuffled)
// order. It is unique per experiment and dense 0..N-1 after every reorder;
// gaps may appear between structural edits (deletes) and are tolerated.
//
// When IsLocked is true, Position is an absolute slot index in the
// delivered feed, immune to per-participant randomization.
type Video struct {
	ID              uuid.UUID `json:"id"`
	ExperimentID    uuid.UUID `json:"experimentId"`
	SocialAccountID uuid.UUID `json:"socialAccountId"`
	Filename        string    `json:"filename"`
	Caption         string    `json:"caption"`
	Likes           int       `json:"likes"`
	Comments        int       `json:"comments"`
	Shares          int       `json:"shares"`
	Song            string    `json:"song"`
	Description     *string   `json:"description,omitempty"`
	Position        int       `json:"position"`
	IsLocked        bool      `json:"isLocked"`
	CreatedAt       time.Time `json:"createdAt"`

	// SocialAccount is populated on feed and listing reads (joined),
	// nil on bare CRUD reads.
	SocialAccount *SocialAccount `json:"socialAccount,omitempty"`
}

// PreseededComment is a researcher-authored comment staged on a video
// card, giving the stimulus a believable social context. Position is the
// per-video display order; Source records how the comment was authored
// ("manual" from the dashboard). Distinct from Video.Comments, which is
// the fake count shown on the card.
type PreseededComment struct {
	ID           uuid.UUID `json:"id"`
	VideoID      uuid.UUID `json:"videoId"`
	AuthorName   string    `json:"authorName"`
	AuthorAvatar string    `json:"authorAvatar"`
	Body         string    `json:"body"`
	Likes        int       `json:"likes"`
	Source       string    `json:"source"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Participant is an anonymous study subject, auto-enrolled on first
// interaction. ParticipantID is the opaque string from the recruiting
// platform (e.g. a Prolific ID), not a UUID.
type Participant struct {
	ID            uuid.UUID `json:"id"`
	ExperimentID  uuid.UUID `json:"experimentId"`
	ParticipantID string    `json:"participantId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Interaction is one logged participant event (like, pause, swipe, ...).
// InteractionData holds the client's free-form event payload as JSON.
type Interaction struct {
	ID              uuid.UUID `json:"id"`
	ParticipantUUID uuid.UUID `json:"participantUuid"`
	VideoID         uuid.UUID `json:"videoId"`
	InteractionType string    `json:"interactionType"`
	InteractionData []byte    `json:"interactionData,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// ViewSession tracks how long a participant watched one video, updated by
// heartbeats from the player. SessionID is generated by the frontend.
type ViewSession struct {
	ID              uuid.UUID `json:"id"`
	SessionID       uuid.UUID `json:"sessionId"`
	ParticipantID   string    `json:"participantId"`
	VideoID         uuid.UUID `json:"videoId"`
	StartTime       time.Time `json:"startTime"`
	LastHeartbeat   time.Time `json:"lastHeartbeat"`
	DurationSeconds float64   `json:"durationSeconds"`
}

// ParticipantSessionSummary is one row of an experiment's results view.
type ParticipantSessionSummary struct {
	ParticipantID   string     `json:"participantId"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	TotalDurationMs int64      `json:"totalDurationMs"`
	VideosWatched   int        `json:"videosWatched"`
}

// ProjectSettings is the slice of project configuration the participant
// player needs, embedded in every feed response.
type ProjectSettings struct {
	QueryKey         string `json:"queryKey"`
	TimeLimitSeconds int    `json:"timeLimitSeconds"`
	RedirectURL      string `json:"redirectUrl"`
	EndScreenMessage string `json:"endScreenMessage"`
}

// FeedResponse is the participant-facing payload for one feed request.
// Videos are in final delivery order, already composed for this participant.
type FeedResponse struct {
	ExperimentID     uuid.UUID       `json:"experimentId"`
	ExperimentName   string          `json:"experimentName"`
	PersistTimer     bool            `json:"persistTimer"`
	ShowUnmutePrompt bool            `json:"showUnmutePrompt"`
	ProjectSettings  ProjectSettings `json:"projectSettings"`
	Videos           []Video         `json:"videos"`
}
