// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Auth

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,max=100"`
	Lastname string `json:"lastname" validate:"required,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Projects

type projectRequest struct {
	Name              string `json:"name" validate:"required,max=200"`
	QueryKey          string `json:"queryKey" validate:"omitempty,max=100"`
	TimeLimitSeconds  int    `json:"timeLimitSeconds" validate:"omitempty,min=0,max=86400"`
	RedirectURL       string `json:"redirectUrl" validate:"omitempty,url,max=2000"`
	EndScreenMessage  string `json:"endScreenMessage" validate:"omitempty,max=2000"`
	LockAllPositions  bool   `json:"lockAllPositions"`
	RandomizationSeed int64  `json:"randomizationSeed"`
}

// Experiments

type experimentRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	PersistTimer     bool   `json:"persistTimer"`
	ShowUnmutePrompt bool   `json:"showUnmutePrompt"`
	IsActive         bool   `json:"isActive"`
}

// Social accounts

type accountRequest struct {
	Username    string `json:"username" validate:"required,max=100"`
	DisplayName string `json:"displayName" validate:"required,max=200"`
	AvatarURL   string `json:"avatarUrl" validate:"omitempty,url,max=2000"`
}

// Videos

type videoRequest struct {
	SocialAccountID uuid.UUID `json:"socialAccountId" validate:"required"`
	Filename        string    `json:"filename" validate:"required,max=500"`
	Caption         string    `json:"caption" validate:"omitempty,max=2000"`
	Likes           int       `json:"likes" validate:"min=0"`
	Comments        int       `json:"comments" validate:"min=0"`
	Shares          int       `json:"shares" validate:"min=0"`
	Song            string    `json:"song" validate:"omitempty,max=500"`
	Description     *string   `json:"description" validate:"omitempty,max=5000"`
	IsLocked        bool      `json:"isLocked"`
}

type commentRequest struct {
	AuthorName   string `json:"authorName" validate:"required,max=100"`
	AuthorAvatar string `json:"authorAvatar" validate:"omitempty,url,max=2000"`
	Body         string `json:"body" validate:"required,max=2000"`
	Likes        int    `json:"likes" validate:"min=0"`
	Source       string `json:"source" validate:"omitempty,max=50"`
}

type reorderRequest struct {
	VideoIDs []uuid.UUID `json:"videoIds"`
}

type bulkDeleteRequest struct {
	VideoIDs []uuid.UUID `json:"videoIds" validate:"required,min=1"`
}

// Participant endpoints

type interactionRequest struct {
	PublicURL       string          `json:"publicUrl" validate:"required,len=32"`
	ParticipantID   string          `json:"participantId" validate:"required,max=200"`
	VideoID         uuid.UUID       `json:"videoId" validate:"required"`
	InteractionType string          `json:"interactionType" validate:"required,max=100"`
	InteractionData json.RawMessage `json:"interactionData"`
}

type heartbeatRequest struct {
	PublicURL       string    `json:"publicUrl" validate:"required,len=32"`
	SessionID       uuid.UUID `json:"sessionId" validate:"required"`
	ParticipantID   string    `json:"participantId" validate:"required,max=200"`
	VideoID         uuid.UUID `json:"videoId" validate:"required"`
	DurationSeconds float64   `json:"durationSeconds" validate:"min=0"`
}
