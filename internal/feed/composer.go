// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

// Package feed implements deterministic per-participant feed
// composition: every participant sees their own stable shuffle of an
// experiment's unlocked videos, while locked videos keep their absolute
// slots.
//
// Determinism contract: the delivered order is a pure function of
// (project randomization seed, participant id, current video set). No
// per-participant state is stored; a participant who returns days later
// gets the identical order as long as the researcher has not edited the
// experiment. The seed derivation below is therefore a compatibility
// contract: changing the hash, the truncation, or the shuffle source
// silently reassigns every participant's ordering in every deployment.
package feed

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"strconv"
	"time"

	"github.com/swipelab/swipelab/internal/logging"
	"github.com/swipelab/swipelab/internal/metrics"
	"github.com/swipelab/swipelab/internal/models"
)

// Composition modes, used as the metric label.
const (
	ModePreview  = "preview"
	ModeIdentity = "identity"
	ModeShuffled = "shuffled"
)

// DeriveSeed maps (projectSeed, participantID) to the PRNG seed for one
// participant's shuffle.
//
// The seed string is the decimal project seed, a colon, and the raw
// participant id. SHA-256 of that string is truncated to its first 8
// bytes read big-endian. SHA-256 disperses adjacent participant ids
// (p1, p2, ...) across the full 64-bit space, so similar ids never get
// correlated orderings.
func DeriveSeed(projectSeed int64, participantID string) int64 {
	sum := sha256.Sum256([]byte(strconv.FormatInt(projectSeed, 10) + ":" + participantID))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Compose returns the delivery order of videos for one participant.
//
// videos must be the experiment's cards in ledger order (position
// ascending). The input slice is never mutated. An empty participantID
// or the literal "preview" selects preview mode: the researcher
// dashboard sees the raw ledger order. lockAll freezes the whole feed
// regardless of per-video flags.
func Compose(videos []models.Video, projectSeed int64, participantID string, lockAll bool) []models.Video {
	start := time.Now()
	defer func() {
		metrics.FeedCompositionDuration.Observe(time.Since(start).Seconds())
	}()

	if participantID == "" || participantID == "preview" {
		metrics.FeedCompositionsTotal.WithLabelValues(ModePreview).Inc()
		return identity(videos)
	}
	if len(videos) == 0 || lockAll {
		metrics.FeedCompositionsTotal.WithLabelValues(ModeIdentity).Inc()
		return identity(videos)
	}

	// Partition preserving ledger order within each class.
	var locked, unlocked []models.Video
	for _, v := range videos {
		if v.IsLocked {
			locked = append(locked, v)
		} else {
			unlocked = append(unlocked, v)
		}
	}
	if len(unlocked) == 0 {
		metrics.FeedCompositionsTotal.WithLabelValues(ModeIdentity).Inc()
		return identity(videos)
	}

	// Fresh generator per call keeps composition stateless and safe for
	// concurrent requests.
	rng := rand.New(rand.NewSource(DeriveSeed(projectSeed, participantID)))
	shuffled := make([]models.Video, len(unlocked))
	copy(shuffled, unlocked)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	// Locked videos claim their absolute slots first. A locked position
	// at or past the feed length means the ledger was edited out from
	// under the lock; the card is dropped rather than failing the feed.
	slots := make([]*models.Video, len(videos))
	for i := range locked {
		v := &locked[i]
		if v.Position < 0 || v.Position >= len(slots) || slots[v.Position] != nil {
			metrics.FeedIntegrityWarnings.WithLabelValues("locked_out_of_bounds").Inc()
			logging.Warn().
				Str("video_id", v.ID.String()).
				Str("experiment_id", v.ExperimentID.String()).
				Str("participant_id", participantID).
				Int("position", v.Position).
				Int("feed_length", len(slots)).
				Msg("Locked video position outside feed bounds, dropping card")
			continue
		}
		slots[v.Position] = v
	}

	// Remaining slots are filled in ascending order from the shuffle.
	next := 0
	for i := range slots {
		if slots[i] != nil {
			continue
		}
		if next >= len(shuffled) {
			metrics.FeedIntegrityWarnings.WithLabelValues("unlocked_exhausted").Inc()
			logging.Warn().
				Int("slot", i).
				Int("feed_length", len(slots)).
				Msg("Ran out of unlocked videos while filling feed slots")
			break
		}
		slots[i] = &shuffled[next]
		next++
	}

	out := make([]models.Video, 0, len(slots))
	for _, v := range slots {
		if v != nil {
			out = append(out, *v)
		}
	}

	metrics.FeedCompositionsTotal.WithLabelValues(ModeShuffled).Inc()
	return out
}

// identity copies videos so callers can never alias the ledger read.
func identity(videos []models.Video) []models.Video {
	out := make([]models.Video, len(videos))
	copy(out, videos)
	return out
}
