// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package feed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/swipelab/swipelab/internal/models"
)

// newCards builds n unlocked cards named v0..v(n-1) at positions 0..n-1.
func newCards(n int) []models.Video {
	cards := make([]models.Video, n)
	for i := range cards {
		cards[i] = models.Video{
			ID:       uuid.New(),
			Filename: fmt.Sprintf("v%d.mp4", i),
			Position: i,
		}
	}
	return cards
}

// orderKey renders a composed feed as a comparable string of filenames.
func orderKey(videos []models.Video) string {
	names := make([]string, len(videos))
	for i, v := range videos {
		names[i] = v.Filename
	}
	return strings.Join(names, ",")
}

func TestDeriveSeedGoldenValues(t *testing.T) {
	t.Parallel()

	// Pinned values of the seed derivation. A failure here means the
	// compatibility contract broke and every deployed participant
	// ordering silently changed.
	tests := []struct {
		projectSeed   int64
		participantID string
		want          uint64
	}{
		{12345, "participant1", 0xc3f8d25a241c3a30},
		{12345, "participant2", 0xf269beaf646c1b7a},
		{99999, "participant1", 0x957a1866becf8bcb},
		{42, "alice", 0xb645492a65859152},
		{42, "bob", 0xb9b37c10384e2713},
	}
	for _, tt := range tests {
		got := uint64(DeriveSeed(tt.projectSeed, tt.participantID))
		if got != tt.want {
			t.Errorf("DeriveSeed(%d, %q) = %#x, want %#x",
				tt.projectSeed, tt.participantID, got, tt.want)
		}
	}
}

func TestComposeGoldenOrderings(t *testing.T) {
	t.Parallel()

	// Pinned end-to-end orderings, the shuffle-side counterpart of the
	// seed values above. A failure here means the generator or the
	// shuffle itself changed and deployed participants would see new
	// orders under unchanged seeds.
	t.Run("locked endpoints", func(t *testing.T) {
		t.Parallel()

		cards := newCards(5)
		cards[0].IsLocked = true
		cards[4].IsLocked = true

		got := Compose(cards, 12345, "participant1", false)
		want := "v0.mp4,v1.mp4,v3.mp4,v2.mp4,v4.mp4"
		if orderKey(got) != want {
			t.Errorf("expected pinned order %s, got %s", want, orderKey(got))
		}
	})

	t.Run("all unlocked", func(t *testing.T) {
		t.Parallel()

		got := Compose(newCards(6), 12345, "participant2", false)
		want := "v4.mp4,v2.mp4,v3.mp4,v1.mp4,v5.mp4,v0.mp4"
		if orderKey(got) != want {
			t.Errorf("expected pinned order %s, got %s", want, orderKey(got))
		}
	})
}

func TestComposeDeterministic(t *testing.T) {
	t.Parallel()

	cards := newCards(8)
	first := Compose(cards, 12345, "participant1", false)
	for i := 0; i < 10; i++ {
		again := Compose(cards, 12345, "participant1", false)
		if orderKey(again) != orderKey(first) {
			t.Fatalf("composition not stable: %s vs %s", orderKey(again), orderKey(first))
		}
	}
}

func TestComposePreviewIsIdentity(t *testing.T) {
	t.Parallel()

	cards := newCards(5)
	for _, pid := range []string{"", "preview"} {
		got := Compose(cards, 12345, pid, false)
		if orderKey(got) != orderKey(cards) {
			t.Errorf("participantID %q must keep ledger order, got %s", pid, orderKey(got))
		}
	}
}

func TestComposeLockAllIsIdentity(t *testing.T) {
	t.Parallel()

	cards := newCards(5)
	got := Compose(cards, 12345, "participant1", true)
	if orderKey(got) != orderKey(cards) {
		t.Errorf("lockAll must keep ledger order, got %s", orderKey(got))
	}
}

func TestComposeAllLockedIsIdentity(t *testing.T) {
	t.Parallel()

	cards := newCards(4)
	for i := range cards {
		cards[i].IsLocked = true
	}
	got := Compose(cards, 12345, "participant1", false)
	if orderKey(got) != orderKey(cards) {
		t.Errorf("all-locked feed must keep ledger order, got %s", orderKey(got))
	}
}

func TestComposeEmpty(t *testing.T) {
	t.Parallel()

	got := Compose(nil, 12345, "participant1", false)
	if len(got) != 0 {
		t.Errorf("expected empty feed, got %d cards", len(got))
	}
}

func TestComposeLockedKeepSlots(t *testing.T) {
	t.Parallel()

	cards := newCards(5)
	cards[0].IsLocked = true
	cards[4].IsLocked = true

	got := Compose(cards, 12345, "participant1", false)
	if len(got) != 5 {
		t.Fatalf("expected 5 cards, got %d", len(got))
	}
	if got[0].Filename != "v0.mp4" {
		t.Errorf("slot 0: expected locked v0.mp4, got %s", got[0].Filename)
	}
	if got[4].Filename != "v4.mp4" {
		t.Errorf("slot 4: expected locked v4.mp4, got %s", got[4].Filename)
	}
	for _, slot := range []int{1, 2, 3} {
		if got[slot].IsLocked {
			t.Errorf("slot %d: expected unlocked card, got locked %s", slot, got[slot].Filename)
		}
	}
}

func TestComposePreservesCardSet(t *testing.T) {
	t.Parallel()

	cards := newCards(9)
	cards[3].IsLocked = true

	got := Compose(cards, 777, "participant9", false)
	if len(got) != len(cards) {
		t.Fatalf("expected %d cards, got %d", len(cards), len(got))
	}
	seen := make(map[uuid.UUID]int)
	for _, v := range got {
		seen[v.ID]++
	}
	for _, v := range cards {
		if seen[v.ID] != 1 {
			t.Errorf("card %s appeared %d times", v.Filename, seen[v.ID])
		}
	}
}

func TestComposeDistinctParticipantsDistinctOrders(t *testing.T) {
	t.Parallel()

	cards := newCards(6)
	orders := make(map[string]bool)
	for i := 0; i < 100; i++ {
		got := Compose(cards, 12345, fmt.Sprintf("participant%d", i), false)
		orders[orderKey(got)] = true
	}
	// 6! = 720 permutations; 100 draws should rarely collide. Anything
	// under 90 distinct orders means the derivation is correlating ids.
	if len(orders) < 90 {
		t.Errorf("expected at least 90 distinct orders across 100 participants, got %d", len(orders))
	}
}

func TestComposeSeedChangeReassignsOrders(t *testing.T) {
	t.Parallel()

	cards := newCards(8)
	distinct := 0
	for i := 0; i < 20; i++ {
		pid := fmt.Sprintf("participant%d", i)
		a := Compose(cards, 12345, pid, false)
		b := Compose(cards, 99999, pid, false)
		if orderKey(a) != orderKey(b) {
			distinct++
		}
	}
	if distinct < 18 {
		t.Errorf("changing project seed should reassign nearly all orderings, only %d/20 changed", distinct)
	}
}

func TestComposeLockedOutOfBoundsDropped(t *testing.T) {
	t.Parallel()

	// Three cards, but one locked at position 10: a leftover from a
	// larger feed that has since been trimmed. The card is dropped and
	// the rest of the feed still composes.
	cards := newCards(3)
	cards[2].IsLocked = true
	cards[2].Position = 10

	got := Compose(cards, 12345, "participant1", false)
	if len(got) != 2 {
		t.Fatalf("expected 2 cards after dropping out-of-bounds lock, got %d", len(got))
	}
	for _, v := range got {
		if v.ID == cards[2].ID {
			t.Error("out-of-bounds locked card must not be delivered")
		}
	}
}

func TestComposeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	cards := newCards(6)
	before := orderKey(cards)
	Compose(cards, 12345, "participant1", false)
	if orderKey(cards) != before {
		t.Error("compose mutated its input slice")
	}
}

func TestComposeSingleUnlockedCard(t *testing.T) {
	t.Parallel()

	cards := newCards(1)
	got := Compose(cards, 12345, "participant1", false)
	if len(got) != 1 || got[0].ID != cards[0].ID {
		t.Errorf("single card feed must deliver that card, got %v", orderKey(got))
	}
}
