package store

import (
	"fmt"
	"sync"
	"testing"
)

func TestLikeHistory_Basic(t *testing.T) {
	history := NewLikeHistory(100, 0.01)

	if _, known := history.Lookup("track1"); known {
		t.Error("Empty history should not know track1")
	}

	history.Record("track1", true)
	history.Record("track2", false)

	if liked, known := history.Lookup("track1"); !known || !liked {
		t.Errorf("Expected track1 liked, got liked=%v known=%v", liked, known)
	}
	if liked, known := history.Lookup("track2"); !known || liked {
		t.Errorf("Expected track2 not liked, got liked=%v known=%v", liked, known)
	}
	if history.Size() != 2 {
		t.Errorf("Expected size 2, got %d", history.Size())
	}

	history.Record("track1", false)
	if liked, _ := history.Lookup("track1"); liked {
		t.Error("Expected latest state to win")
	}
	if history.Size() != 2 {
		t.Errorf("Re-recording must not grow the history, got %d", history.Size())
	}
}

func TestLikeHistory_IgnoresEmptyID(t *testing.T) {
	history := NewLikeHistory(10, 0.01)
	history.Record("", true)
	if history.Size() != 0 {
		t.Errorf("Expected empty history, got %d", history.Size())
	}
}

func TestLikeHistory_UnseenTracksSkipLRU(t *testing.T) {
	history := NewLikeHistory(10, 0.001)
	history.Record("track1", true)

	tests := []struct {
		trackID string
		seen    bool
	}{
		{"track1", true},
		{"track2", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.trackID, func(t *testing.T) {
			if got := history.mightContain(tt.trackID); got != tt.seen {
				t.Errorf("mightContain(%q) = %v, want %v", tt.trackID, got, tt.seen)
			}
			if _, known := history.Lookup(tt.trackID); known != tt.seen {
				t.Errorf("Lookup(%q) known = %v, want %v", tt.trackID, known, tt.seen)
			}
		})
	}
}

func TestLikeHistory_EvictedTrackPassesFilterButIsUnknown(t *testing.T) {
	history := NewLikeHistory(1, 0.001)
	history.Record("track1", true)
	history.Record("track2", true)

	if !history.mightContain("track1") {
		t.Error("Filter should still report the evicted track")
	}
	if _, known := history.Lookup("track1"); known {
		t.Error("Evicted track should be unknown")
	}
}

func TestLikeHistory_Concurrent(t *testing.T) {
	history := NewLikeHistory(50, 0.01)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("track%d", (w*200+i)%100)
				history.Record(id, i%2 == 0)
				history.Lookup(id)
				history.Lookup(fmt.Sprintf("never%d", i))
			}
		}(w)
	}
	wg.Wait()

	if history.Size() > 50 {
		t.Errorf("History grew past its capacity: %d", history.Size())
	}
}

func TestLikeHistory_MaxCapacity(t *testing.T) {
	history := NewLikeHistory(3, 0.01)

	for i := 1; i <= 5; i++ {
		history.Record(fmt.Sprintf("track%d", i), true)
	}

	if history.Size() != 3 {
		t.Errorf("Expected size 3 (max capacity), got %d", history.Size())
	}
	if _, known := history.Lookup("track1"); known {
		t.Error("Oldest track should have been evicted")
	}
	if _, known := history.Lookup("track5"); !known {
		t.Error("Newest track should be present")
	}
}

func TestLikeHistory_BloomFilterEffectiveness(t *testing.T) {
	history := NewLikeHistory(1000, 0.01)

	for i := 0; i < 100; i++ {
		history.Record(fmt.Sprintf("track%d", i), i%2 == 0)
	}

	for i := 100; i < 200; i++ {
		if _, known := history.Lookup(fmt.Sprintf("track%d", i)); known {
			t.Errorf("track%d should not be known", i)
		}
	}
}

func BenchmarkLikeHistory_Record(b *testing.B) {
	history := NewLikeHistory(10000, 0.01)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		history.Record(fmt.Sprintf("track%d", i), true)
	}
}

func BenchmarkLikeHistory_Lookup(b *testing.B) {
	history := NewLikeHistory(10000, 0.01)
	for i := 0; i < 1000; i++ {
		history.Record(fmt.Sprintf("track%d", i), true)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		history.Lookup(fmt.Sprintf("track%d", i%1000))
	}
}
