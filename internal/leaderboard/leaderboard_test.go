package leaderboard

import (
	"sync"
	"testing"
)

func TestDefaultSeedOrder(t *testing.T) {
	b := NewDefault(0)
	top := b.Top(0)

	want := []string{"C9_BLABER", "DEV_JUNIE", "SUDO_ADMIN", "C9_BERSERKER", "GIT_PUSH_F"}
	if len(top) != len(want) {
		t.Fatalf("got %d entries, want %d", len(top), len(want))
	}
	for i, alias := range want {
		if top[i].Alias != alias {
			t.Errorf("rank %d = %s, want %s", i+1, top[i].Alias, alias)
		}
	}
}

func TestSubmitRanks(t *testing.T) {
	b := NewDefault(0)

	if rank := b.Submit("neo", 9000); rank != 1 {
		t.Errorf("rank = %d, want 1", rank)
	}
	if rank := b.Submit("trinity", 8200); rank != 4 {
		t.Errorf("tie with DEV_JUNIE ranked %d, want 4 (after the earlier entry)", rank)
	}
	if rank := b.Submit("", 100); rank != b.Len() {
		t.Errorf("lowest score ranked %d of %d", rank, b.Len())
	}

	top := b.Top(1)
	if top[0].Alias != "NEO" || top[0].Score != 9000 {
		t.Errorf("top = %+v", top[0])
	}
	if top[0].At.IsZero() {
		t.Error("submitted entry has no timestamp")
	}
}

func TestLimitTrims(t *testing.T) {
	b := NewDefault(5)

	if b.Qualifies(6800) {
		t.Error("a tie with the last entry should not qualify")
	}
	if rank := b.Submit("low", 10); rank != 0 {
		t.Errorf("off-board score ranked %d", rank)
	}
	if rank := b.Submit("mid", 8000); rank != 3 {
		t.Errorf("rank = %d, want 3", rank)
	}
	if b.Len() != 5 {
		t.Fatalf("len = %d, want 5", b.Len())
	}
	for _, e := range b.Top(0) {
		if e.Alias == "GIT_PUSH_F" {
			t.Error("lowest seed was not pushed off the board")
		}
	}
}

func TestTopReturnsCopy(t *testing.T) {
	b := NewDefault(0)
	top := b.Top(2)
	top[0].Alias = "MUTATED"

	if b.Top(1)[0].Alias != "C9_BLABER" {
		t.Error("Top exposed internal storage")
	}
	if len(b.Top(50)) != 5 {
		t.Error("Top(n > len) should return every entry")
	}
}

func TestNormalizeAlias(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  neo ", "NEO"},
		{"", "ANONYMOUS"},
		{"   ", "ANONYMOUS"},
		{"averyveryverylongname", "AVERYVERYVER"},
		{"çaño", "ÇAÑO"},
	}
	for _, tt := range tests {
		if got := NormalizeAlias(tt.in); got != tt.want {
			t.Errorf("NormalizeAlias(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConcurrentSubmit(t *testing.T) {
	b := New(0)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			b.Submit("player", score)
		}(i)
	}
	wg.Wait()

	top := b.Top(0)
	if len(top) != 50 {
		t.Fatalf("len = %d, want 50", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i-1].Score < top[i].Score {
			t.Fatalf("not descending at %d: %d < %d", i, top[i-1].Score, top[i].Score)
		}
	}
}
