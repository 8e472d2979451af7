// Property-based tests for concurrent ledger safety.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// TestConcurrentRatingSafetyProperty checks that concurrent read-modify-write
// cycles on one player give the same result as running them one by one.
func TestConcurrentRatingSafetyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(500, 2000).Draw(t, "initial")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")

		deltas := make([]int64, numOps)
		expected := initial
		for i := range deltas {
			deltas[i] = rapid.Int64Range(-50, 50).Draw(t, "delta")
			expected += deltas[i]
		}

		name := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "name")
		kl := NewKeyLock()
		rating := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, d := range deltas {
			go func(d int64) {
				defer wg.Done()
				kl.Lock(name)
				defer kl.Unlock(name)
				rating += d
			}(d)
		}
		wg.Wait()

		if rating != expected {
			t.Fatalf("rating mismatch with locking: expected %d, got %d", expected, rating)
		}
	})
}

// TestWithPlayersSerializesOverlappingMatchesProperty runs many matches over a
// small pool of players. Each match bumps all four players' counters; with the
// ledger held the totals always come out exact.
func TestWithPlayersSerializesOverlappingMatchesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pool := []string{"a", "b", "c", "d", "e", "f"}
		numMatches := rapid.IntRange(2, 25).Draw(t, "numMatches")

		games := make(map[string]*int, len(pool))
		for _, p := range pool {
			games[p] = new(int)
		}
		expected := make(map[string]int, len(pool))
		matches := make([][]string, numMatches)
		for i := range matches {
			perm := rapid.Permutation(pool).Draw(t, fmt.Sprintf("match%d", i))
			matches[i] = perm[:4]
			for _, p := range matches[i] {
				expected[p]++
			}
		}

		ledger := NewLedger(time.Second)
		var wg sync.WaitGroup
		wg.Add(numMatches)
		for _, m := range matches {
			go func(names []string) {
				defer wg.Done()
				_ = ledger.WithPlayers(context.Background(), names, func() error {
					for _, n := range names {
						*games[n]++
					}
					return nil
				})
			}(m)
		}
		wg.Wait()

		for _, p := range pool {
			if *games[p] != expected[p] {
				t.Fatalf("player %s: expected %d games, got %d", p, expected[p], *games[p])
			}
		}
	})
}

// TestTryLockAfterContentionProperty checks that TryLock contention always
// leaves the key free once everybody is done.
func TestTryLockAfterContentionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "name")
		numAttempts := rapid.IntRange(5, 20).Draw(t, "numAttempts")

		kl := NewKeyLock()
		var successCount atomic.Int32
		var wg sync.WaitGroup
		wg.Add(numAttempts)
		startCh := make(chan struct{})

		for i := 0; i < numAttempts; i++ {
			go func() {
				defer wg.Done()
				<-startCh
				if kl.TryLock(name) {
					successCount.Add(1)
					kl.Unlock(name)
				}
			}()
		}
		close(startCh)
		wg.Wait()

		if successCount.Load() < 1 {
			t.Fatalf("at least one TryLock should succeed, got %d", successCount.Load())
		}
		if !kl.TryLock(name) {
			t.Fatal("lock should be available after all attempts complete")
		}
		kl.Unlock(name)
	})
}

// TestLockUnlockSymmetryProperty tests that every Lock has a matching Unlock.
func TestLockUnlockSymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "name")
		numCycles := rapid.IntRange(1, 50).Draw(t, "numCycles")

		kl := NewKeyLock()
		for i := 0; i < numCycles; i++ {
			kl.Lock(name)
			kl.Unlock(name)
		}
		if kl.IsLocked(name) {
			t.Fatal("lock should be free after symmetric lock/unlock cycles")
		}
	})
}

func TestWithPlayersTimeout(t *testing.T) {
	ledger := NewLedger(20 * time.Millisecond)
	ledger.players.Lock("a")
	defer ledger.players.Unlock("a")

	called := false
	err := ledger.WithPlayers(context.Background(), []string{"b", "a"}, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if called {
		t.Fatal("fn must not run without every lock")
	}
	if ledger.IsPlayerLocked("b") {
		t.Fatal("partially acquired locks must be released")
	}
}

func TestExclusiveRejectsWhileBusy(t *testing.T) {
	ledger := NewLedger(time.Second)

	inside := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = ledger.Exclusive(func() error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	if err := ledger.Exclusive(func() error { return nil }); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(release)

	deadline := time.Now().Add(time.Second)
	for {
		err := ledger.Exclusive(func() error { return nil })
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("exclusive section never became free: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestExclusiveWaitsOutLiveWrites(t *testing.T) {
	ledger := NewLedger(time.Second)

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- ledger.WithPlayers(context.Background(), []string{"a"}, func() error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	if err := ledger.Exclusive(func() error { return nil }); !errors.Is(err, ErrBusy) {
		t.Fatalf("replay must not start during a live write, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("live write failed: %v", err)
	}
	if err := ledger.Exclusive(func() error { return nil }); err != nil {
		t.Fatalf("replay should run once writes finish: %v", err)
	}
}
