package jobs_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"StockBook/internal/jobs"
)

func TestJobHandlesAreIsolated(t *testing.T) {
	reg := jobs.NewProgressRegistry()
	a := reg.NewJob()
	b := reg.NewJob()
	if a.Token == b.Token {
		t.Fatalf("expected distinct tokens, got %q twice", a.Token)
	}

	a.SetTotal(100)
	b.SetTotal(5)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 100; i++ {
			a.Advance(i)
		}
		a.Finish(nil)
	}()
	go func() {
		defer wg.Done()
		for i := 1; i <= 5; i++ {
			b.Advance(i)
		}
		b.Finish(errors.New("bad row 3"))
	}()
	wg.Wait()

	snapA, err := reg.Get(a.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got := snapA.Snapshot(); got.Processed != 100 || !got.Done || got.Error != "" {
		t.Fatalf("job a snapshot = %+v", got)
	}
	snapB, err := reg.Get(b.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got := snapB.Snapshot(); got.Processed != 5 || !got.Done || got.Error != "bad row 3" {
		t.Fatalf("job b snapshot = %+v", got)
	}
}

func TestGetUnknownToken(t *testing.T) {
	reg := jobs.NewProgressRegistry()
	if _, err := reg.Get("no-such-token"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestSweepDropsOnlyFinishedJobs(t *testing.T) {
	reg := jobs.NewProgressRegistry()
	done := reg.NewJob()
	done.Finish(nil)
	running := reg.NewJob()

	time.Sleep(10 * time.Millisecond)
	if removed := reg.Sweep(time.Millisecond); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := reg.Get(done.Token); err == nil {
		t.Fatal("finished job should have been swept")
	}
	if _, err := reg.Get(running.Token); err != nil {
		t.Fatalf("running job should survive sweep: %v", err)
	}
}
