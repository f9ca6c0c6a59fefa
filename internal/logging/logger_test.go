package logging

import (
	"log"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(log.Printf)

	called := false
	SetLogger(func(format string, v ...any) { called = true })
	Logf("frame %d", 1)

	if !called {
		t.Fatal("custom logger was not called")
	}

	called = false
	SetLogger(nil)
	Logf("muted")

	if called {
		t.Fatal("nil logger should mute output")
	}
}

func TestSetLoggerWhileLogging(t *testing.T) {
	defer SetLogger(log.Printf)

	var hits atomic.Int64
	count := func(string, ...any) { hits.Add(1) }
	SetLogger(count)

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				Logf("worker %d message %d", w, i)
			}
		}()
	}
	for i := range 100 {
		if i%2 == 0 {
			SetLogger(nil)
		} else {
			SetLogger(count)
		}
	}
	SetLogger(count)
	wg.Wait()

	before := hits.Load()
	Logf("last")
	if hits.Load() != before+1 {
		t.Fatalf("final logger not installed: %d -> %d", before, hits.Load())
	}
}
