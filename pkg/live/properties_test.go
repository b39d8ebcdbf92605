package live

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// Concurrent events to independent sessions never observe each other's
// state: after N parallel increment storms, each session's counter equals
// exactly the number of events sent to it.
func TestSessionIsolation(t *testing.T) {
	sup := newTestSupervisor(t, testConfig())
	ctx := context.Background()

	const sessions = 8
	keys := make([]string, sessions)
	for i := range keys {
		keys[i] = fmt.Sprintf("sess-%d", i)
		sess := sup.GetOrCreateSession(keys[i])
		if _, err := sess.Mount(ctx, counterTemplate, map[string]any{"count": 0}, &counterHandler{}); err != nil {
			t.Fatalf("mount %s: %v", keys[i], err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, sessions*32)
	for i := 0; i < sessions; i++ {
		events := i + 1 // session i receives i+1 increments
		sess, _ := sup.Session(keys[i])
		for j := 0; j < events; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := sess.Event(ctx, "increment", map[string]any{"amount": 1}, ""); err != nil {
					errs <- err
				}
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("event failed: %v", err)
	}

	for i := 0; i < sessions; i++ {
		sess, _ := sup.Session(keys[i])
		res, err := sess.Event(ctx, "increment", map[string]any{"amount": 0}, "")
		if err != nil {
			t.Fatalf("final read %s: %v", keys[i], err)
		}
		mustContain(t, res.HTML, fmt.Sprintf("count=%d", i+1))
	}
}

// Sending more in-flight messages than mailbox capacity drops nothing:
// every over-capacity send eventually completes once space frees up.
func TestBackpressureNoMessageLost(t *testing.T) {
	cfg := testConfig()
	cfg.ComponentMailbox = 4
	cfg.AskTimeout = 10 * testConfig().AskTimeout // generous: the point is completion, not speed
	core := newTestCore(t, cfg)

	c := newComponent(core, "c1", counterTemplate, nil, nil, nil)
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	const inflight = 4 + 50 // capacity + 50
	var wg sync.WaitGroup
	errs := make(chan error, inflight)
	for i := 0; i < inflight; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := c.UpdateProps(context.Background(), map[string]any{fmt.Sprintf("k%d", n): n}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("send dropped or failed: %v", err)
	}
}

// Events to two components of the same view are each internally serialized:
// a storm of no-handler merge events never corrupts either state map.
func TestComponentSerialization(t *testing.T) {
	v := newTestView(t, nil)
	ctx := context.Background()

	if _, err := v.CreateComponent(ctx, "a", itemTemplate, nil, nil); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := v.CreateComponent(ctx, "b", itemTemplate, nil, nil); err != nil {
		t.Fatalf("create b: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := "a"
			if n%2 == 0 {
				id = "b"
			}
			if _, err := v.ComponentEvent(ctx, id, "set", map[string]any{"label": fmt.Sprintf("v%d", n)}); err != nil {
				t.Errorf("component event: %v", err)
			}
		}(i)
	}
	wg.Wait()
}
