package observability

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnFetchStart(ctx, "octocat")
	p.OnFetchComplete(ctx, "octocat", 371, time.Second, nil)
	p.OnPlanStart(ctx, 10, 120)
	p.OnPlanComplete(ctx, 400, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "calendar")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "api.github.com", "/graphql")
	h.OnResponse(ctx, "POST", "api.github.com", "/graphql", 200, time.Second)
	h.OnError(ctx, "POST", "api.github.com", "/graphql", nil)
}

func TestRegistryDefaultsAndReset(t *testing.T) {
	t.Cleanup(Reset)

	SetPipelineHooks(&testPipelineHooks{})
	SetCacheHooks(&testCacheHooks{})
	SetHTTPHooks(&testHTTPHooks{})
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T after Reset", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T after Reset", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T after Reset", HTTP())
	}
}

func TestSettersAreIndependent(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	p := &testPipelineHooks{}
	SetPipelineHooks(p)
	SetPipelineHooks(nil)
	if Pipeline() != p {
		t.Error("nil pipeline hooks replaced the installed ones")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("setting pipeline hooks touched cache hooks")
	}

	h := &testHTTPHooks{}
	SetHTTPHooks(h)
	if HTTP() != h || Pipeline() != p {
		t.Error("setting HTTP hooks dropped pipeline hooks")
	}
}

func TestConcurrentSetAndRead(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetCacheHooks(&testCacheHooks{})
		}()
		go func() {
			defer wg.Done()
			Cache().OnCacheHit(ctx, "calendar")
		}()
	}
	wg.Wait()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)

	var (
		_ PipelineHooks = h
		_ CacheHooks    = h
		_ HTTPHooks     = h
	)

	ctx := context.Background()
	h.OnFetchStart(ctx, "octocat")
	h.OnCacheHit(ctx, "calendar")
	h.OnResponse(ctx, "POST", "api.github.com", "/graphql", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"fetch start", "login=octocat", "cache hit", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
