package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Layout hooks
	l := NoopLayoutHooks{}
	l.OnLayoutStart(ctx, "one-page", 12)
	l.OnLayoutComplete(ctx, "one-page", time.Second, nil)
	l.OnRenderStart(ctx, []string{"svg"})
	l.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Navigation hooks
	n := NoopNavigationHooks{}
	n.OnModeChange("dashboard", "page")
	n.OnPageChange(0, 1)
	n.OnPanResolved("right")
	n.OnGestureIgnored("scroll")

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/sessions")
	h.OnResponse(ctx, "POST", "/sessions", 201, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Navigation().(NoopNavigationHooks); !ok {
		t.Error("Navigation() should return NoopNavigationHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customNav := &testNavigationHooks{}
	SetNavigationHooks(customNav)
	if Navigation() != customNav {
		t.Error("SetNavigationHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Navigation().(NoopNavigationHooks); !ok {
		t.Error("Reset() should restore NoopNavigationHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testNavigationHooks{}
	SetNavigationHooks(custom)

	// Setting nil should be ignored
	SetNavigationHooks(nil)

	if Navigation() != custom {
		t.Error("SetNavigationHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testLayoutHooks struct{ NoopLayoutHooks }
type testNavigationHooks struct{ NoopNavigationHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
