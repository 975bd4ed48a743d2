package notify

import (
	"reflect"
	"testing"
)

func TestFeedEmitOrder(t *testing.T) {
	var f Feed[int]
	var got []string

	f.Subscribe(func(v int) { got = append(got, "a") })
	f.Subscribe(func(v int) { got = append(got, "b") })
	f.Emit(1)

	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("handlers ran as %v, want %v", got, want)
	}
}

func TestFeedUnsubscribe(t *testing.T) {
	var f Feed[string]
	var calls int

	stop := f.Subscribe(func(string) { calls++ })
	f.Emit("x")
	stop()
	stop()
	f.Emit("y")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.Len())
	}
}

func TestFeedUnsubscribeDuringEmit(t *testing.T) {
	var f Feed[int]
	var second int

	var stop func()
	stop = f.Subscribe(func(int) { stop() })
	f.Subscribe(func(int) { second++ })

	f.Emit(1)
	f.Emit(2)

	if second != 2 {
		t.Errorf("second handler calls = %d, want 2", second)
	}
	if f.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.Len())
	}
}

func TestFeedClear(t *testing.T) {
	var f Feed[bool]
	called := false
	f.Subscribe(func(bool) { called = true })
	f.Clear()
	f.Emit(true)
	if called {
		t.Error("handler called after Clear")
	}
}
