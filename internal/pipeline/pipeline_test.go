package pipeline

import (
	"errors"
	"testing"
)

func TestRunChainsStagesInOrder(t *testing.T) {
	var order []string
	record := func(name string) Stage {
		return StageFunc(func(ctx *Context) *Context {
			order = append(order, name)
			return ctx
		})
	}
	p := New(record("a"), record("b"), record("c"))
	p.Run(&Context{})

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	var ran []string
	sentinel := errors.New("boom")
	record := func(name string) Stage {
		return StageFunc(func(ctx *Context) *Context {
			ran = append(ran, name)
			return ctx
		})
	}
	failing := StageFunc(func(ctx *Context) *Context {
		ctx.Err = sentinel
		return ctx
	})
	p := New(record("a"), failing, record("b"))
	out := p.Run(&Context{})

	if out.Err != sentinel {
		t.Fatalf("out.Err = %v, want %v", out.Err, sentinel)
	}
	if len(ran) != 1 || ran[0] != "a" {
		t.Errorf("ran = %v, want only [a] (stage after the error must not run)", ran)
	}
}
