// reentrancy_test.go: tests for fill scope tracking
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"testing"
)

func TestFillScope(t *testing.T) {
	ownerA, ownerB := new(int), new(int)
	ctx := context.Background()

	if heldFrame(ctx, ownerA, "x") != nil || FillDepth(ctx) != 0 {
		t.Fatal("background context must not be inside a fill")
	}

	inA := enterFill(ctx, ownerA, "x")
	if heldFrame(inA, ownerA, "x") == nil {
		t.Error("expected the fill of A to hold x")
	}
	if heldFrame(inA, ownerB, "x") != nil {
		t.Error("fill of A must not mark B")
	}
	if heldFrame(inA, ownerA, "y") != nil {
		t.Error("heldFrame must match the exact key")
	}
	if heldFrame(inA, ownerA, 1) != nil {
		t.Error("heldFrame must not match keys of another type")
	}

	nested := enterFill(inA, ownerB, "y")
	if FillDepth(nested) != 2 {
		t.Errorf("FillDepth = %d, want 2", FillDepth(nested))
	}
	if heldFrame(nested, ownerA, "x") == nil || heldFrame(nested, ownerB, "y") == nil {
		t.Error("outer frames must stay visible")
	}
}

func TestFillScope_InnermostFrame(t *testing.T) {
	owner := new(int)
	outer := enterFill(context.Background(), owner, "k")
	inner := enterFill(outer, owner, "k")

	of, inf := heldFrame(outer, owner, "k"), heldFrame(inner, owner, "k")
	if of == nil || inf == nil {
		t.Fatal("both contexts must hold k")
	}
	if of == inf {
		t.Error("a recursive fill must get its own frame")
	}
	if inf.parent != of {
		t.Error("inner frame must point at the outer one")
	}
	if inf.nested() != inf.nested() {
		t.Error("nested registry must be created once per frame")
	}
	if inf.nested() == of.nested() {
		t.Error("frames must not share nested registries")
	}
}

// The marker is carried by the context, so it survives goroutine hops.
func TestFillScope_AcrossGoroutines(t *testing.T) {
	owner := new(int)
	ctx := enterFill(context.Background(), owner, 7)

	done := make(chan bool)
	go func() {
		done <- heldFrame(ctx, owner, 7) != nil
	}()
	if !<-done {
		t.Error("marker lost across goroutines")
	}
}
