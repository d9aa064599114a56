package oram

import "testing"

func TestDummyBlock(t *testing.T) {
	b := dummyBlock(16)
	if !b.IsDummy() {
		t.Errorf("dummyBlock().IsDummy() = false, want true")
	}
	if len(b.Data) != 16 {
		t.Errorf("dummyBlock(16).Data has length %d, want 16", len(b.Data))
	}
}

func TestCloneBlock(t *testing.T) {
	orig := Block{ID: 3, Data: []byte{1, 2, 3}}
	clone := cloneBlock(orig)
	if clone.ID != orig.ID {
		t.Errorf("cloneBlock ID = %d, want %d", clone.ID, orig.ID)
	}
	clone.Data[0] = 0xFF
	if orig.Data[0] == 0xFF {
		t.Errorf("cloneBlock shares backing array with original")
	}
}

func TestBlockIsDummy(t *testing.T) {
	if (Block{ID: 5}).IsDummy() {
		t.Errorf("Block with ID 5 should not be dummy")
	}
	if !(Block{ID: EmptyBlockID}).IsDummy() {
		t.Errorf("Block with EmptyBlockID should be dummy")
	}
}
