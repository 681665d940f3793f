package kv

import "testing"

func TestMemoryStoreBasicOps(t *testing.T) {
	s := NewMemoryStore()

	if _, found, _ := s.Get("k"); found {
		t.Error("Get on empty store found a value")
	}

	if err := s.Set("k", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, found, err := s.Get("k")
	if err != nil || !found {
		t.Fatalf("Get = (%v, %v), want found", err, found)
	}
	if v != "v1" {
		t.Errorf("Get = %q, want %q", v, "v1")
	}

	if err := s.Set("k", "v2"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	v, _, _ = s.Get("k")
	if v != "v2" {
		t.Errorf("Get after overwrite = %q, want %q", v, "v2")
	}

	if err := s.Remove("k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, found, _ := s.Get("k"); found {
		t.Error("Get after Remove found a value")
	}

	if err := s.Remove("absent"); err != nil {
		t.Errorf("Remove(absent) = %v, want nil", err)
	}
}

func TestMemoryStoreQuota(t *testing.T) {
	s := NewMemoryStoreWithQuota(10)

	if err := s.Set("a", "12345"); err != nil {
		t.Fatalf("Set within quota failed: %v", err)
	}

	// 1 + 5 stored; "b"+"12345" would make 12 > 10.
	if err := s.Set("b", "12345"); err == nil {
		t.Fatal("Set over quota succeeded")
	}
	if _, found, _ := s.Get("b"); found {
		t.Error("rejected write left a value behind")
	}

	// Replacing an existing key counts only the new value.
	if err := s.Set("a", "123456789"); err != nil {
		t.Errorf("Set replacing within quota failed: %v", err)
	}
	if err := s.Set("a", "0123456789"); err == nil {
		t.Error("Set replacement over quota succeeded")
	}
	v, _, _ := s.Get("a")
	if v != "123456789" {
		t.Errorf("value after rejected replacement = %q, want previous kept", v)
	}
}
