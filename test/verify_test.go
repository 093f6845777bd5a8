package test

import (
	"testing"
	"time"
)

// hashed is a minimal Hashed value where hash and string can be forced
// independently of the comparable content
type hashed struct {
	V int
	H uint32
	S string
}

func (h hashed) Hash() uint32   { return h.H }
func (h hashed) String() string { return h.S }

func TestEquivalence(t *testing.T) {
	err := Equivalence(
		[]hashed{{V: 1, H: 10, S: "one"}, {V: 1, H: 10, S: "one"}},
		[]hashed{{V: 2, H: 20, S: "two"}},
	)
	if err != nil {
		t.Fatal("Valid groups rejected: ", err)
	}
}

func TestEquivalenceWithinGroup(t *testing.T) {
	err := Equivalence(
		[]hashed{{V: 1, H: 10, S: "one"}, {V: 2, H: 10, S: "one"}},
	)
	if err == nil {
		t.Fatal("Unequal values in one group not caught")
	}

	err = Equivalence(
		[]hashed{{V: 1, H: 10, S: "one"}, {V: 1, H: 11, S: "one"}},
	)
	if err == nil {
		t.Fatal("Hash mismatch in one group not caught")
	}

	err = Equivalence(
		[]hashed{{V: 1, H: 10, S: "one"}, {V: 1, H: 10, S: "uno"}},
	)
	if err == nil {
		t.Fatal("String mismatch in one group not caught")
	}
}

func TestEquivalenceAcrossGroups(t *testing.T) {
	err := Equivalence(
		[]hashed{{V: 1, H: 10, S: "one"}},
		[]hashed{{V: 1, H: 10, S: "one"}},
	)
	if err == nil {
		t.Fatal("Equal values across groups not caught")
	}

	// different content but a colliding hash must be reported
	err = Equivalence(
		[]hashed{{V: 1, H: 10, S: "one"}},
		[]hashed{{V: 2, H: 10, S: "two"}},
	)
	if err == nil {
		t.Fatal("Cross-group hash collision not caught")
	}

	err = Equivalence(
		[]hashed{{V: 1, H: 10, S: "one"}},
		[]hashed{{V: 2, H: 20, S: "one"}},
	)
	if err == nil {
		t.Fatal("Cross-group string collision not caught")
	}
}

func TestWaitFor(t *testing.T) {
	if err := WaitFor(time.Second, func() bool { return true }); err != nil {
		t.Fatal("Immediate success reported as timeout: ", err)
	}

	if err := WaitFor(50*time.Millisecond, func() bool { return false }); err == nil {
		t.Fatal("Expected timeout")
	}
}
