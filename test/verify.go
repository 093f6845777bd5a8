/*
Package test provides verification helpers shared by the package tests:
equality-group checks, wire round-trip checks, and bounded waits.
*/
package test

import (
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Hashed is anything with a canonical wire encoding and a derived hash
type Hashed interface {
	Hash() uint32
	String() string
}

// Equivalence checks equality groups: values within a group must compare
// equal, hash the same, and render the same string; values from different
// groups must differ. Returns the first violation found, nil if all hold.
func Equivalence[T Hashed](groups ...[]T) error {
	for gi, group := range groups {
		for vi, v := range group {
			for _, w := range group[vi:] {
				if !cmp.Equal(v, w, cmpopts.EquateEmpty()) {
					return fmt.Errorf("group %v: %v != %v", gi, v, w)
				}
				if v.Hash() != w.Hash() {
					return fmt.Errorf("group %v: hash mismatch: %v, %v", gi, v, w)
				}
				if v.String() != w.String() {
					return fmt.Errorf("group %v: string mismatch: %q, %q",
						gi, v.String(), w.String())
				}
			}

			for gj, other := range groups[gi+1:] {
				for _, w := range other {
					if cmp.Equal(v, w, cmpopts.EquateEmpty()) {
						return fmt.Errorf("groups %v and %v: %v == %v",
							gi, gi+1+gj, v, w)
					}
					if v.Hash() == w.Hash() {
						return fmt.Errorf("groups %v and %v: hash collision: %v, %v",
							gi, gi+1+gj, v, w)
					}
					if v.String() == w.String() {
						return fmt.Errorf("groups %v and %v: string collision: %q",
							gi, gi+1+gj, v.String())
					}
				}
			}
		}
	}

	return nil
}

// RoundTrip encodes a value, decodes it back, and checks the result is
// equivalent and the re-encoding is byte stable. Nil and empty slices are
// treated as equal since the wire format cannot tell them apart.
func RoundTrip[T any](v T, encode func(T) []byte, decode func([]byte) (T, error)) error {
	b := encode(v)

	back, err := decode(b)
	if err != nil {
		return fmt.Errorf("decode error: %v", err)
	}

	if diff := cmp.Diff(v, back, cmpopts.EquateEmpty()); diff != "" {
		return fmt.Errorf("round trip mismatch (-sent +got):\n%v", diff)
	}

	b2 := encode(back)
	if string(b) != string(b2) {
		return fmt.Errorf("re-encoding not byte stable for %v", v)
	}

	return nil
}

// WaitFor polls f until it returns true or the timeout expires
func WaitFor(timeout time.Duration, f func() bool) error {
	start := time.Now()

	for time.Since(start) < timeout {
		if f() {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	return fmt.Errorf("timeout after %v", timeout)
}

// Recv receives from a channel with a bound on how long it will wait
func Recv[T any](ch <-chan T, timeout time.Duration) (T, error) {
	select {
	case v := <-ch:
		return v, nil
	case <-time.After(timeout):
		var zero T
		return zero, fmt.Errorf("timeout after %v waiting for message", timeout)
	}
}
