// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import "fmt"

// Parent graphs arrive as flat records keyed by natural key. Cycle
// detection runs on that flat form, before any tree building, with a
// depth-first walk carrying a recursion-stack set.

type visitState int

const (
	stateUnvisited visitState = iota
	stateInStack
	stateDone
)

// detectCycles walks the parent graph of n records. parentOf returns
// the parent's index, or -1 for roots and dangling references (those
// are reported separately by referential validation). Each detected
// cycle is reported once, at the first in-stack record encountered.
func detectCycles(n int, parentOf func(i int) int) []int {
	states := make([]visitState, n)
	var offenders []int

	var visit func(i int) bool
	visit = func(i int) bool {
		switch states[i] {
		case stateDone:
			return false
		case stateInStack:
			return true
		}
		states[i] = stateInStack
		cycled := false
		if p := parentOf(i); p >= 0 {
			cycled = visit(p)
		}
		states[i] = stateDone
		return cycled
	}

	for i := 0; i < n; i++ {
		if states[i] == stateUnvisited && visit(i) {
			offenders = append(offenders, i)
		}
	}
	return offenders
}

// topologicalOrder sorts n records so every parent precedes its
// children: repeatedly scan for records whose parent is absent or
// already placed and append them. Validation has already rejected
// cycles, so every pass must place at least one record; if it does
// not, that is an internal invariant violation, not a records-dropped
// situation.
func topologicalOrder(n int, parentOf func(i int) int) ([]int, error) {
	order := make([]int, 0, n)
	placed := make([]bool, n)

	for len(order) < n {
		progress := false
		for i := 0; i < n; i++ {
			if placed[i] {
				continue
			}
			if p := parentOf(i); p >= 0 && !placed[p] {
				continue
			}
			placed[i] = true
			order = append(order, i)
			progress = true
		}
		if !progress {
			return nil, fmt.Errorf("dependency ordering stalled with %d of %d records placed", len(order), n)
		}
	}
	return order, nil
}
