// Package deformation implements C4: the per-foot backlog of previously
// commanded ground deformations used by the soft_kv contact task.
package deformation

import (
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

type entry struct {
	dk1, dk2 vec.Vector3D
}

// History stores d_{k-1}, d_{k-2} per foot, keyed by stable foot identity so
// a foot re-entering contact after a swing phase does not see stale rows
// misattributed to another foot's old slot.
type History struct {
	entries map[locotypes.FootID]entry
}

// New constructs an empty history, zeroed for every canonical foot.
func New() *History {
	h := &History{entries: make(map[locotypes.FootID]entry, 4)}
	for _, f := range locotypes.CanonicalFeet() {
		h.entries[f] = entry{}
	}
	return h
}

// Update rotates the history: for each foot in contact, d_{k-2} <- d_{k-1},
// d_{k-1} <- dDes(f); for every foot absent from contact, both entries are
// zeroed. dDes must have one entry per foot in contact, ordered the same way.
func (h *History) Update(contact []locotypes.FootID, dDes []vec.Vector3D) error {
	if len(contact) != len(dDes) {
		return locotypes.Newf("deformation", locotypes.PreconditionViolation,
			"contact/dDes length mismatch: %d vs %d", len(contact), len(dDes))
	}
	inContact := make(map[locotypes.FootID]bool, len(contact))
	for i, f := range contact {
		inContact[f] = true
		e := h.entries[f]
		e.dk2 = e.dk1
		e.dk1 = dDes[i]
		h.entries[f] = e
	}
	for _, f := range locotypes.CanonicalFeet() {
		if !inContact[f] {
			h.entries[f] = entry{}
		}
	}
	return nil
}

// Prev1 returns d_{k-1}(f).
func (h *History) Prev1(f locotypes.FootID) vec.Vector3D {
	return h.entries[f].dk1
}

// Prev2 returns d_{k-2}(f).
func (h *History) Prev2(f locotypes.FootID) vec.Vector3D {
	return h.entries[f].dk2
}

// Aligned returns (d_{k-1}, d_{k-2}) for every foot in contact, in the same
// order, for the compliant-contact task to consume directly.
func (h *History) Aligned(contact []locotypes.FootID) (dk1, dk2 []vec.Vector3D) {
	dk1 = make([]vec.Vector3D, len(contact))
	dk2 = make([]vec.Vector3D, len(contact))
	for i, f := range contact {
		dk1[i] = h.Prev1(f)
		dk2[i] = h.Prev2(f)
	}
	return dk1, dk2
}
