// Package mse assigns stable numeric IDs to every entity in insertion
// order, resolves relation endpoints to those IDs, and writes the model as
// an MSE/FAMIX-style nested S-expression document.
package mse

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/highwayhash"

	"github.com/viant/somix-extract/internal/somix"
	"github.com/viant/somix-extract/internal/xerrors"
	"github.com/viant/somix-extract/internal/xlog"
)

// errAbsentEndpoint marks a relation referencing an entity that was never
// registered, so no ID exists to resolve the ref to.
var errAbsentEndpoint = errors.New("relation endpoint is not among the emitted entities")

// hashKey is a fixed 32-byte key for the non-cryptographic HighwayHash used
// to deduplicate relation records at serialization time; relations compare
// equal when their (kind, endpoints, flags) tuple hashes the same.
var hashKey = []byte("S0M1Xextract0123456789ABCDEFGH01")

// Serializer assigns IDs and renders a Model to MSE text.
type Serializer struct {
	ids map[string]int
}

// New returns a Serializer.
func New() *Serializer {
	return &Serializer{ids: make(map[string]int)}
}

// Serialize assigns IDs in insertion order (Groupings, then Codes, then
// Datas, the order the Model accumulates them in) and writes the output
// document.
func (s *Serializer) Serialize(m *somix.Model) ([]byte, error) {
	next := 1
	for _, g := range m.Groupings {
		s.ids[g.UniqueName] = next
		g.ID = next
		next++
	}
	for _, c := range m.Codes {
		s.ids[c.UniqueName] = next
		c.ID = next
		next++
	}
	for _, d := range m.Datas {
		s.ids[d.UniqueName] = next
		d.ID = next
		next++
	}

	b := &strings.Builder{}
	b.WriteString("(\n")

	for _, g := range m.Groupings {
		writeGrouping(b, g, s.ids[g.UniqueName])
	}
	for _, c := range m.Codes {
		writeCode(b, c, s.ids[c.UniqueName])
	}
	for _, d := range m.Datas {
		writeData(b, d, s.ids[d.UniqueName])
	}

	seen := make(map[uint64]bool)
	for _, pc := range m.ParentChildren {
		if pc.ParentUniqueName == "" {
			continue
		}
		parentID, ok1 := s.ids[pc.ParentUniqueName]
		childID, ok2 := s.ids[pc.ChildUniqueName]
		if !ok1 || !ok2 {
			dropDangling("ParentChild", pc.ParentUniqueName, pc.ChildUniqueName)
			continue
		}
		if !markSeen(seen, "pc", parentID, childID, boolInt(pc.IsMain), 0, 0) {
			continue
		}
		writeParentChild(b, parentID, childID, pc.IsMain)
	}
	for _, call := range m.Calls {
		callerID, ok1 := s.ids[call.CallerUniqueName]
		calledID, ok2 := s.ids[call.CalledUniqueName]
		if !ok1 || !ok2 {
			dropDangling("Call", call.CallerUniqueName, call.CalledUniqueName)
			continue
		}
		if !markSeen(seen, "call", callerID, calledID, 0, 0, 0) {
			continue
		}
		writeCall(b, callerID, calledID)
	}
	for _, acc := range m.Accesses {
		accessorID, ok1 := s.ids[acc.AccessorUniqueName]
		accessedID, ok2 := s.ids[acc.AccessedUniqueName]
		if !ok1 || !ok2 {
			dropDangling("Access", acc.AccessorUniqueName, acc.AccessedUniqueName)
			continue
		}
		if !markSeen(seen, "access", accessorID, accessedID, boolInt(acc.IsRead), boolInt(acc.IsWrite), boolInt(acc.IsDependent)) {
			continue
		}
		writeAccess(b, accessorID, accessedID, acc.IsRead, acc.IsWrite, acc.IsDependent)
	}

	b.WriteString(")\n")
	return []byte(b.String()), nil
}

// IDFor returns the numeric ID assigned to uniqueName, or 0 if it was never
// registered (e.g. queried before Serialize ran).
func (s *Serializer) IDFor(uniqueName string) (int, bool) {
	id, ok := s.ids[uniqueName]
	return id, ok
}

func writeGrouping(b *strings.Builder, g *somix.Grouping, id int) {
	b.WriteString(fmt.Sprintf("(SOMIX.Grouping (id: %d )\n", id))
	b.WriteString(fmt.Sprintf("  (name '%s')\n", g.Name))
	b.WriteString(fmt.Sprintf("  (uniqueName '%s')\n", g.UniqueName))
	b.WriteString(fmt.Sprintf("  (technicalType '%s')\n", g.TechnicalType))
	if g.LinkToEditor != "" {
		b.WriteString(fmt.Sprintf("  (linkToEditor '%s')\n", g.LinkToEditor))
	}
	b.WriteString(")\n")
}

func writeCode(b *strings.Builder, c *somix.Code, id int) {
	b.WriteString(fmt.Sprintf("(SOMIX.Code (id: %d )\n", id))
	b.WriteString(fmt.Sprintf("  (name '%s')\n", c.Name))
	b.WriteString(fmt.Sprintf("  (technicalType '%s')\n", c.TechnicalType))
	b.WriteString(fmt.Sprintf("  (uniqueName '%s')\n", c.UniqueName))
	if c.LinkToEditor != "" {
		b.WriteString(fmt.Sprintf("  (linkToEditor '%s')\n", c.LinkToEditor))
	}
	b.WriteString(")\n")
}

func writeData(b *strings.Builder, d *somix.Data, id int) {
	b.WriteString(fmt.Sprintf("(SOMIX.Data (id: %d )\n", id))
	b.WriteString(fmt.Sprintf("  (name '%s')\n", d.Name))
	b.WriteString(fmt.Sprintf("  (technicalType '%s')\n", d.TechnicalType))
	b.WriteString(fmt.Sprintf("  (uniqueName '%s')\n", d.UniqueName))
	if d.LinkToEditor != "" {
		b.WriteString(fmt.Sprintf("  (linkToEditor '%s')\n", d.LinkToEditor))
	}
	b.WriteString(")\n")
}

func writeParentChild(b *strings.Builder, parentID, childID int, isMain bool) {
	b.WriteString("(SOMIX.ParentChild\n")
	b.WriteString(fmt.Sprintf("  (parent (ref: %d))\n", parentID))
	b.WriteString(fmt.Sprintf("  (child (ref: %d))\n", childID))
	b.WriteString(fmt.Sprintf("  (isMain %t)\n", isMain))
	b.WriteString(")\n")
}

func writeCall(b *strings.Builder, callerID, calledID int) {
	b.WriteString("(SOMIX.Call\n")
	b.WriteString(fmt.Sprintf("  (caller (ref: %d))\n", callerID))
	b.WriteString(fmt.Sprintf("  (called (ref: %d))\n", calledID))
	b.WriteString(")\n")
}

func writeAccess(b *strings.Builder, accessorID, accessedID int, isRead, isWrite, isDependent bool) {
	b.WriteString("(SOMIX.Access\n")
	b.WriteString(fmt.Sprintf("  (accessor (ref: %d))\n", accessorID))
	b.WriteString(fmt.Sprintf("  (accessed (ref: %d))\n", accessedID))
	b.WriteString(fmt.Sprintf("  (isWrite %t)\n", isWrite))
	b.WriteString(fmt.Sprintf("  (isRead %t)\n", isRead))
	b.WriteString(fmt.Sprintf("  (isDependent %t)\n", isDependent))
	b.WriteString(")\n")
}

// dropDangling logs a relation whose endpoint was never assigned an ID; the
// relation is dropped from the output.
func dropDangling(kind, from, to string) {
	xlog.Default().Debug("dropping dangling relation", "kind", kind,
		"error", xerrors.Dangle(from+" -> "+to, errAbsentEndpoint))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// markSeen hashes a relation's identity tuple with HighwayHash and reports
// whether it is new; duplicate Calls/Accesses recorded within the same
// final pass (e.g. a call site visited twice via two resolution paths)
// collapse to a single emitted record.
func markSeen(seen map[uint64]bool, kind string, a, b, c, d, e int) bool {
	buf := make([]byte, 0, 64)
	buf = append(buf, kind...)
	buf = appendInt(buf, a)
	buf = appendInt(buf, b)
	buf = appendInt(buf, c)
	buf = appendInt(buf, d)
	buf = appendInt(buf, e)

	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// Hashing cannot fail with a fixed 32-byte key; fall back to
		// always-unique so no relation is silently dropped.
		return true
	}
	_, _ = h.Write(buf)
	sum := h.Sum64()
	if seen[sum] {
		return false
	}
	seen[sum] = true
	return true
}

func appendInt(buf []byte, v int) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	return append(buf, tmp[:]...)
}
