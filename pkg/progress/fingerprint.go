package progress

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Fingerprint returns a hex-encoded SHA-256 content hash of the logical input
// fields of the snapshot: phase, assembly, part, mass and step, in row order.
// Derived fields are excluded so recomputation never changes the fingerprint.
// Two snapshots with the same fingerprint produce identical aggregation
// results, which makes the fingerprint a safe memoization key.
func Fingerprint(records []Record) string {
	h := sha256.New()
	var buf []byte
	for _, rec := range records {
		buf = buf[:0]
		buf = appendField(buf, rec.Phase)
		buf = appendField(buf, rec.AssemblyID)
		buf = appendField(buf, rec.PartID)
		buf = appendField(buf, strconv.FormatFloat(rec.MassKg, 'g', -1, 64))
		buf = appendField(buf, string(rec.Step))
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// appendField writes a length-prefixed field so adjacent values can never
// collide under concatenation.
func appendField(buf []byte, field string) []byte {
	buf = strconv.AppendInt(buf, int64(len(field)), 10)
	buf = append(buf, ':')
	buf = append(buf, field...)
	return buf
}
