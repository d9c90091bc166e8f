// Package buffer provides the editable byte buffer at the center of the
// editor engine.
//
// A Buffer owns a contiguous byte sequence and a dirty flag. Every mutator
// works at a byte offset and returns an Edit describing what it changed, so
// the caller can hand the record straight to the history:
//
//	buf := buffer.NewBufferFromBytes([]byte{0x01, 0x02})
//
//	edit, err := buf.InsertAt(1, 0xff, false) // 01 ff 02
//	if err != nil {
//	    return err
//	}
//	hist.Record(edit)
//
// Offsets:
//
// Offsets are 0-based. Insertions accept 0..Len(); deletions and
// replacements accept 0..Len()-1. Offsets outside those ranges are reported
// with ErrOffsetOutOfRange and are never clamped.
//
// Thread Safety:
//
// A Buffer is owned by one editing session and is not safe for concurrent
// mutation. Callers that share a buffer must provide their own locking.
package buffer
