// Package reassembly reconstructs fragmented video frames from best-effort
// UDP datagrams, keyed by pkt_index, with gap detection.
package reassembly

// Reassembler collects fragments of a single stream keyed by pkt_index and
// emits a complete frame once the sequence observes no gaps. It is not safe
// for concurrent use; the session owns one instance per stream exclusively.
type Reassembler struct {
	pieces [][]byte // nil entry == missing
}

// Add stores data at pktIndex, growing the sequence with missing entries as
// needed. A repeated pktIndex within the same frame overwrites; the last
// writer wins.
func (r *Reassembler) Add(pktIndex int, data []byte) {
	if pktIndex < 0 {
		return
	}
	for len(r.pieces) <= pktIndex {
		r.pieces = append(r.pieces, nil)
	}
	r.pieces[pktIndex] = data
}

// Finalize concatenates the buffered fragments in ascending pkt_index order
// and reports success iff the sequence is non-empty and every position was
// filled. Either way, the reassembler is empty after Finalize returns.
func (r *Reassembler) Finalize() ([]byte, bool) {
	pieces := r.pieces
	r.pieces = nil
	if len(pieces) == 0 {
		return nil, false
	}
	total := 0
	for _, p := range pieces {
		if p == nil {
			return nil, false
		}
		total += len(p)
	}
	frame := make([]byte, 0, total)
	for _, p := range pieces {
		frame = append(frame, p...)
	}
	return frame, true
}

// Empty reports whether the reassembler currently holds no buffered
// fragments, i.e. the state right after a fresh Finalize or before the
// first Add.
func (r *Reassembler) Empty() bool { return len(r.pieces) == 0 }
