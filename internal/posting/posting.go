// Package posting defines the shared in-memory posting representation
// used between the SPIMI build pipeline and the merge writer, before
// postings are compressed into chunks.
package posting

// Posting is one (doc_id, positions) record for a term. Frequency is
// len(Positions). A SPIMI run file stores only the positions, so a
// posting read back from a run has Freq set to len(Positions).
type Posting struct {
	DocID     uint32
	Freq      uint32
	Positions []uint32 // sorted, unique; nil if positions are disabled
}

// List is an ordered sequence of Postings for one term, doc_id
// strictly increasing (spec §3).
type List []Posting
