// Package indexfile implements the single-file binary index format shared by
// the index builder and the query evaluator.
//
// The file starts with a 24-byte header (magic "IRIX", version, section
// count, section table offset) followed by four typed sections — META, DICT,
// POSTINGS, FORWARD — and a trailing section table locating them. All
// multi-byte integers and doubles are little-endian.
package indexfile

const (
	// Magic identifies a valid index file.
	Magic          = "IRIX"
	FormatVersion  = 1
	HeaderSize     = 24
	SectionDescLen = 24

	// MaxTermLen is the longest serialisable term; the dictionary stores term
	// lengths as u16.
	MaxTermLen = 65535
)

// Section types.
const (
	SectionDict     uint32 = 1
	SectionPostings uint32 = 2
	SectionForward  uint32 = 3
	SectionMeta     uint32 = 4
)

// SectionInfo is one entry of the trailing section table.
type SectionInfo struct {
	Type   uint32
	Flags  uint32
	Offset uint64
	Size   uint64
}

// Meta mirrors the META section: corpus-level statistics recorded at build
// time.
type Meta struct {
	DocsCount   uint32
	TotalTokens uint64
	UniqueTerms uint32
	AvgTermLen  float64
	BuildMS     float64
}

// DictEntry maps a lowercased term to its document frequency and the byte
// offset of its posting list inside the POSTINGS section.
type DictEntry struct {
	Term        string
	DF          uint32
	PostingsOff uint64
}

// DocInfo is one FORWARD entry: the document's source URL and the title
// derived from it.
type DocInfo struct {
	URL   string
	Title string
}
