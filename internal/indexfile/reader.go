package indexfile

import (
	"encoding/binary"
	"math"
	"os"
	"sort"

	pkgerrors "github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/errors"
)

// Index is a read-only in-memory snapshot of an index file. The query
// evaluator borrows from it and never mutates.
type Index struct {
	Meta     Meta
	Dict     []DictEntry
	Postings []uint32
	Docs     []DocInfo
}

// Load reads and verifies an index file: magic, version, the presence of all
// four sections, postings alignment, and strict dictionary order. The
// dictionary, postings blob, and forward table are fully materialised.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.ErrIO, "opening index %s: %v", path, err)
	}
	if len(data) < HeaderSize {
		return nil, pkgerrors.Newf(pkgerrors.ErrFormat, "index file too small: %d bytes", len(data))
	}
	if string(data[0:4]) != Magic {
		return nil, pkgerrors.Newf(pkgerrors.ErrFormat, "bad magic, expected %s", Magic)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != FormatVersion {
		return nil, pkgerrors.Newf(pkgerrors.ErrFormat, "unsupported version %d (expected %d)", v, FormatVersion)
	}
	sectionCount := binary.LittleEndian.Uint32(data[8:12])
	tableOff := binary.LittleEndian.Uint64(data[12:24])

	tableEnd := tableOff + uint64(sectionCount)*SectionDescLen
	if tableOff > uint64(len(data)) || tableEnd > uint64(len(data)) {
		return nil, pkgerrors.Newf(pkgerrors.ErrFormat, "section table out of bounds")
	}
	sections := make([]SectionInfo, 0, sectionCount)
	for i := uint32(0); i < sectionCount; i++ {
		e := data[tableOff+uint64(i)*SectionDescLen:]
		sections = append(sections, SectionInfo{
			Type:   binary.LittleEndian.Uint32(e[0:4]),
			Flags:  binary.LittleEndian.Uint32(e[4:8]),
			Offset: binary.LittleEndian.Uint64(e[8:16]),
			Size:   binary.LittleEndian.Uint64(e[16:24]),
		})
	}

	metaS, err := findSection(sections, SectionMeta, "META", uint64(len(data)))
	if err != nil {
		return nil, err
	}
	dictS, err := findSection(sections, SectionDict, "DICT", uint64(len(data)))
	if err != nil {
		return nil, err
	}
	postS, err := findSection(sections, SectionPostings, "POSTINGS", uint64(len(data)))
	if err != nil {
		return nil, err
	}
	fwdS, err := findSection(sections, SectionForward, "FORWARD", uint64(len(data)))
	if err != nil {
		return nil, err
	}

	idx := &Index{}

	if err := idx.readMeta(data[metaS.Offset : metaS.Offset+metaS.Size]); err != nil {
		return nil, err
	}
	if err := idx.readDict(data[dictS.Offset : dictS.Offset+dictS.Size]); err != nil {
		return nil, err
	}
	if postS.Size%4 != 0 {
		return nil, pkgerrors.Newf(pkgerrors.ErrFormat, "POSTINGS size %d is not a multiple of 4", postS.Size)
	}
	post := data[postS.Offset : postS.Offset+postS.Size]
	idx.Postings = make([]uint32, postS.Size/4)
	for i := range idx.Postings {
		idx.Postings[i] = binary.LittleEndian.Uint32(post[i*4:])
	}
	if err := idx.readForward(data[fwdS.Offset : fwdS.Offset+fwdS.Size]); err != nil {
		return nil, err
	}

	// The builder guarantees strictly increasing terms; a duplicate implies a
	// builder bug, so the check is strict.
	for i := 1; i < len(idx.Dict); i++ {
		if idx.Dict[i-1].Term >= idx.Dict[i].Term {
			return nil, pkgerrors.Newf(pkgerrors.ErrFormat,
				"DICT is not strictly sorted at entry %d (%q >= %q)", i, idx.Dict[i-1].Term, idx.Dict[i].Term)
		}
	}

	return idx, nil
}

func findSection(sections []SectionInfo, typ uint32, name string, fileSize uint64) (SectionInfo, error) {
	for _, s := range sections {
		if s.Type != typ {
			continue
		}
		if s.Size > fileSize || s.Offset > fileSize-s.Size {
			return SectionInfo{}, pkgerrors.Newf(pkgerrors.ErrFormat, "%s section out of bounds", name)
		}
		return s, nil
	}
	return SectionInfo{}, pkgerrors.Newf(pkgerrors.ErrFormat, "%s section (type=%d) not found", name, typ)
}

// byteReader walks a section slice with bounds-checked little-endian reads.
type byteReader struct {
	data []byte
	pos  int
	ok   bool
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data, ok: true}
}

func (r *byteReader) take(n int) []byte {
	if !r.ok || r.pos+n > len(r.data) {
		r.ok = false
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *byteReader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *byteReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *byteReader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *byteReader) f64() float64 {
	return math.Float64frombits(r.u64())
}

func (idx *Index) readMeta(section []byte) error {
	r := newByteReader(section)
	idx.Meta.DocsCount = r.u32()
	idx.Meta.TotalTokens = r.u64()
	idx.Meta.UniqueTerms = r.u32()
	idx.Meta.AvgTermLen = r.f64()
	idx.Meta.BuildMS = r.f64()
	if !r.ok {
		return pkgerrors.New(pkgerrors.ErrFormat, "META section truncated")
	}
	return nil
}

func (idx *Index) readDict(section []byte) error {
	r := newByteReader(section)
	termCount := r.u32()
	if !r.ok {
		return pkgerrors.New(pkgerrors.ErrFormat, "DICT section truncated")
	}
	idx.Dict = make([]DictEntry, 0, termCount)
	for i := uint32(0); i < termCount; i++ {
		termLen := r.u16()
		term := r.take(int(termLen))
		df := r.u32()
		off := r.u64()
		if !r.ok {
			return pkgerrors.Newf(pkgerrors.ErrFormat, "DICT entry %d truncated", i)
		}
		idx.Dict = append(idx.Dict, DictEntry{
			Term:        string(term),
			DF:          df,
			PostingsOff: off,
		})
	}
	return nil
}

func (idx *Index) readForward(section []byte) error {
	r := newByteReader(section)
	docsCount := r.u32()
	if !r.ok {
		return pkgerrors.New(pkgerrors.ErrFormat, "FORWARD section truncated")
	}
	if docsCount != idx.Meta.DocsCount {
		return pkgerrors.Newf(pkgerrors.ErrFormat,
			"FORWARD docs_count %d differs from META docs_count %d", docsCount, idx.Meta.DocsCount)
	}
	idx.Docs = make([]DocInfo, 0, docsCount)
	for d := uint32(0); d < docsCount; d++ {
		urlLen := r.u32()
		url := r.take(int(urlLen))
		ttlLen := r.u32()
		ttl := r.take(int(ttlLen))
		if !r.ok {
			return pkgerrors.Newf(pkgerrors.ErrFormat, "FORWARD entry %d truncated", d)
		}
		idx.Docs = append(idx.Docs, DocInfo{URL: string(url), Title: string(ttl)})
	}
	return nil
}

// PostingsForTerm returns the posting list for a lowercased term, or an empty
// slice when the term is absent. The returned slice aliases the loaded blob
// and must not be mutated.
func (idx *Index) PostingsForTerm(term string) ([]uint32, error) {
	i := sort.Search(len(idx.Dict), func(i int) bool {
		return idx.Dict[i].Term >= term
	})
	if i >= len(idx.Dict) || idx.Dict[i].Term != term {
		return nil, nil
	}
	e := idx.Dict[i]
	if e.PostingsOff%4 != 0 {
		return nil, pkgerrors.Newf(pkgerrors.ErrFormat,
			"postings_off %d for term %q not aligned", e.PostingsOff, term)
	}
	start := e.PostingsOff / 4
	if start+uint64(e.DF) > uint64(len(idx.Postings)) {
		return nil, pkgerrors.Newf(pkgerrors.ErrFormat,
			"postings_off/df out of range for term %q", term)
	}
	return idx.Postings[start : start+uint64(e.DF)], nil
}
