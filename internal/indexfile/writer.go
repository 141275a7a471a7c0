package indexfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	pkgerrors "github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/errors"
)

// Write serialises a complete index to path. Sections are written in a single
// pass (META, DICT, POSTINGS, FORWARD), the section table is appended at the
// current offset, and the header's section_count and section_table_off fields
// are patched via seek. The file is written to a .tmp sibling first and
// renamed on success.
func Write(path string, meta Meta, dict []DictEntry, postings []uint32, docs []DocInfo) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return pkgerrors.Newf(pkgerrors.ErrIO, "creating index file %s: %v", tmpPath, err)
	}
	defer func() {
		if f != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	w := &sectionWriter{w: bufio.NewWriterSize(f, 1<<20)}

	w.bytes([]byte(Magic))
	w.u32(FormatVersion)
	w.u32(0) // section_count, patched below
	w.u64(0) // section_table_off, patched below

	var sections []SectionInfo
	begin := func(typ uint32) {
		sections = append(sections, SectionInfo{Type: typ, Offset: w.off})
	}
	end := func() {
		s := &sections[len(sections)-1]
		s.Size = w.off - s.Offset
	}

	begin(SectionMeta)
	w.u32(meta.DocsCount)
	w.u64(meta.TotalTokens)
	w.u32(meta.UniqueTerms)
	w.f64(meta.AvgTermLen)
	w.f64(meta.BuildMS)
	end()

	begin(SectionDict)
	w.u32(uint32(len(dict)))
	for _, e := range dict {
		if len(e.Term) > MaxTermLen {
			return pkgerrors.Newf(pkgerrors.ErrData,
				"term too long (>%d bytes): %q", MaxTermLen, e.Term)
		}
		w.u16(uint16(len(e.Term)))
		w.bytes([]byte(e.Term))
		w.u32(e.DF)
		w.u64(e.PostingsOff)
	}
	end()

	begin(SectionPostings)
	buf := make([]byte, 4)
	for _, docID := range postings {
		binary.LittleEndian.PutUint32(buf, docID)
		w.bytes(buf)
	}
	end()

	begin(SectionForward)
	w.u32(uint32(len(docs)))
	for _, d := range docs {
		w.u32(uint32(len(d.URL)))
		w.bytes([]byte(d.URL))
		w.u32(uint32(len(d.Title)))
		w.bytes([]byte(d.Title))
	}
	end()

	tableOff := w.off
	for _, s := range sections {
		w.u32(s.Type)
		w.u32(s.Flags)
		w.u64(s.Offset)
		w.u64(s.Size)
	}

	if w.err != nil {
		return pkgerrors.Newf(pkgerrors.ErrIO, "writing index: %v", w.err)
	}
	if err := w.w.Flush(); err != nil {
		return pkgerrors.Newf(pkgerrors.ErrIO, "flushing index: %v", err)
	}

	patch := make([]byte, 12)
	binary.LittleEndian.PutUint32(patch[0:4], uint32(len(sections)))
	binary.LittleEndian.PutUint64(patch[4:12], tableOff)
	if _, err := f.WriteAt(patch, 8); err != nil {
		return pkgerrors.Newf(pkgerrors.ErrIO, "patching index header: %v", err)
	}
	if err := f.Close(); err != nil {
		f = nil
		return pkgerrors.Newf(pkgerrors.ErrIO, "closing index file: %v", err)
	}
	f = nil
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return pkgerrors.Newf(pkgerrors.ErrIO, "renaming %s to %s: %v", tmpPath, path, err)
	}
	return nil
}

// sectionWriter wraps a buffered writer with little-endian helpers and a
// running byte offset. The first write error is sticky.
type sectionWriter struct {
	w   *bufio.Writer
	off uint64
	err error
}

func (s *sectionWriter) bytes(b []byte) {
	if s.err != nil {
		return
	}
	n, err := s.w.Write(b)
	s.off += uint64(n)
	if err != nil {
		s.err = fmt.Errorf("at offset %d: %w", s.off, err)
	}
}

func (s *sectionWriter) u16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	s.bytes(buf[:])
}

func (s *sectionWriter) u32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	s.bytes(buf[:])
}

func (s *sectionWriter) u64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	s.bytes(buf[:])
}

func (s *sectionWriter) f64(v float64) {
	s.u64(math.Float64bits(v))
}
