package indexer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexfile"
)

// extractURLNorms scans the raw source JSON for string values keyed by
// "url_norm" and returns them in document order. The scan is relaxed in the
// same spirit as the tokenizer's, but with a restricted escape set
// (\" \\ \/ \n \t \r); other backslashes pass through literally.
func extractURLNorms(data []byte) []string {
	needle := []byte(`"url_norm"`)
	var urls []string

	pos := 0
	for {
		k := bytes.Index(data[pos:], needle)
		if k < 0 {
			break
		}
		k += pos
		c := bytes.IndexByte(data[k+len(needle):], ':')
		if c < 0 {
			break
		}
		q1 := bytes.IndexByte(data[k+len(needle)+c+1:], '"')
		if q1 < 0 {
			break
		}

		i := k + len(needle) + c + 1 + q1 + 1
		var val []byte
		for i < len(data) {
			ch := data[i]
			if ch == '\\' && i+1 < len(data) {
				switch nxt := data[i+1]; nxt {
				case '"', '\\', '/':
					val = append(val, nxt)
					i += 2
					continue
				case 'n':
					val = append(val, '\n')
					i += 2
					continue
				case 't':
					val = append(val, '\t')
					i += 2
					continue
				case 'r':
					val = append(val, '\r')
					i += 2
					continue
				}
				val = append(val, ch)
				i++
				continue
			}
			if ch == '"' {
				break
			}
			val = append(val, ch)
			i++
		}
		urls = append(urls, string(val))
		pos = i + 1
	}

	return urls
}

// percentDecode resolves %HH sequences and '+' into their byte values.
// Invalid %HH sequences are left literal.
func percentDecode(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c == '%' && i+2 < len(s) {
			h1 := hexVal(s[i+1])
			h2 := hexVal(s[i+2])
			if h1 >= 0 && h2 >= 0 {
				out.WriteByte(byte(h1<<4 | h2))
				i += 3
				continue
			}
		}
		if c == '+' {
			out.WriteByte(' ')
			i++
			continue
		}
		out.WriteByte(c)
		i++
	}
	return out.String()
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return 10 + int(c-'a')
	case c >= 'A' && c <= 'F':
		return 10 + int(c-'A')
	default:
		return -1
	}
}

// titleFromURL derives a human-readable title from a normalised URL: the tail
// after the last "/wiki/" (falling back to the basename), underscores turned
// into spaces, percent-encoding decoded.
func titleFromURL(url string) string {
	tail := url
	const key = "/wiki/"
	if p := strings.LastIndex(url, key); p >= 0 {
		tail = url[p+len(key):]
	} else if s := strings.LastIndexByte(url, '/'); s >= 0 && s+1 < len(url) {
		tail = url[s+1:]
	}
	tail = strings.ReplaceAll(tail, "_", " ")
	return percentDecode(tail)
}

// buildForward assigns the i-th extracted url_norm to docId i. Documents
// beyond the URL list get an empty URL and a placeholder title.
func buildForward(docsCount uint32, urls []string) []indexfile.DocInfo {
	docs := make([]indexfile.DocInfo, docsCount)
	for d := uint32(0); d < docsCount; d++ {
		if int(d) < len(urls) {
			docs[d].URL = urls[d]
			docs[d].Title = titleFromURL(urls[d])
			if docs[d].Title == "" {
				docs[d].Title = fmt.Sprintf("Document %d", d)
			}
		} else {
			docs[d].Title = fmt.Sprintf("Document %d", d)
		}
	}
	return docs
}
