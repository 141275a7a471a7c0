package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexfile"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/errors"
)

func writeTokens(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildSmallCorpus(t *testing.T) {
	path := writeTokens(t, "0\tfoo\n1\tfoo\n1\tbar\n0\tbar\n2\tfoo\n")

	res, err := NewBuilder(1).Build(path, "")
	require.NoError(t, err)

	assert.Equal(t, uint32(3), res.Meta.DocsCount)
	assert.Equal(t, uint64(5), res.Meta.TotalTokens)
	assert.Equal(t, uint32(2), res.Meta.UniqueTerms)
	assert.InDelta(t, 3.0, res.Meta.AvgTermLen, 1e-9)

	require.Len(t, res.Dict, 2)
	assert.Equal(t, indexfile.DictEntry{Term: "bar", DF: 2, PostingsOff: 0}, res.Dict[0])
	assert.Equal(t, indexfile.DictEntry{Term: "foo", DF: 3, PostingsOff: 8}, res.Dict[1])
	assert.Equal(t, []uint32{0, 1, 0, 1, 2}, res.Postings)
}

func TestBuildInvariants(t *testing.T) {
	path := writeTokens(t,
		"3\tZebra\n0\talpha\n2\talpha\n2\talpha\n1\tbeta\n3\talpha\n0\tzebra\n")

	res, err := NewBuilder(1).Build(path, "")
	require.NoError(t, err)

	// Dictionary strictly increasing by raw term bytes.
	for i := 1; i < len(res.Dict); i++ {
		assert.Less(t, res.Dict[i-1].Term, res.Dict[i].Term)
	}

	var sumDF uint64
	for _, e := range res.Dict {
		start := e.PostingsOff / 4
		list := res.Postings[start : start+uint64(e.DF)]
		// Posting lists strictly ascending, all docIds < docs_count.
		for j := range list {
			assert.Less(t, list[j], res.Meta.DocsCount)
			if j > 0 {
				assert.Less(t, list[j-1], list[j])
			}
		}
		assert.Equal(t, uint64(0), e.PostingsOff%4)
		sumDF += uint64(e.DF)
	}
	assert.Equal(t, sumDF, uint64(len(res.Postings)))
	assert.Len(t, res.Docs, int(res.Meta.DocsCount))
}

func TestBuildLowercasesTerms(t *testing.T) {
	path := writeTokens(t, "0\tFoo\n1\tFOO\n2\tfoo\n0\tЖУК\n")

	res, err := NewBuilder(1).Build(path, "")
	require.NoError(t, err)

	require.Len(t, res.Dict, 2)
	// Raw-byte order puts ASCII before Cyrillic.
	assert.Equal(t, "foo", res.Dict[0].Term)
	assert.Equal(t, uint32(3), res.Dict[0].DF)
	// Non-ASCII bytes are left unchanged.
	assert.Equal(t, "ЖУК", res.Dict[1].Term)
}

func TestBuildSkipsMalformedLines(t *testing.T) {
	path := writeTokens(t,
		"0\tfoo\n"+
			"notanumber\tbar\n"+
			"\n"+
			"5\n"+
			"99999999999999999999999999\tbar\n"+
			"1\tbar\textra column ignored\n")

	res, err := NewBuilder(1).Build(path, "")
	require.NoError(t, err)

	assert.Equal(t, uint64(2), res.Meta.TotalTokens)
	assert.Equal(t, uint32(2), res.Meta.DocsCount)
}

func TestBuildEmptyInputFails(t *testing.T) {
	path := writeTokens(t, "not a token line\n")

	_, err := NewBuilder(1).Build(path, "")
	assert.ErrorIs(t, err, pkgerrors.ErrData)
}

func TestBuildIdempotent(t *testing.T) {
	path := writeTokens(t, "0\tfoo\n1\tfoo\n1\tbar\n0\tbar\n2\tfoo\n")
	b := NewBuilder(1)

	res1, err := b.Build(path, "")
	require.NoError(t, err)
	res2, err := b.Build(path, "")
	require.NoError(t, err)

	assert.Equal(t, res1.Dict, res2.Dict)
	assert.Equal(t, res1.Postings, res2.Postings)
	assert.Equal(t, res1.Docs, res2.Docs)
}

func TestBuildParallelSortMatchesSequential(t *testing.T) {
	content := ""
	terms := []string{"delta", "alpha", "echo", "bravo", "charlie", "alpha", "echo"}
	for doc := 0; doc < 50; doc++ {
		for _, term := range terms {
			content += itoa(doc*7%50) + "\t" + term + "\n"
		}
	}
	path := writeTokens(t, content)

	seq, err := NewBuilder(1).Build(path, "")
	require.NoError(t, err)
	par, err := NewBuilder(4).Build(path, "")
	require.NoError(t, err)

	assert.Equal(t, seq.Dict, par.Dict)
	assert.Equal(t, seq.Postings, par.Postings)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

func TestBuildForwardFromJSON(t *testing.T) {
	dir := t.TempDir()
	tokensPath := filepath.Join(dir, "tokens.txt")
	require.NoError(t, os.WriteFile(tokensPath, []byte("0\tfoo\n1\tbar\n2\tbaz\n"), 0o644))

	jsonPath := filepath.Join(dir, "documents.json")
	docsJSON := `[
		{"url_norm":"https://ru.wikipedia.org/wiki/%D0%9C%D0%B8%D1%80","parsed_text":"x"},
		{"url_norm":"https://example.com/plain_page","parsed_text":"y"}
	]`
	require.NoError(t, os.WriteFile(jsonPath, []byte(docsJSON), 0o644))

	res, err := NewBuilder(1).Build(tokensPath, jsonPath)
	require.NoError(t, err)

	require.Len(t, res.Docs, 3)
	assert.Equal(t, "Мир", res.Docs[0].Title)
	assert.Equal(t, "plain page", res.Docs[1].Title)
	// Third document has no url_norm: placeholder entry.
	assert.Equal(t, "", res.Docs[2].URL)
	assert.Equal(t, "Document 2", res.Docs[2].Title)
}

func TestParseTokenLine(t *testing.T) {
	cases := []struct {
		line    string
		wantDoc uint32
		want    string
		ok      bool
	}{
		{"0\tfoo", 0, "foo", true},
		{"  12 \t bar baz", 12, "bar", true},
		{"4294967295\tmax", 4294967295, "max", true},
		{"4294967296\toverflow", 0, "", false},
		{"18446744073709551616\toverflow", 0, "", false},
		{"-1\tneg", 0, "", false},
		{"foo\tbar", 0, "", false},
		{"7", 0, "", false},
		{"7\t", 0, "", false},
		{"", 0, "", false},
	}
	for _, tc := range cases {
		doc, term, ok := parseTokenLine([]byte(tc.line))
		assert.Equal(t, tc.ok, ok, "line %q", tc.line)
		if tc.ok {
			assert.Equal(t, tc.wantDoc, doc, "line %q", tc.line)
			assert.Equal(t, tc.want, string(term), "line %q", tc.line)
		}
	}
}

func TestTitleFromURL(t *testing.T) {
	cases := map[string]string{
		"https://ru.wikipedia.org/wiki/%D0%9C%D0%B8%D1%80": "Мир",
		"https://en.wikipedia.org/wiki/New_York":           "New York",
		"https://example.com/some/deep/page_name":          "page name",
		"https://example.com/a+b":                          "a b",
		"https://example.com/bad%GGseq":                    "bad%GGseq",
	}
	for url, want := range cases {
		assert.Equal(t, want, titleFromURL(url), "url %q", url)
	}
}

func TestExtractURLNorms(t *testing.T) {
	json := `[
		{"url_norm":"https://a.example/one","x":1},
		{"url_norm":"https:\/\/b.example\/two"},
		{"other":"https://c.example/ignored"}
	]`
	urls := extractURLNorms([]byte(json))
	assert.Equal(t, []string{"https://a.example/one", "https://b.example/two"}, urls)
}
