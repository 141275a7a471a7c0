package tokenizer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScanner(t *testing.T, json string, field string, withDocID bool) (string, Stats) {
	t.Helper()
	var buf bytes.Buffer
	s := NewScanner(field, 0, withDocID)
	st, err := s.Run([]byte(json), &buf)
	require.NoError(t, err)
	return buf.String(), st
}

func TestScannerSingleDoc(t *testing.T) {
	out, st := runScanner(t, `[{"parsed_text":"Hello, world!"}]`, "parsed_text", true)

	assert.Equal(t, "0\tHello\n0\tworld\n", out)
	assert.Equal(t, uint64(1), st.DocsWithField)
	assert.Equal(t, uint64(2), st.Tokens)
	assert.Equal(t, uint64(10), st.TokenChars)
}

func TestScannerHyphenRules(t *testing.T) {
	out, _ := runScanner(t, `{"parsed_text":"state-of-the-art co--op x-"}`, "parsed_text", false)

	assert.Equal(t, []string{"state-of-the-art", "co", "op", "x"},
		strings.Fields(out))
}

func TestScannerCyrillic(t *testing.T) {
	out, st := runScanner(t, `{"parsed_text":"Привет, мир!"}`, "parsed_text", false)

	assert.Equal(t, []string{"Привет", "мир"}, strings.Fields(out))
	// Base lengths count code points, not bytes.
	assert.Equal(t, uint64(9), st.TokenChars)
}

func TestScannerDocIDsAreDense(t *testing.T) {
	json := `[{"parsed_text":"one"},{"other":"x"},{"parsed_text":"two"},{"parsed_text":"three"}]`
	out, st := runScanner(t, json, "parsed_text", true)

	assert.Equal(t, "0\tone\n1\ttwo\n2\tthree\n", out)
	assert.Equal(t, uint64(3), st.DocsWithField)
}

func TestScannerFieldSelection(t *testing.T) {
	json := `{"title":"skip me","body":"take me"}`
	out, _ := runScanner(t, json, "body", false)

	assert.Equal(t, "take\nme\n", out)
}

func TestScannerEscapes(t *testing.T) {
	out, _ := runScanner(t, `{"parsed_text":"a\tbC Ж"}`, "parsed_text", false)

	assert.Equal(t, []string{"a", "bC", "Ж"}, strings.Fields(out))
}

func TestScannerSurrogatePair(t *testing.T) {
	// U+1F600 via a surrogate pair is outside every token class, so it
	// separates; the letters around it survive.
	out, _ := runScanner(t, `{"parsed_text":"ab\uD83D\uDE00cd"}`, "parsed_text", false)
	assert.Equal(t, []string{"ab", "cd"}, strings.Fields(out))
}

func TestScannerLoneSurrogateBecomesReplacement(t *testing.T) {
	out, st := runScanner(t, `{"parsed_text":"ab\uD800cd"}`, "parsed_text", false)

	assert.Equal(t, []string{"ab", "cd"}, strings.Fields(out))
	assert.Equal(t, uint64(1), st.DocsWithField)
}

func TestScannerUnknownEscapeAbandonsAttempt(t *testing.T) {
	// The trailing value contains an unknown escape and is truncated; the
	// attempt is abandoned without error and the earlier document stands.
	json := `[{"parsed_text":"good value"},{"parsed_text":"bad\qtail`
	out, st := runScanner(t, json, "parsed_text", true)

	assert.Equal(t, uint64(1), st.DocsWithField)
	assert.Equal(t, "0\tgood\n0\tvalue\n", out)
}

func TestScannerInvalidUTF8DoesNotAbort(t *testing.T) {
	// 0xFF is not valid UTF-8 anywhere; it decodes to U+FFFD which acts as
	// a separator.
	json := []byte(`{"parsed_text":"ab` + string([]byte{0xFF}) + `cd"}`)
	var buf bytes.Buffer
	s := NewScanner("parsed_text", 0, false)
	_, err := s.Run(json, &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "cd"}, strings.Fields(buf.String()))
}

func TestScannerNilOutputCountsOnly(t *testing.T) {
	s := NewScanner("parsed_text", 0, false)
	st, err := s.Run([]byte(`{"parsed_text":"one two three"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), st.Tokens)
}

func TestTokenizeValueCombiningMarks(t *testing.T) {
	// e + U+0301 combining acute: the mark stays in the token bytes but
	// does not count toward the base length.
	text := []byte("café x")
	var tokens []string
	var baseLens []uint64
	tokenizeValue(text, func(tok []byte, baseLen uint64) {
		tokens = append(tokens, string(tok))
		baseLens = append(baseLens, baseLen)
	})

	assert.Equal(t, []string{"café", "x"}, tokens)
	assert.Equal(t, []uint64{4, 1}, baseLens)
}

func TestTokenizeValueCombiningMarkNeverStartsToken(t *testing.T) {
	text := []byte("́abc")
	var tokens []string
	tokenizeValue(text, func(tok []byte, _ uint64) {
		tokens = append(tokens, string(tok))
	})
	assert.Equal(t, []string{"abc"}, tokens)
}

func TestTokenizeValueHyphenInvariants(t *testing.T) {
	cases := map[string][]string{
		"a-b":      {"a-b"},
		"a--b":     {"a", "b"},
		"-ab":      {"ab"},
		"ab-":      {"ab"},
		"a-b-c":    {"a-b-c"},
		"a- b":     {"a", "b"},
		"7-zip":    {"7-zip"},
		"мир-труд": {"мир-труд"},
		"a-б":      {"a-б"},
		"--":       nil,
		"a-́b":     {"a", "b"},
	}
	for in, want := range cases {
		var tokens []string
		tokenizeValue([]byte(in), func(tok []byte, _ uint64) {
			tokens = append(tokens, string(tok))
		})
		assert.Equal(t, want, tokens, "input %q", in)

		for _, tok := range tokens {
			assert.NotContains(t, tok, "--", "no adjacent hyphens in %q", tok)
			assert.False(t, strings.HasPrefix(tok, "-"), "no leading hyphen in %q", tok)
			assert.False(t, strings.HasSuffix(tok, "-"), "no trailing hyphen in %q", tok)
		}
	}
}

func TestDecodeRuneStrict(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
		want  uint32
	}{
		{"ascii", []byte("A"), 'A'},
		{"two_byte", []byte("Ж"), 0x0416},
		{"three_byte", []byte("€"), 0x20AC},
		{"four_byte", []byte("\U0001F600"), 0x1F600},
		{"overlong_two_byte", []byte{0xC0, 0xAF}, runeError},
		{"overlong_three_byte", []byte{0xE0, 0x80, 0xAF}, runeError},
		{"surrogate_three_byte", []byte{0xED, 0xA0, 0x80}, runeError},
		{"above_max", []byte{0xF4, 0x90, 0x80, 0x80}, runeError},
		{"bare_continuation", []byte{0x80}, runeError},
		{"truncated_two_byte", []byte{0xC3}, runeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cp, _ := decodeRune(tc.input, 0)
			assert.Equal(t, tc.want, cp)
		})
	}
}

func TestParseJSONStringFailures(t *testing.T) {
	_, _, ok := parseJSONString([]byte(`"unterminated`), 0)
	assert.False(t, ok)

	_, _, ok = parseJSONString([]byte(`"bad\q"`), 0)
	assert.False(t, ok)

	_, _, ok = parseJSONString([]byte(`"bad\u12G4"`), 0)
	assert.False(t, ok)

	val, _, ok := parseJSONString([]byte(`"aA😀b"`), 0)
	assert.True(t, ok)
	assert.Equal(t, "aA\U0001F600b", string(val))
}
