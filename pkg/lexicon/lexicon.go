// Package lexicon loads word-polarity lists such as positive-words.txt and
// negative-words.txt. Files hold one word per line and may be encoded in
// UTF-8 or ISO-8859-1.
package lexicon

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding names the text encoding a lexicon was decoded with
type Encoding string

const (
	UTF8   Encoding = "utf-8"
	Latin1 Encoding = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lexicon is an immutable set of lowercase words
type Lexicon struct {
	words    map[string]struct{}
	encoding Encoding
}

// New builds a lexicon from the given words
func New(words ...string) *Lexicon {
	l := &Lexicon{words: make(map[string]struct{}, len(words)), encoding: UTF8}
	for _, w := range words {
		l.add(w)
	}
	return l
}

// Load reads a lexicon file from disk
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon %s: %w", path, err)
	}
	defer f.Close()

	l, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load lexicon %s: %w", path, err)
	}
	return l, nil
}

// Parse reads a lexicon from r. The content is decoded as UTF-8 and, when
// that fails, as ISO-8859-1.
func Parse(r io.Reader) (*Lexicon, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	text, enc, err := decode(raw)
	if err != nil {
		return nil, err
	}

	l := &Lexicon{words: make(map[string]struct{}), encoding: enc}
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		// opinion-lexicon files open with a ';' comment header
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		l.add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan lexicon: %w", err)
	}
	return l, nil
}

func decode(raw []byte) (string, Encoding, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), UTF8, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("decode lexicon as %s: %w", Latin1, err)
	}
	return string(decoded), Latin1, nil
}

func (l *Lexicon) add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word != "" {
		l.words[word] = struct{}{}
	}
}

// Contains reports whether word is in the lexicon, ignoring case
func (l *Lexicon) Contains(word string) bool {
	if l == nil {
		return false
	}
	_, ok := l.words[strings.ToLower(word)]
	return ok
}

// Len returns the number of distinct words
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

// Words returns the lexicon's words in sorted order
func (l *Lexicon) Words() []string {
	if l == nil {
		return nil
	}
	words := make([]string, 0, len(l.words))
	for w := range l.words {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Encoding returns the encoding the lexicon was decoded with
func (l *Lexicon) Encoding() Encoding {
	return l.encoding
}
