// MODUL: wordpiece
// ZWECK: WordPiece-Tokenizer fuer den multilingualen Text-Encoder
// INPUT: vocab.txt (eine Zeile pro Token), Eingabe-Texte
// OUTPUT: Token-IDs mit Attention-Mask
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: Keine (Standard-Library)
// HINWEISE: Cased-Variante, greedy longest-match mit "##"-Fortsetzung

package tokenizer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Spezial-Tokens des BERT-Vokabulars.
const (
	clsToken = "[CLS]"
	sepToken = "[SEP]"
	unkToken = "[UNK]"
	padToken = "[PAD]"

	// wordpieceMaxChars verhindert pathologisch lange Einzelwoerter.
	wordpieceMaxChars = 100
)

// ErrMissingSpecial fehlt ein Spezial-Token im Vokabular.
var ErrMissingSpecial = errors.New("tokenizer: special token missing from vocabulary")

// WordPiece implementiert den BERT-WordPiece-Tokenizer, wie ihn die
// multilingualen Sentence-Transformer Text-Tuerme verwenden.
type WordPiece struct {
	vocab  map[string]int
	maxLen int
	clsID  int
	sepID  int
	unkID  int
	padID  int
}

// LoadWordPiece liest ein vocab.txt (Token pro Zeile, Zeilennummer = ID).
func LoadWordPiece(path string, maxLen int) (*WordPiece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: read wordpiece vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		vocab[strings.TrimRight(scanner.Text(), "\r\n")] = len(vocab)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tokenizer: scan wordpiece vocab: %w", err)
	}

	return NewWordPiece(vocab, maxLen)
}

// NewWordPiece erstellt einen Tokenizer aus einer Token-zu-ID Zuordnung.
func NewWordPiece(vocab map[string]int, maxLen int) (*WordPiece, error) {
	if len(vocab) == 0 {
		return nil, ErrEmptyVocab
	}

	ids := make([]int, 4)
	for i, tok := range []string{clsToken, sepToken, unkToken, padToken} {
		id, ok := vocab[tok]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSpecial, tok)
		}
		ids[i] = id
	}

	if maxLen <= 0 {
		maxLen = 128
	}

	return &WordPiece{
		vocab:  vocab,
		maxLen: maxLen,
		clsID:  ids[0],
		sepID:  ids[1],
		unkID:  ids[2],
		padID:  ids[3],
	}, nil
}

// MaxLen gibt die feste Sequenzlaenge zurueck.
func (w *WordPiece) MaxLen() int {
	return w.maxLen
}

// Encode tokenisiert einen Text zu IDs und Attention-Mask fester Laenge:
// [CLS] stuecke... [SEP] mit [PAD]-Auffuellung.
func (w *WordPiece) Encode(text string) (ids []int, mask []int) {
	ids = []int{w.clsID}

	for _, word := range basicTokenize(text) {
		ids = append(ids, w.wordpiece(word)...)
	}

	// Platz fuer [SEP] garantieren
	if len(ids) > w.maxLen-1 {
		ids = ids[:w.maxLen-1]
	}
	ids = append(ids, w.sepID)

	mask = make([]int, w.maxLen)
	for i := range ids {
		mask[i] = 1
	}
	for len(ids) < w.maxLen {
		ids = append(ids, w.padID)
	}
	return ids, mask
}

// wordpiece zerlegt ein Wort greedy in die laengsten Vokabular-Stuecke.
// Folgestuecke tragen das "##" Praefix. Ohne Zerlegung: [UNK].
func (w *WordPiece) wordpiece(word string) []int {
	runes := []rune(word)
	if len(runes) > wordpieceMaxChars {
		return []int{w.unkID}
	}

	var pieces []int
	start := 0
	for start < len(runes) {
		end := len(runes)
		found := -1
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := w.vocab[piece]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			return []int{w.unkID}
		}
		pieces = append(pieces, found)
		start = end
	}
	return pieces
}

// basicTokenize trennt an Whitespace und loest Interpunktion als
// Einzel-Tokens heraus. Keine Kleinschreibung (cased Modell).
func basicTokenize(text string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}
