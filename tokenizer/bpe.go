// MODUL: bpe
// ZWECK: Byte-Level BPE Tokenizer fuer CLIP Text-Tuerme
// INPUT: Hypothesen-Strings, Vokabular, Merge-Regeln
// OUTPUT: Token-ID-Sequenzen mit fester Kontextlaenge
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: github.com/dlclark/regexp2, github.com/emirpasic/gods/v2
// HINWEISE: CLIP nutzt lowercase-Cleanup und ein "</w>" Wortende-Suffix

package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/emirpasic/gods/v2/trees/binaryheap"
)

// ============================================================================
// Konstanten
// ============================================================================

const (
	// ContextLength ist die feste Token-Anzahl der CLIP Text-Tuerme.
	ContextLength = 77

	// StartToken und EndToken rahmen jede Sequenz ein.
	StartToken = "<|startoftext|>"
	EndToken   = "<|endoftext|>"

	// wordEnd markiert das letzte Symbol eines Worts im BPE-Vokabular.
	wordEnd = "</w>"
)

// clipPattern ist das Pretokenisierungs-Muster des CLIP-Tokenizers.
var clipPattern = regexp2.MustCompile(
	`<\|startoftext\|>|<\|endoftext\|>|'s|'t|'re|'ve|'m|'ll|'d|[\p{L}]+|[\p{N}]|[^\s\p{L}\p{N}]+`,
	regexp2.IgnoreCase,
)

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	ErrUnknownToken = errors.New("tokenizer: token not in vocabulary")
	ErrEmptyVocab   = errors.New("tokenizer: empty vocabulary")
)

// ============================================================================
// Tokenizer
// ============================================================================

// Tokenizer implementiert das Byte-Level BPE der CLIP-Modelle.
type Tokenizer struct {
	vocab      map[string]int
	mergeRanks map[[2]string]int
	byteToRune map[byte]rune
	startID    int
	endID      int
	cache      map[string][]string
}

// New erstellt einen Tokenizer aus Vokabular und Merge-Liste.
// Merges sind Zeilen der Form "left right" in Rang-Reihenfolge.
func New(vocab map[string]int, merges []string) (*Tokenizer, error) {
	if len(vocab) == 0 {
		return nil, ErrEmptyVocab
	}

	startID, ok := vocab[StartToken]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, StartToken)
	}
	endID, ok := vocab[EndToken]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, EndToken)
	}

	ranks := make(map[[2]string]int, len(merges))
	for rank, line := range merges {
		parts := strings.Fields(line)
		if len(parts) != 2 {
			continue
		}
		ranks[[2]string{parts[0], parts[1]}] = rank
	}

	return &Tokenizer{
		vocab:      vocab,
		mergeRanks: ranks,
		byteToRune: bytesToUnicode(),
		startID:    startID,
		endID:      endID,
		cache:      make(map[string][]string),
	}, nil
}

// ============================================================================
// Encode - Text zu Token-IDs
// ============================================================================

// Encode tokenisiert einen Text zu genau ContextLength Token-IDs:
// <|startoftext|> ... <|endoftext|> mit Padding (endID) bzw. Truncation.
func (t *Tokenizer) Encode(text string) ([]int, error) {
	ids := []int{t.startID}

	for _, word := range t.pretokenize(cleanText(text)) {
		for _, piece := range t.bpe(word) {
			id, ok := t.vocab[piece]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownToken, piece)
			}
			ids = append(ids, id)
		}
	}

	// Platz fuer das End-Token garantieren
	if len(ids) > ContextLength-1 {
		ids = ids[:ContextLength-1]
	}
	ids = append(ids, t.endID)

	for len(ids) < ContextLength {
		ids = append(ids, t.endID)
	}
	return ids, nil
}

// EncodeBatch tokenisiert mehrere Texte in Eingabe-Reihenfolge.
func (t *Tokenizer) EncodeBatch(texts []string) ([][]int, error) {
	out := make([][]int, len(texts))
	for i, text := range texts {
		ids, err := t.Encode(text)
		if err != nil {
			return nil, err
		}
		out[i] = ids
	}
	return out, nil
}

// ============================================================================
// Pretokenisierung
// ============================================================================

// cleanText normalisiert Whitespace und erzwingt Kleinschreibung,
// wie es der CLIP-Tokenizer vor dem BPE tut.
func cleanText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// pretokenize zerlegt Text mit dem CLIP-Muster in Roh-Tokens.
func (t *Tokenizer) pretokenize(text string) []string {
	var words []string
	m, _ := clipPattern.FindStringMatch(text)
	for m != nil {
		words = append(words, m.String())
		m, _ = clipPattern.FindNextMatch(m)
	}
	return words
}

// ============================================================================
// BPE-Merge
// ============================================================================

// mergeCandidate ist ein Eintrag der Merge-Warteschlange.
type mergeCandidate struct {
	rank int
	pair [2]string
}

// bpe zerlegt ein Roh-Token in BPE-Teilstuecke.
// Das letzte Symbol traegt das "</w>" Suffix.
func (t *Tokenizer) bpe(word string) []string {
	if cached, ok := t.cache[word]; ok {
		return cached
	}

	// Bytes zu Unicode-Symbolen, letztes Symbol mit Wortende-Marker
	var symbols []string
	for _, b := range []byte(word) {
		symbols = append(symbols, string(t.byteToRune[b]))
	}
	if len(symbols) == 0 {
		return nil
	}
	symbols[len(symbols)-1] += wordEnd

	// Warteschlange nach Merge-Rang, niedrigster Rang zuerst
	queue := binaryheap.NewWith[mergeCandidate](func(a, b mergeCandidate) int {
		return a.rank - b.rank
	})
	pushPairs := func(syms []string) {
		for i := 0; i+1 < len(syms); i++ {
			pair := [2]string{syms[i], syms[i+1]}
			if rank, ok := t.mergeRanks[pair]; ok {
				queue.Push(mergeCandidate{rank: rank, pair: pair})
			}
		}
	}
	pushPairs(symbols)

	for {
		cand, ok := queue.Pop()
		if !ok {
			break
		}

		// Veraltete Eintraege verwerfen: Paar muss noch vorkommen
		if !containsPair(symbols, cand.pair) {
			continue
		}

		symbols = mergeAll(symbols, cand.pair)
		pushPairs(symbols)

		if len(symbols) == 1 {
			break
		}
	}

	t.cache[word] = symbols
	return symbols
}

// containsPair prueft ob das Paar noch benachbart vorkommt.
func containsPair(symbols []string, pair [2]string) bool {
	for i := 0; i+1 < len(symbols); i++ {
		if symbols[i] == pair[0] && symbols[i+1] == pair[1] {
			return true
		}
	}
	return false
}

// mergeAll verschmilzt alle Vorkommen des Paars von links nach rechts.
func mergeAll(symbols []string, pair [2]string) []string {
	out := make([]string, 0, len(symbols))
	for i := 0; i < len(symbols); i++ {
		if i+1 < len(symbols) && symbols[i] == pair[0] && symbols[i+1] == pair[1] {
			out = append(out, pair[0]+pair[1])
			i++
			continue
		}
		out = append(out, symbols[i])
	}
	return out
}

// ============================================================================
// Byte-zu-Unicode Tabelle
// ============================================================================

// bytesToUnicode baut die GPT-2/CLIP Byte-zu-Unicode-Tabelle auf:
// druckbare Bytes bleiben sich selbst zugeordnet, der Rest wird in den
// Bereich ab U+0100 verschoben, damit jedes Byte ein sichtbares Zeichen hat.
func bytesToUnicode() map[byte]rune {
	table := make(map[byte]rune, 256)

	printable := func(b int) bool {
		return (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
	}

	n := 0
	for b := 0; b < 256; b++ {
		if printable(b) {
			table[byte(b)] = rune(b)
		} else {
			table[byte(b)] = rune(256 + n)
			n++
		}
	}
	return table
}
