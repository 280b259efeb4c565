// MODUL: bpe_test
// ZWECK: Tests fuer BPE-Merges, Cleanup und Kontextlaenge
// INPUT: Handgebautes Mini-Vokabular
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing, github.com/google/go-cmp
// HINWEISE: Merges werden in Rang-Reihenfolge angewendet

package tokenizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testVocab baut ein Mini-Vokabular mit Merges fuer "dog".
func testVocab() (map[string]int, []string) {
	vocab := map[string]int{
		StartToken: 0,
		EndToken:   1,
		"d":        2,
		"o":        3,
		"g</w>":    4,
		"og</w>":   5,
		"dog</w>":  6,
		"c":        7,
		"a":        8,
		"t</w>":    9,
		"a</w>":    10,
	}
	merges := []string{
		"o g</w>",
		"d og</w>",
	}
	return vocab, merges
}

func mustTokenizer(t *testing.T) *Tokenizer {
	t.Helper()
	vocab, merges := testVocab()
	tok, err := New(vocab, merges)
	if err != nil {
		t.Fatalf("New fehlgeschlagen: %v", err)
	}
	return tok
}

func TestBPEMergesInRankOrder(t *testing.T) {
	tok := mustTokenizer(t)

	got := tok.bpe("dog")
	want := []string{"dog</w>"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bpe(dog) Differenz (-want +got):\n%s", diff)
	}
}

func TestBPEWithoutMerges(t *testing.T) {
	tok := mustTokenizer(t)

	// "cat" hat keine Merges: bleibt in Einzelsymbole zerlegt
	got := tok.bpe("cat")
	want := []string{"c", "a", "t</w>"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bpe(cat) Differenz (-want +got):\n%s", diff)
	}
}

func TestEncodeShape(t *testing.T) {
	tok := mustTokenizer(t)

	ids, err := tok.Encode("dog")
	if err != nil {
		t.Fatalf("Encode fehlgeschlagen: %v", err)
	}
	if len(ids) != ContextLength {
		t.Fatalf("Laenge = %d, erwartet %d", len(ids), ContextLength)
	}
	if ids[0] != 0 {
		t.Errorf("ids[0] = %d, erwartet Start-Token 0", ids[0])
	}
	if ids[1] != 6 {
		t.Errorf("ids[1] = %d, erwartet dog</w> (6)", ids[1])
	}
	// Rest ist End-Token-Padding
	for i := 2; i < ContextLength; i++ {
		if ids[i] != 1 {
			t.Fatalf("ids[%d] = %d, erwartet End-Token 1", i, ids[i])
		}
	}
}

func TestEncodeCleansText(t *testing.T) {
	tok := mustTokenizer(t)

	a, err := tok.Encode("  DOG  ")
	if err != nil {
		t.Fatal(err)
	}
	b, err := tok.Encode("dog")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Cleanup nicht angewendet (-a +b):\n%s", diff)
	}
}

func TestEncodeTruncation(t *testing.T) {
	tok := mustTokenizer(t)

	// 100x "a" ueberschreitet die Kontextlaenge
	long := ""
	for i := 0; i < 100; i++ {
		long += "a "
	}
	ids, err := tok.Encode(long)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != ContextLength {
		t.Fatalf("Laenge = %d, erwartet %d", len(ids), ContextLength)
	}
	if ids[ContextLength-1] != 1 {
		t.Errorf("letztes Token = %d, erwartet End-Token", ids[ContextLength-1])
	}
}

func TestEncodeBatchPreservesOrder(t *testing.T) {
	tok := mustTokenizer(t)

	batch, err := tok.EncodeBatch([]string{"dog", "cat"})
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 2 {
		t.Fatalf("Batch-Groesse = %d", len(batch))
	}
	if batch[0][1] != 6 {
		t.Errorf("erster Eintrag ist nicht dog: %d", batch[0][1])
	}
	if batch[1][1] != 7 {
		t.Errorf("zweiter Eintrag ist nicht cat: %d", batch[1][1])
	}
}

func TestEncodeUnknownToken(t *testing.T) {
	tok := mustTokenizer(t)

	if _, err := tok.Encode("xyz"); err == nil {
		t.Error("unbekanntes Token wurde akzeptiert")
	}
}

func TestNewRequiresSpecialTokens(t *testing.T) {
	if _, err := New(map[string]int{"a": 0}, nil); err == nil {
		t.Error("Vokabular ohne Spezial-Tokens akzeptiert")
	}
	if _, err := New(nil, nil); err == nil {
		t.Error("leeres Vokabular akzeptiert")
	}
}

func TestBytesToUnicodeCoversAllBytes(t *testing.T) {
	table := bytesToUnicode()
	if len(table) != 256 {
		t.Fatalf("Tabelle hat %d Eintraege, erwartet 256", len(table))
	}
	seen := make(map[rune]bool)
	for _, r := range table {
		if seen[r] {
			t.Fatalf("Rune %q doppelt zugeordnet", r)
		}
		seen[r] = true
	}
}
