package chain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCorpus = `i love the sea
the sea is calm today
i love long walks
long walks by the sea are calm
love is all you need
i
love
the
sea
`

func TestNew_EmptyCorpus(t *testing.T) {
	for _, text := range []string{"", "\n\n", "  \n\t\n", `"quoted"`} {
		if _, err := New(text, DefaultOptions()); !errors.Is(err, ErrEmptyCorpus) {
			t.Errorf("New(%q) err = %v, want ErrEmptyCorpus", text, err)
		}
	}
}

func TestNew_SkipsRejectedLines(t *testing.T) {
	m, err := New("good line here\nhe said \"no\"\n(aside)\n", DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.rejoined != "good line here" {
		t.Errorf("rejoined = %q", m.rejoined)
	}
}

func TestMakeSentence_SingleSentenceWithoutOriginalityTest(t *testing.T) {
	opts := DefaultOptions()
	opts.TestOutput = false
	m, err := New("the quick brown fox\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	got, ok, err := m.MakeSentence(nil)
	if err != nil || !ok {
		t.Fatalf("MakeSentence: ok=%v err=%v", ok, err)
	}
	if got != "the quick brown fox" {
		t.Errorf("got %q", got)
	}
}

func TestMakeSentence_SingleSentenceFailsOriginalityTest(t *testing.T) {
	m, err := New("the quick brown fox\n", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got, ok, err := m.MakeSentence(nil); ok || err != nil {
		t.Fatalf("expected no sentence, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestMakeSentence_OutputIsOriginal(t *testing.T) {
	m, err := New(sampleCorpus, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 200; i++ {
		s, ok, err := m.MakeSentence(nil)
		if err != nil {
			t.Fatalf("MakeSentence: %v", err)
		}
		if !ok {
			continue
		}
		words := strings.Fields(s)
		overlap := min(15, int(0.7*float64(len(words))+0.5))
		if overlap+1 <= len(words) {
			for j := 0; j+overlap+1 <= len(words); j++ {
				gram := strings.Join(words[j:j+overlap+1], " ")
				if strings.Contains(m.rejoined, gram) {
					t.Fatalf("sentence %q copies %q from the corpus", s, gram)
				}
			}
		}
	}
}

func TestMakeSentence_Seeded(t *testing.T) {
	opts := DefaultOptions()
	opts.TestOutput = false
	m, err := New(sampleCorpus, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		s, ok, err := m.MakeSentence([]string{Begin, "love"})
		if err != nil || !ok {
			t.Fatalf("MakeSentence: ok=%v err=%v", ok, err)
		}
		if s != "love" && !strings.HasPrefix(s, "love ") {
			t.Fatalf("seeded sentence %q does not start with seed", s)
		}
	}
}

func TestMakeSentence_ShortSeedIsPadded(t *testing.T) {
	opts := DefaultOptions()
	opts.TestOutput = false
	m, _ := New(sampleCorpus, opts)
	s, ok, err := m.MakeSentence([]string{"sea"})
	if err != nil || !ok {
		t.Fatalf("MakeSentence: ok=%v err=%v", ok, err)
	}
	if s != "sea" {
		t.Errorf("got %q, want %q", s, "sea")
	}
}

func TestMakeSentence_UnknownSeed(t *testing.T) {
	m, _ := New(sampleCorpus, DefaultOptions())
	_, ok, err := m.MakeSentence([]string{Begin, "zebra"})
	if ok || !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got ok=%v err=%v", ok, err)
	}
	if _, _, err := m.MakeSentence([]string{Begin, "a", "b"}); err == nil {
		t.Fatal("expected error for oversized start state")
	}
}

func TestMakeSentence_WordBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.TestOutput = false
	opts.MaxWords = 3
	m, _ := New("a b c d e\n", opts)
	if s, ok, _ := m.MakeSentence(nil); ok {
		t.Fatalf("expected sentence over MaxWords to be rejected, got %q", s)
	}

	opts.MaxWords = 0
	opts.MinWords = 6
	m, _ = New("a b c d e\n", opts)
	if s, ok, _ := m.MakeSentence(nil); ok {
		t.Fatalf("expected sentence under MinWords to be rejected, got %q", s)
	}
}

func TestOriginal_OverlapSpansLines(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxOverlapRatio = 1
	opts.MaxOverlapTotal = 1
	m, err := New("a b c\nd e f\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if m.original([]string{"c", "d"}) {
		t.Error("run across a line boundary should count as copied")
	}
	if !m.original([]string{"f", "a"}) {
		t.Error("run absent from the training text should be original")
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.txt")
	os.WriteFile(path, []byte(sampleCorpus), 0o644)

	m, err := CompileFile(path, DefaultOptions())
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	if m.chain.StateSize() != 2 {
		t.Errorf("state size = %d", m.chain.StateSize())
	}

	empty := filepath.Join(dir, "empty.txt")
	os.WriteFile(empty, nil, 0o644)
	if _, err := CompileFile(empty, DefaultOptions()); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
	if _, err := CompileFile(filepath.Join(dir, "missing.txt"), DefaultOptions()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
