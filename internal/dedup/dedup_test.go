package dedup

import (
	"errors"
	"fmt"
	"testing"
)

// TestHash tests the content fingerprint function
func TestHash(t *testing.T) {
	t.Run("deterministic for equal content", func(t *testing.T) {
		a := Hash([]byte("alpha data"))
		b := Hash([]byte("alpha data"))
		if a != b {
			t.Errorf("Expected equal fingerprints, got %s and %s", a, b)
		}
	})

	t.Run("distinct for distinct content", func(t *testing.T) {
		seen := make(map[Fingerprint]string)
		for i := 0; i < 100; i++ {
			content := fmt.Sprintf("content_%d", i)
			fp := Hash([]byte(content))
			if prev, ok := seen[fp]; ok {
				t.Fatalf("Fingerprint collision between %q and %q", prev, content)
			}
			seen[fp] = content
		}
	})

	t.Run("fingerprint is 64 hex characters", func(t *testing.T) {
		fp := Hash([]byte("hello world"))
		if len(fp) != 64 {
			t.Errorf("Expected 64 characters, got %d", len(fp))
		}
	})

	t.Run("empty content is hashable", func(t *testing.T) {
		fp := Hash(nil)
		if len(fp) != 64 {
			t.Errorf("Expected 64 characters for empty content, got %d", len(fp))
		}
	})

	t.Run("short form", func(t *testing.T) {
		fp := Hash([]byte("alpha data"))
		if len(fp.Short()) != 8 {
			t.Errorf("Expected 8-character short form, got %q", fp.Short())
		}
	})
}

// TestIndex tests deduplication identity tracking
func TestIndex(t *testing.T) {
	t.Run("new index is empty", func(t *testing.T) {
		ix := NewIndex()
		if ix.OriginalCount() != 0 || ix.UniqueCount() != 0 {
			t.Errorf("Expected empty index, got %d original / %d unique",
				ix.OriginalCount(), ix.UniqueCount())
		}
	})

	t.Run("duplicate content maps to one block", func(t *testing.T) {
		ix := NewIndex()

		fpA, unique, err := ix.Add("file_a.txt", []byte("alpha data"))
		if err != nil {
			t.Fatalf("Failed to add file_a: %v", err)
		}
		if !unique {
			t.Error("Expected first add to be unique")
		}

		fpD, unique, err := ix.Add("file_d.txt", []byte("alpha data"))
		if err != nil {
			t.Fatalf("Failed to add file_d: %v", err)
		}
		if unique {
			t.Error("Expected duplicate content to not be unique")
		}
		if fpA != fpD {
			t.Errorf("Expected identical fingerprints, got %s and %s", fpA, fpD)
		}

		// First label wins as representative
		if got := ix.Label(fpA); got != "file_a.txt" {
			t.Errorf("Expected representative label file_a.txt, got %q", got)
		}

		if ix.OriginalCount() != 2 {
			t.Errorf("Expected 2 original files, got %d", ix.OriginalCount())
		}
		if ix.UniqueCount() != 1 {
			t.Errorf("Expected 1 unique block, got %d", ix.UniqueCount())
		}
	})

	t.Run("eight files collapse to six blocks", func(t *testing.T) {
		ix := NewIndex()
		files := map[string][]byte{
			"file_a.txt": []byte("alpha data"),
			"file_b.txt": []byte("beta data"),
			"file_c.txt": []byte("gamma data"),
			"file_d.txt": []byte("alpha data"),
			"file_e.txt": []byte("delta data"),
			"file_f.txt": []byte("beta data"),
			"file_g.txt": []byte("epsilon data"),
			"file_h.txt": []byte("zeta data"),
		}
		for label, content := range files {
			if _, _, err := ix.Add(label, content); err != nil {
				t.Fatalf("Failed to add %s: %v", label, err)
			}
		}
		if ix.OriginalCount() != 8 {
			t.Errorf("Expected 8 original files, got %d", ix.OriginalCount())
		}
		if ix.UniqueCount() != 6 {
			t.Errorf("Expected 6 unique blocks, got %d", ix.UniqueCount())
		}
	})

	t.Run("collision between distinct contents is fatal", func(t *testing.T) {
		ix := NewIndex()

		// A real SHA-256 collision is unobtainable, so seed the index with a
		// conflicting entry for the fingerprint the next add will compute.
		fp := Hash([]byte("real content"))
		ix.contents[fp] = []byte("other content")
		ix.labels[fp] = "other.txt"

		_, _, err := ix.Add("real.txt", []byte("real content"))
		if !errors.Is(err, ErrHashCollision) {
			t.Errorf("Expected ErrHashCollision, got %v", err)
		}
	})

	t.Run("index copies content on add", func(t *testing.T) {
		ix := NewIndex()
		content := []byte("mutable data")
		fp, _, err := ix.Add("file.txt", content)
		if err != nil {
			t.Fatalf("Failed to add: %v", err)
		}

		// Mutating the caller's slice must not corrupt collision detection
		content[0] = 'X'
		if _, _, err := ix.Add("file2.txt", []byte("mutable data")); err != nil {
			t.Errorf("Re-adding original content flagged as collision: %v", err)
		}
		if ix.Label(fp) != "file.txt" {
			t.Errorf("Representative label changed to %q", ix.Label(fp))
		}
	})
}
