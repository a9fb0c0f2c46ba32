package glyphtrace

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/freetype/truetype"
)

// SeedBank holds pre-rendered seeds for a set of runes of one font, so
// extraction can run without the font file.
type SeedBank struct {
	FontName string
	Size     int
	Seeds    map[rune][]uint32
}

// ComputeSeedBank renders every rune of runes with RenderGlyphSeed.
func ComputeSeedBank(ttf *truetype.Font, fontName string, size int, runes []rune) *SeedBank {
	bank := &SeedBank{
		FontName: fontName,
		Size:     size,
		Seeds:    make(map[rune][]uint32, len(runes)),
	}
	for _, r := range runes {
		bank.Seeds[r] = RenderGlyphSeed(ttf, r, size).Data
	}
	return bank
}

// Seed returns the seed stored for r.
func (b *SeedBank) Seed(r rune) (Vmatrix[uint32], bool) {
	data, ok := b.Seeds[r]
	if !ok {
		return Vmatrix[uint32]{}, false
	}
	m, err := BuildVmatrix(b.Size, data)
	if err != nil {
		return Vmatrix[uint32]{}, false
	}
	return m, true
}

// Runes returns the runes in the bank in ascending order.
func (b *SeedBank) Runes() []rune {
	runes := make([]rune, 0, len(b.Seeds))
	for r := range b.Seeds {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return runes
}

// Save writes the bank as gzip-compressed gob.
func (b *SeedBank) Save(w io.Writer) error {
	gz := gzip.NewWriter(w)
	if err := gob.NewEncoder(gz).Encode(b); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode seed bank: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip: %w", err)
	}
	return nil
}

// SaveFile writes the bank to path.
func (b *SeedBank) SaveFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create seed bank: %w", err)
	}
	defer f.Close()

	if err := b.Save(f); err != nil {
		return err
	}
	return f.Close()
}

// LoadSeedBank reads a bank written by Save.
func LoadSeedBank(r io.Reader) (*SeedBank, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	var bank SeedBank
	if err := gob.NewDecoder(gr).Decode(&bank); err != nil {
		return nil, fmt.Errorf("failed to decode seed bank: %w", err)
	}
	return &bank, nil
}

// LoadSeedBankFile reads a bank from path.
func LoadSeedBankFile(path string) (*SeedBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed bank: %w", err)
	}
	defer f.Close()

	return LoadSeedBank(f)
}
