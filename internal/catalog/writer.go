package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meur/cardforge/internal/models"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	TitlesFile     = "selected_anime/all_cards.json"
	CharactersFile = "selected_character/all_cards.json"
)

// AugmentTitle returns the title's source record with rarity, cost and
// points set. Titles without a source are encoded from the model.
func AugmentTitle(t models.Title) ([]byte, error) {
	if len(t.Source) == 0 {
		return json.Marshal(t)
	}
	return setFields(t.Source, []field{
		{"rarity", t.Rarity.String()},
		{"cost", t.Cost},
		{"points", t.Points},
	})
}

// AugmentCharacter returns the character's source record with rarity and
// comprehensive_popularity set.
func AugmentCharacter(c models.Character) ([]byte, error) {
	if len(c.Source) == 0 {
		return json.Marshal(c)
	}
	return setFields(c.Source, []field{
		{"rarity", c.Rarity.String()},
		{"comprehensive_popularity", c.ComprehensivePopularity},
	})
}

type field struct {
	path  string
	value any
}

func setFields(raw []byte, fields []field) ([]byte, error) {
	out := append([]byte(nil), raw...)
	for _, f := range fields {
		var err error
		if out, err = sjson.SetBytes(out, f.path, f.value); err != nil {
			return nil, fmt.Errorf("set %s: %w", f.path, err)
		}
	}
	return out, nil
}

// WriteTitles writes the curated titles under dir.
func WriteTitles(dir string, titles []models.Title) (string, error) {
	records := make([][]byte, len(titles))
	for i, t := range titles {
		b, err := AugmentTitle(t)
		if err != nil {
			return "", fmt.Errorf("title %d: %w", t.ID, err)
		}
		records[i] = b
	}
	return writeArray(filepath.Join(dir, TitlesFile), records)
}

// WriteCharacters writes the curated characters under dir.
func WriteCharacters(dir string, chars []models.Character) (string, error) {
	records := make([][]byte, len(chars))
	for i, c := range chars {
		b, err := AugmentCharacter(c)
		if err != nil {
			return "", fmt.Errorf("character %d: %w", c.ID, err)
		}
		records[i] = b
	}
	return writeArray(filepath.Join(dir, CharactersFile), records)
}

func writeArray(path string, records [][]byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(r)
	}
	buf.WriteByte(']')

	if err := os.WriteFile(path, pretty.Pretty(buf.Bytes()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
