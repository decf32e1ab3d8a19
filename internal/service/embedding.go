package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/menuwise/backend/internal/models"
)

// GenerateEmbedding returns a deterministic embedding for text: character
// trigrams of the normalized text hashed into models.EmbeddingDimensions
// buckets, then L2 normalized. Similar dish names land close together.
func GenerateEmbedding(text string) pgvector.Vector {
	vec := make([]float32, models.EmbeddingDimensions)

	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	runes := []rune(strings.Join(strings.Fields(b.String()), " "))
	if len(runes) == 0 {
		return pgvector.NewVector(vec)
	}
	runes = append(append([]rune{' '}, runes...), ' ')

	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		_, _ = h.Write([]byte(string(runes[i : i+3])))
		vec[h.Sum32()%uint32(models.EmbeddingDimensions)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}

func dishEmbedding(name, description string) *pgvector.Vector {
	v := GenerateEmbedding(strings.TrimSpace(name + " " + description))
	return &v
}
