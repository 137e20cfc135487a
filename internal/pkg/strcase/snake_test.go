package strcase_test

import (
	"testing"

	"github.com/shandysiswandi/seedauth/internal/pkg/strcase"
	"github.com/stretchr/testify/assert"
)

func TestToLowerSnake(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":              "",
		"Code":          "code",
		"EncryptedSeed": "encrypted_seed",
		"HexSeed":       "hex_seed",
		"HTTPServer":    "http_server",
		"SeedID":        "seed_id",
		"Window2":       "window2",
	}

	for in, want := range tests {
		assert.Equal(t, want, strcase.ToLowerSnake(in), in)
	}
}
