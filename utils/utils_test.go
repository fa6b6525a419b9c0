package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"maria.silva@escola.com": "Maria Silva",
		"JOAO_PEDRO@x.com":       "Joao Pedro",
		"ana-clara+cursos@x.com": "Ana Clara Cursos",
		"semarroba":              "Semarroba",
		"":                       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, DisplayName(in), in)
	}
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "m****@x.com", MaskEmail("maria@x.com"))
	assert.Equal(t, "a@x.com", MaskEmail("a@x.com"))
}
