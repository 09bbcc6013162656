package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "a…@e….com",
		"  Bob@Mail.Co.UK ": "b…@m….co.uk",
		"x@y.io":            "x@y.io",
		"":                  "",
		"abc":               "***",
		"not-an-email":      "n…l",
		"@example.com":      "@…m",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}
