package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "quarterly report", SanitizeName("  quarterly report  "))
	assert.Equal(t, "hello", SanitizeName("<script>alert(1)</script>hello"))
	assert.Equal(t, "bold", SanitizeName("<b>bold</b>"))
	assert.Equal(t, "", SanitizeName("<img src=x>"))
	assert.Equal(t, "", SanitizeName("   "))
}
