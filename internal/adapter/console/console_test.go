package console

import (
	"ImageAnalyst/internal/ai"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSuccessRendersMarkdown(t *testing.T) {
	var out, errOut bytes.Buffer
	p, err := NewPrinter(&out, &errOut, true, 80)
	require.NoError(t, err)

	ok := p.Print(ai.Success("# Findings\n\nA blank white square."))

	assert.True(t, ok)
	assert.Contains(t, out.String(), "Findings")
	assert.Contains(t, out.String(), "A blank white square.")
	assert.Empty(t, errOut.String())
}

func TestPrintFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	p, err := NewPrinter(&out, &errOut, true, 80)
	require.NoError(t, err)

	ok := p.Print(ai.Failure(ai.KindCredential, "The API key was rejected"))

	assert.False(t, ok)
	assert.Empty(t, out.String())
	assert.Equal(t, "An error occurred (CredentialError): The API key was rejected\n", errOut.String())
}
