package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n\t\n  ", ""},
		{"headings kept", "  # Experience\n## Acme Corp", "# Experience\n## Acme Corp"},
		{"bullets kept", "- Led team\n* Shipped API", "- Led team\n* Shipped API"},
		{"pdf bullets normalized", "• Reduced latency by 40%", "- Reduced latency by 40%"},
		{"inner spaces collapsed", "Line    with \t  spaces", "Line with spaces"},
		{"line endings", "a\r\nb\rc", "a\nb\nc"},
		{"blank lines capped", "a\n\n\n\n\nb", "a\n\nb"},
		{"nested bullet indentation", "- Parent\n    - Child", "- Parent\n    - Child"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Reduced latency by 40% at Acme Corp (2019–2021)\n\n\n  - Go   and  PostgreSQL"
	assert.Equal(t, CleanText(input), CleanText(input))
	assert.Contains(t, CleanText(input), "Reduced latency by 40% at Acme Corp (2019–2021)")
}

func TestExtractResumeText_PlainText(t *testing.T) {
	text, err := ExtractResumeText("resume.txt", strings.NewReader("Jane Doe\n\n\n\nReduced latency by 40% at Acme Corp"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nReduced latency by 40% at Acme Corp", text)
}

func TestExtractResumeText_Markdown(t *testing.T) {
	text, err := ExtractResumeText("RESUME.MD", strings.NewReader("# Jane Doe\n- Go"))
	require.NoError(t, err)
	assert.Equal(t, "# Jane Doe\n- Go", text)
}

func TestExtractResumeText_Unsupported(t *testing.T) {
	_, err := ExtractResumeText("resume.exe", strings.NewReader("MZ"))
	require.Error(t, err)

	var typeErr *UnsupportedTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, ".exe", typeErr.Extension)
}

func TestExtractResumeText_Empty(t *testing.T) {
	_, err := ExtractResumeText("resume.txt", strings.NewReader("  \n\n "))
	assert.ErrorIs(t, err, ErrEmptyResume)
}

func TestExtractResumeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Senior engineer"), 0o644))

	text, err := ExtractResumeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Senior engineer", text)

	_, err = ExtractResumeFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("cv.PDF"))
	assert.True(t, IsSupported("cv.docx"))
	assert.False(t, IsSupported("cv"))
	assert.False(t, IsSupported("cv.png"))
}
