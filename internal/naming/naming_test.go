package naming

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var july28 = time.Date(2025, time.July, 28, 14, 30, 0, 0, time.Local)

func TestDefaultOutputName(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "with_extension", source: "sample_00.txt", want: "sample_00_2025_07_28.txt"},
		{name: "no_extension", source: "README", want: "README_2025_07_28"},
		{name: "multiple_dots", source: "backup.tar.gz", want: "backup.tar_2025_07_28.gz"},
		{name: "with_directory", source: filepath.Join("some", "dir", "script.sql"), want: "script_2025_07_28.sql"},
		{name: "dotfile", source: ".env", want: "_2025_07_28.env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultOutputName(tt.source, Fixed(july28))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultOutputName_NoSource(t *testing.T) {
	_, err := DefaultOutputName("", Fixed(july28))
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDefaultOutputName_SameDayStable(t *testing.T) {
	morning := Fixed(time.Date(2025, time.July, 28, 0, 0, 1, 0, time.Local))
	night := Fixed(time.Date(2025, time.July, 28, 23, 59, 59, 0, time.Local))

	a, err := DefaultOutputName("a.txt", morning)
	require.NoError(t, err)
	b, err := DefaultOutputName("a.txt", night)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDefaultOutputName_DateRollover(t *testing.T) {
	now := july28
	clock := ClockFunc(func() time.Time { return now })

	before, err := DefaultOutputName("a.txt", clock)
	require.NoError(t, err)
	now = now.AddDate(0, 0, 1)
	after, err := DefaultOutputName("a.txt", clock)
	require.NoError(t, err)

	assert.Equal(t, "a_2025_07_28.txt", before)
	assert.Equal(t, "a_2025_07_29.txt", after)
}

func TestSplitExt(t *testing.T) {
	base, ext := SplitExt("a.b.c")
	assert.Equal(t, "a.b", base)
	assert.Equal(t, ".c", ext)

	base, ext = SplitExt("plain")
	assert.Equal(t, "plain", base)
	assert.Empty(t, ext)
}
