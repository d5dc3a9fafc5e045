package filterconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wp-ansible/purelog/internal/filesystem"
	"github.com/wp-ansible/purelog/internal/logging"
	"github.com/wp-ansible/purelog/internal/utils"
)

func TestDefaultReproducesOriginalRun(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "error.log", cfg.SourcePath())
	assert.Equal(t, "error_cleaned.log", cfg.DestPath())
	assert.Equal(t, "WP_MEMORY_LIMIT", cfg.Marker())
	assert.False(t, cfg.Atomic())
	assert.Empty(t, cfg.Encoding())
	assert.Equal(t, logging.Info, cfg.VerbosityLevel())
	assert.False(t, cfg.ShowCounts())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want *FilterConfiguration
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			want: Default(),
		},
		{
			name: "comment only keeps defaults",
			yaml: "# nothing to see\n",
			want: Default(),
		},
		{
			name: "all options",
			yaml: `source: logs/salamander/error.log
dest: logs/salamander/error_cleaned.log
marker: "PHP Deprecated"
atomic: true
encoding: latin1
verbosity: verbose
show_counts: true
`,
			want: &FilterConfiguration{
				SrcPath:       "logs/salamander/error.log",
				DstPath:       "logs/salamander/error_cleaned.log",
				MarkerText:    "PHP Deprecated",
				AtomicWrite:   true,
				EncodingLabel: "latin1",
				VLevel:        logging.Verbose,
				CountsEnabled: true,
			},
		},
		{
			name: "explicit empty marker is honoured",
			yaml: "marker: \"\"\n",
			want: NewFilterConfiguration(DefaultSource, DefaultDest, "", false, "", logging.Info, false),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("markers: [a, b]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markers")
}

func TestParseRejectsBadVerbosity(t *testing.T) {
	_, err := Parse([]byte("verbosity: loud\n"))
	assert.ErrorIs(t, err, logging.ErrInvalidVerbosity)
}

func TestLoadFileResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "purelog.yaml")
	abs := filepath.Join(dir, "elsewhere", "out.log")
	content := "source: error.log\ndest: " + abs + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "error.log"), cfg.SourcePath())
	assert.Equal(t, abs, cfg.DestPath())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "error.log")
	require.NoError(t, os.WriteFile(src, []byte("alpha\n"), 0o644))
	dst := filepath.Join(dir, "error_cleaned.log")

	tests := []struct {
		name    string
		cfg     *FilterConfiguration
		wantErr error
	}{
		{
			name: "valid",
			cfg:  NewFilterConfiguration(src, dst, DefaultMarker, false, "", logging.Info, false),
		},
		{
			name: "empty marker is valid",
			cfg:  NewFilterConfiguration(src, dst, "", false, "", logging.Info, false),
		},
		{
			name:    "missing source",
			cfg:     NewFilterConfiguration("", dst, DefaultMarker, false, "", logging.Info, false),
			wantErr: ErrSourceMustBeSet,
		},
		{
			name:    "missing dest",
			cfg:     NewFilterConfiguration(src, "", DefaultMarker, false, "", logging.Info, false),
			wantErr: ErrDestMustBeSet,
		},
		{
			name:    "same file",
			cfg:     NewFilterConfiguration(src, filepath.Join(dir, ".", "error.log"), DefaultMarker, false, "", logging.Info, false),
			wantErr: ErrSameFile,
		},
		{
			name:    "unsupported encoding",
			cfg:     NewFilterConfiguration(src, dst, DefaultMarker, false, "utf-16le", logging.Info, false),
			wantErr: utils.ErrUnsupportedEncoding,
		},
		{
			name:    "out of range verbosity",
			cfg:     NewFilterConfiguration(src, dst, DefaultMarker, false, "", logging.VerbosityLevel(9), false),
			wantErr: logging.ErrInvalidVerbosity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(filesystem.DefaultFS{})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
