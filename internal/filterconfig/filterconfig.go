package filterconfig

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wp-ansible/purelog/internal/filesystem"
	"github.com/wp-ansible/purelog/internal/logging"
	"github.com/wp-ansible/purelog/internal/utils"
)

const (
	// DefaultSource, DefaultDest and DefaultMarker reproduce the salamander
	// error.log clean-up when no configuration is given.
	DefaultSource = "error.log"
	DefaultDest   = "error_cleaned.log"
	DefaultMarker = "WP_MEMORY_LIMIT"
)

var (
	ErrSourceMustBeSet = errors.New("source must be set")
	ErrDestMustBeSet   = errors.New("dest must be set")
	ErrSameFile        = errors.New("source and dest refer to the same file")
)

// IFilterConfiguration is what the line filter needs to know about a run.
type IFilterConfiguration interface {
	SourcePath() string
	DestPath() string
	Marker() string
	Atomic() bool
	Encoding() string
	VerbosityLevel() logging.VerbosityLevel
	ShowCounts() bool
}

// FilterConfiguration is a concrete implementation of IFilterConfiguration.
type FilterConfiguration struct {
	SrcPath       string
	DstPath       string
	MarkerText    string
	AtomicWrite   bool
	EncodingLabel string
	VLevel        logging.VerbosityLevel
	CountsEnabled bool
}

func (fc *FilterConfiguration) SourcePath() string                     { return fc.SrcPath }
func (fc *FilterConfiguration) DestPath() string                       { return fc.DstPath }
func (fc *FilterConfiguration) Marker() string                         { return fc.MarkerText }
func (fc *FilterConfiguration) Atomic() bool                           { return fc.AtomicWrite }
func (fc *FilterConfiguration) Encoding() string                       { return fc.EncodingLabel }
func (fc *FilterConfiguration) VerbosityLevel() logging.VerbosityLevel { return fc.VLevel }
func (fc *FilterConfiguration) ShowCounts() bool                       { return fc.CountsEnabled }

// NewFilterConfiguration is a constructor for FilterConfiguration.
// An empty marker is kept as-is: it is legal and removes every line.
func NewFilterConfiguration(
	source string,
	dest string,
	marker string,
	atomic bool,
	encodingLabel string,
	verbosity logging.VerbosityLevel,
	showCounts bool,
) *FilterConfiguration {
	return &FilterConfiguration{
		SrcPath:       source,
		DstPath:       dest,
		MarkerText:    marker,
		AtomicWrite:   atomic,
		EncodingLabel: encodingLabel,
		VLevel:        verbosity,
		CountsEnabled: showCounts,
	}
}

// Default returns the configuration used when neither a file nor flags are given.
func Default() *FilterConfiguration {
	return NewFilterConfiguration(DefaultSource, DefaultDest, DefaultMarker, false, "", logging.Info, false)
}

// fileConfig mirrors the YAML document. Pointers distinguish "absent" from
// zero values so that e.g. `marker: ""` is honoured.
type fileConfig struct {
	Source     *string `yaml:"source"`
	Dest       *string `yaml:"dest"`
	Marker     *string `yaml:"marker"`
	Atomic     *bool   `yaml:"atomic"`
	Encoding   *string `yaml:"encoding"`
	Verbosity  *string `yaml:"verbosity"`
	ShowCounts *bool   `yaml:"show_counts"`
}

// LoadFile reads a YAML configuration file on top of Default().
// Relative source and dest paths are resolved against the file's directory.
func LoadFile(path string) (*FilterConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	baseDir := filepath.Dir(path)
	cfg.SrcPath = resolveRelative(baseDir, cfg.SrcPath)
	cfg.DstPath = resolveRelative(baseDir, cfg.DstPath)
	return cfg, nil
}

// Parse decodes a YAML configuration document on top of Default().
// Unknown keys are rejected; an empty document yields the defaults.
func Parse(data []byte) (*FilterConfiguration, error) {
	cfg := Default()

	var raw fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode yaml")
	}

	if raw.Source != nil {
		cfg.SrcPath = *raw.Source
	}
	if raw.Dest != nil {
		cfg.DstPath = *raw.Dest
	}
	if raw.Marker != nil {
		cfg.MarkerText = *raw.Marker
	}
	if raw.Atomic != nil {
		cfg.AtomicWrite = *raw.Atomic
	}
	if raw.Encoding != nil {
		cfg.EncodingLabel = *raw.Encoding
	}
	if raw.ShowCounts != nil {
		cfg.CountsEnabled = *raw.ShowCounts
	}
	if raw.Verbosity != nil {
		level, err := logging.ParseVerbosity(*raw.Verbosity)
		if err != nil {
			return nil, err
		}
		cfg.VLevel = level
	}
	return cfg, nil
}

// Validate checks that the configuration describes a runnable filter.
func (fc *FilterConfiguration) Validate(fsys filesystem.Filesystem) error {
	if fc.SrcPath == "" {
		return ErrSourceMustBeSet
	}
	if fc.DstPath == "" {
		return ErrDestMustBeSet
	}
	if fc.VLevel < logging.Verbose || fc.VLevel > logging.Off {
		return errors.Wrapf(logging.ErrInvalidVerbosity, "level %d", int(fc.VLevel))
	}
	if _, err := utils.LookupEncoding(fc.EncodingLabel); err != nil {
		return err
	}
	same, err := filesystem.SameFile(fsys, fc.SrcPath, fc.DstPath)
	if err != nil {
		return errors.Wrap(err, "compare source and dest")
	}
	if same {
		return errors.Wrapf(ErrSameFile, "%s", fc.SrcPath)
	}
	return nil
}

func resolveRelative(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
