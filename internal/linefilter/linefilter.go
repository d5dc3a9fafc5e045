package linefilter

import (
	"bufio"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wp-ansible/purelog/internal/filereader"
	"github.com/wp-ansible/purelog/internal/filesystem"
	"github.com/wp-ansible/purelog/internal/filterconfig"
	"github.com/wp-ansible/purelog/internal/filtering"
	"github.com/wp-ansible/purelog/internal/utils"
)

// newFileMode is applied to atomically written destinations that did not exist before.
const newFileMode fs.FileMode = 0o644

var (
	ErrFilterMustBeSet = errors.New("line filter must be set")
	ErrConfigMustBeSet = errors.New("configuration must be set")
)

// LineCounts is the tally of one filter run. Read == Kept + Dropped.
type LineCounts struct {
	Read    int
	Kept    int
	Dropped int
}

// Filter copies every line of r that f includes to w. Surviving lines keep
// their source order and their exact bytes, terminators included.
func Filter(r io.Reader, w io.Writer, f filtering.ILineFilter) (LineCounts, error) {
	var counts LineCounts
	if f == nil {
		return counts, ErrFilterMustBeSet
	}

	lines := filereader.NewLineReader(r)
	out := bufio.NewWriter(w)
	for {
		line, err := lines.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return counts, errors.Wrapf(err, "read line %d", counts.Read+1)
		}
		counts.Read++
		if !f.IsLineIncluded(line) {
			counts.Dropped++
			continue
		}
		if _, err := out.Write(line); err != nil {
			return counts, errors.Wrapf(err, "write line %d", counts.Read)
		}
		counts.Kept++
	}
	if err := out.Flush(); err != nil {
		return counts, errors.Wrap(err, "flush output")
	}
	return counts, nil
}

// LineFilter runs Filter between two files.
type LineFilter struct {
	fs     filesystem.Filesystem
	logger *zap.Logger
}

// NewLineFilter creates a LineFilter. A nil fsys means the host filesystem,
// a nil logger discards diagnostics.
func NewLineFilter(fsys filesystem.Filesystem, logger *zap.Logger) *LineFilter {
	if fsys == nil {
		fsys = filesystem.DefaultFS{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineFilter{fs: fsys, logger: logger}
}

// FilterFile removes every line containing cfg.Marker() from cfg.SourcePath()
// and writes the rest to cfg.DestPath(). Both files are closed before it
// returns, whether the run succeeded or not.
//
// Without cfg.Atomic() the destination is truncated up front and may be left
// partially written on failure. With it, output goes to a temporary file in
// the destination directory that replaces the destination only on success.
func (lf *LineFilter) FilterFile(cfg filterconfig.IFilterConfiguration) (counts LineCounts, err error) {
	if cfg == nil {
		return counts, ErrConfigMustBeSet
	}
	enc, err := utils.LookupEncoding(cfg.Encoding())
	if err != nil {
		return counts, err
	}
	f, err := filtering.NewMarkerFilter(cfg.Marker(), enc)
	if err != nil {
		return counts, errors.Wrap(err, "create marker filter")
	}

	source, dest := cfg.SourcePath(), cfg.DestPath()
	lf.logger.Debug("filtering log",
		zap.String("source", source),
		zap.String("dest", dest),
		zap.String("marker", cfg.Marker()),
		zap.Bool("atomic", cfg.Atomic()),
	)

	src, err := lf.fs.Open(source)
	if err != nil {
		return counts, errors.Wrapf(err, "open source %s", source)
	}
	defer src.Close()

	if cfg.Atomic() {
		counts, err = lf.filterAtomic(src, dest, f)
	} else {
		counts, err = lf.filterInPlace(src, dest, f)
	}
	if err != nil {
		return counts, err
	}

	lf.logger.Debug("filter complete",
		zap.String("dest", dest),
		zap.Int("read", counts.Read),
		zap.Int("kept", counts.Kept),
		zap.Int("dropped", counts.Dropped),
	)
	if counts.Dropped == 0 {
		lf.logger.Debug("no line contained the marker", zap.String("marker", f.Marker()))
	}
	return counts, nil
}

func (lf *LineFilter) filterInPlace(src io.Reader, dest string, f filtering.ILineFilter) (counts LineCounts, err error) {
	dst, err := lf.fs.Create(dest)
	if err != nil {
		return counts, errors.Wrapf(err, "create dest %s", dest)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close dest %s", dest)
		}
	}()

	counts, err = Filter(src, dst, f)
	if err != nil {
		return counts, errors.Wrapf(err, "filter into %s", dest)
	}
	return counts, nil
}

func (lf *LineFilter) filterAtomic(src io.Reader, dest string, f filtering.ILineFilter) (LineCounts, error) {
	mode := newFileMode
	if info, err := lf.fs.Stat(dest); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := lf.fs.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return LineCounts{}, errors.Wrapf(err, "create temp file for %s", dest)
	}
	tmpName := tmp.Name()

	counts, err := Filter(src, tmp, f)
	if err != nil {
		err = errors.Wrapf(err, "filter into %s", tmpName)
	}
	if cerr := tmp.Close(); cerr != nil && err == nil {
		err = errors.Wrapf(cerr, "close temp file %s", tmpName)
	}
	if err == nil {
		if cerr := lf.fs.Chmod(tmpName, mode); cerr != nil {
			err = errors.Wrapf(cerr, "chmod temp file %s", tmpName)
		}
	}
	if err == nil {
		if rerr := lf.fs.Rename(tmpName, dest); rerr != nil {
			err = errors.Wrapf(rerr, "replace %s", dest)
		}
	}
	if err != nil {
		if rmErr := lf.fs.Remove(tmpName); rmErr != nil {
			lf.logger.Warn("could not remove temp file", zap.String("path", tmpName), zap.Error(rmErr))
		}
		return counts, err
	}
	return counts, nil
}
