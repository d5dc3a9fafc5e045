package filereader

import (
	"bufio"
	"bytes"
	"io"
	"os"
)

// LineReader yields the lines of a stream one at a time, each with its
// original terminator. It makes a single forward pass and cannot be rewound.
type LineReader struct {
	r   *bufio.Reader
	err error
}

// NewLineReader wraps r for line-by-line reading.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// Next returns the next line including its "\n" (and any preceding "\r").
// A final line without a terminator is returned as-is. After the last line
// Next returns io.EOF; any other error is sticky.
func (lr *LineReader) Next() ([]byte, error) {
	if lr.err != nil {
		return nil, lr.err
	}
	line, err := lr.r.ReadBytes('\n')
	if err != nil {
		lr.err = err
		if err == io.EOF && len(line) > 0 {
			return line, nil
		}
		return nil, err
	}
	return line, nil
}

// CountLinesInFile counts the number of physical lines in a file.
// A trailing line without a terminator is counted.
func CountLinesInFile(filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return CountLines(file)
}

// CountLines counts the lines in r using the same rules as LineReader.
func CountLines(r io.Reader) (int, error) {
	buf := make([]byte, 32*1024)
	count := 0
	last := byte('\n')
	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if last != '\n' {
		count++
	}
	return count, nil
}
