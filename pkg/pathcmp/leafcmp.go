package pathcmp

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// textProbeSize is the number of leading bytes inspected to classify a file
// as text or binary.
const textProbeSize = 8 * 1024

// Scanner sizing for line comparison. Lines longer than maxLineSize fail the
// comparison with a scanner error rather than a mismatch.
const (
	initialLineBuffer = 64 * 1024
	maxLineSize       = 16 * 1024 * 1024
)

// isTextFile probes the leading bytes of the file: it is treated as text
// when the probe decodes as UTF-8 and contains no NUL byte. A decode
// failure classifies the file as binary, it is not an error.
func isTextFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, textProbeSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	chunk := buf[:n]

	if bytes.IndexByte(chunk, 0x00) >= 0 {
		return false, nil
	}
	if n < textProbeSize {
		return utf8.Valid(chunk), nil
	}
	// A full probe may end mid-rune; trim up to three trailing bytes before
	// giving up on the chunk as UTF-8.
	for i := 0; i < utf8.UTFMax && len(chunk) > 0; i++ {
		if utf8.Valid(chunk) {
			return true, nil
		}
		chunk = chunk[:len(chunk)-1]
	}
	return false, nil
}

// equalTextFiles compares both files line by line. "\n", "\r\n" and "\r"
// all terminate a line and the terminators themselves are normalized away,
// so only line content and line count participate in the comparison.
// Mismatches carry 1-based line numbers.
func equalTextFiles(expected, actual string) error {
	expectedFile, err := os.Open(expected)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", expected, err)
	}
	defer expectedFile.Close()
	actualFile, err := os.Open(actual)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", actual, err)
	}
	defer actualFile.Close()

	expectedScanner := newLineScanner(expectedFile)
	actualScanner := newLineScanner(actualFile)

	for line := 1; ; line++ {
		expectedOK := expectedScanner.Scan()
		actualOK := actualScanner.Scan()

		switch {
		case expectedOK && actualOK:
			if expectedScanner.Text() != actualScanner.Text() {
				return mismatchf(expected, actual, "%s does not match %s on line %d", actual, expected, line)
			}
		case expectedOK && !actualOK:
			if err := actualScanner.Err(); err != nil {
				return fmt.Errorf("failed to read %s: %w", actual, err)
			}
			return mismatchf(expected, actual, "%s ends on line %d, expected to continue", actual, line)
		case !expectedOK && actualOK:
			if err := expectedScanner.Err(); err != nil {
				return fmt.Errorf("failed to read %s: %w", expected, err)
			}
			return mismatchf(expected, actual, "%s continues past line %d, expected to end", actual, line-1)
		default:
			if err := expectedScanner.Err(); err != nil {
				return fmt.Errorf("failed to read %s: %w", expected, err)
			}
			if err := actualScanner.Err(); err != nil {
				return fmt.Errorf("failed to read %s: %w", actual, err)
			}
			return nil
		}
	}
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, initialLineBuffer), maxLineSize)
	s.Split(scanUniversalLines)
	return s
}

// scanUniversalLines is a bufio.SplitFunc recognizing "\n", "\r\n" and a
// lone "\r" as line terminators. Tokens never include the terminator.
func scanUniversalLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	i := bytes.IndexAny(data, "\r\n")
	if i < 0 {
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
	if data[i] == '\n' {
		return i + 1, data[:i], nil
	}
	// "\r" at the end of the buffer: more data is needed to tell a lone
	// "\r" apart from "\r\n".
	if i+1 >= len(data) {
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if data[i+1] == '\n' {
		return i + 2, data[:i], nil
	}
	return i + 1, data[:i], nil
}

// equalFileHashes compares both files by SHA-256 digest over their full
// byte content.
func equalFileHashes(expected, actual string) error {
	expectedSum, err := fileDigest(expected)
	if err != nil {
		return err
	}
	actualSum, err := fileDigest(actual)
	if err != nil {
		return err
	}
	if expectedSum != actualSum {
		return mismatchf(expected, actual, "hash of %s does not match %s", actual, expected)
	}
	return nil
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
