package punch

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
)

// copyFile copies src to dst byte-for-byte, preserving permissions and
// modification time.
func copyFile(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := fsys.Create(dst)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close target: %w", err)
	}

	if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("copy permissions: %w", err)
	}
	if err := fsys.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		return fmt.Errorf("copy modification time: %w", err)
	}
	return nil
}

// copyTextFile copies src to dst line by line, passing every line through
// the text conversion. Unlike copyFile it does not carry over file metadata.
func copyTextFile(fsys afero.Fs, src, dst string, options *TextOptions) error {
	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := fsys.Create(dst)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}

	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(out)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			if _, err := writer.WriteString(options.ConvertedLine(line)); err != nil {
				out.Close()
				return fmt.Errorf("write converted line: %w", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			return fmt.Errorf("read %q: %w", src, readErr)
		}
	}
	if err := writer.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("flush target: %w", err)
	}
	return out.Close()
}
