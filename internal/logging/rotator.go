package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileRotator is an io.Writer over a log file that rolls the file over
// once it exceeds Config.MaxSize megabytes. Rotated files are numbered
// viettype.log.1 (newest) to viettype.log.N, optionally gzipped.
type FileRotator struct {
	config *Config
	mu     sync.Mutex
	file   *os.File
	size   int64
}

// NewFileRotator opens (or creates) cfg.FilePath for appending.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	r := &FileRotator{config: cfg}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) open() error {
	f, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file = f
	r.size = info.Size()
	return nil
}

// Write implements io.Writer.
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	limit := r.config.MaxSize * 1024 * 1024
	if limit > 0 && r.size > 0 && r.size+int64(len(p)) > limit {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *FileRotator) backupName(i int) string {
	name := fmt.Sprintf("%s.%d", r.config.FilePath, i)
	if r.config.Compress {
		name += ".gz"
	}
	return name
}

func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close current log: %w", err)
	}
	r.file = nil

	keep := r.config.MaxBackups
	if keep < 1 {
		if err := os.Remove(r.config.FilePath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return r.open()
	}

	os.Remove(r.backupName(keep))
	for i := keep - 1; i >= 1; i-- {
		if err := os.Rename(r.backupName(i), r.backupName(i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if r.config.Compress {
		if err := gzipFile(r.config.FilePath, r.backupName(1)); err != nil {
			return err
		}
		if err := os.Remove(r.config.FilePath); err != nil {
			return err
		}
	} else if err := os.Rename(r.config.FilePath, r.backupName(1)); err != nil {
		return err
	}
	return r.open()
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(out)
	gz.Name = filepath.Base(src)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("compress %s: %w", src, err)
	}
	if err := gz.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("compress %s: %w", src, err)
	}
	return out.Close()
}

// Files lists the current log file followed by existing backups, newest
// first.
func (r *FileRotator) Files() []string {
	files := []string{r.config.FilePath}
	for i := 1; i <= r.config.MaxBackups; i++ {
		if _, err := os.Stat(r.backupName(i)); err == nil {
			files = append(files, r.backupName(i))
		}
	}
	return files
}

// Close closes the underlying file.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
