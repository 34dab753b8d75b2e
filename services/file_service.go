package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFilesDirectoryMissing = fmt.Errorf("files directory not found")
	ErrFileNotFound          = fmt.Errorf("file not found")
	ErrNotAFile              = fmt.Errorf("not a regular file")
)

type FileInfo struct {
	Name          string
	Size          int64
	SizeFormatted string
	LastModified  time.Time
	Extension     string
	Mime          string
}

// FileService exposes a single shared directory: a flat listing plus
// individual downloads. Filenames from clients are reduced to their base
// name, so the directory can never be escaped.
type FileService struct {
	directory string
}

func NewFileService(directory string) *FileService {
	return &FileService{directory: directory}
}

// List enumerates the files of the shared directory, skipping
// subdirectories. MIME types are sniffed from content, not guessed from
// the extension.
func (s *FileService) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFilesDirectoryMissing
		}
		return nil, fmt.Errorf("reading files directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}

		mime := "application/octet-stream"
		if detected, err := mimetype.DetectFile(filepath.Join(s.directory, entry.Name())); err == nil {
			mime = detected.String()
		}

		files = append(files, FileInfo{
			Name:          entry.Name(),
			Size:          info.Size(),
			SizeFormatted: FormatFileSize(info.Size()),
			LastModified:  info.ModTime().UTC(),
			Extension:     strings.ToLower(filepath.Ext(entry.Name())),
			Mime:          mime,
		})
	}
	return files, nil
}

// Open returns a readable handle on one shared file for download.
// The caller owns the handle and must close it.
func (s *FileService) Open(filename string) (*os.File, FileInfo, error) {
	sanitized := filepath.Base(filename)
	path := filepath.Join(s.directory, sanitized)

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, FileInfo{}, ErrFileNotFound
		}
		return nil, FileInfo{}, fmt.Errorf("stat %s: %w", sanitized, err)
	}
	if !stat.Mode().IsRegular() {
		return nil, FileInfo{}, ErrNotAFile
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, FileInfo{}, fmt.Errorf("opening %s: %w", sanitized, err)
	}
	return file, FileInfo{
		Name:          sanitized,
		Size:          stat.Size(),
		SizeFormatted: FormatFileSize(stat.Size()),
		LastModified:  stat.ModTime().UTC(),
		Extension:     strings.ToLower(filepath.Ext(sanitized)),
	}, nil
}

// FormatFileSize renders a byte count as a human readable string.
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d Bytes", bytes)
	}
	sizes := []string{"KB", "MB", "GB", "TB"}
	value := float64(bytes)
	i := -1
	for value >= unit && i < len(sizes)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.2f %s", value, sizes[i])
}
