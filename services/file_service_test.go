package services

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileService_List(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	writeFile(t, dir, "guide.txt", "first aid basics")
	writeFile(t, dir, "flyer.html", "<html><body>hi</body></html>")
	req.NoError(os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	// When listing the shared directory
	files, err := NewFileService(dir).List()

	// Then regular files appear with sniffed types, directories do not
	req.NoError(err)
	req.Len(files, 2)

	byName := make(map[string]FileInfo, len(files))
	for _, file := range files {
		byName[file.Name] = file
	}

	guide := byName["guide.txt"]
	req.Equal(int64(len("first aid basics")), guide.Size)
	req.Equal("16 Bytes", guide.SizeFormatted)
	req.Equal(".txt", guide.Extension)
	req.Contains(guide.Mime, "text/plain")

	req.Contains(byName["flyer.html"].Mime, "text/html")
}

func TestFileService_List_Missing_Directory(t *testing.T) {
	req := require.New(t)

	_, err := NewFileService(filepath.Join(t.TempDir(), "nope")).List()

	req.ErrorIs(err, ErrFilesDirectoryMissing)
}

func TestFileService_Open(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	writeFile(t, dir, "guide.txt", "first aid basics")

	file, info, err := NewFileService(dir).Open("guide.txt")

	req.NoError(err)
	defer file.Close()
	req.Equal("guide.txt", info.Name)
	req.Equal(int64(16), info.Size)

	content, err := io.ReadAll(file)
	req.NoError(err)
	req.Equal("first aid basics", string(content))
}

func TestFileService_Open_Strips_Path_Traversal(t *testing.T) {
	req := require.New(t)
	parent := t.TempDir()
	dir := filepath.Join(parent, "shared")
	req.NoError(os.Mkdir(dir, 0o755))
	writeFile(t, parent, "secret.txt", "not shared")
	writeFile(t, dir, "secret.txt", "shared copy")

	// When the filename tries to climb out of the directory
	file, info, err := NewFileService(dir).Open("../secret.txt")

	// Then only the base name is honoured
	req.NoError(err)
	defer file.Close()
	req.Equal("secret.txt", info.Name)

	content, err := io.ReadAll(file)
	req.NoError(err)
	req.Equal("shared copy", string(content))
}

func TestFileService_Open_Not_Found(t *testing.T) {
	req := require.New(t)

	_, _, err := NewFileService(t.TempDir()).Open("missing.pdf")

	req.ErrorIs(err, ErrFileNotFound)
}

func TestFormatFileSize(t *testing.T) {
	req := require.New(t)

	req.Equal("512 Bytes", FormatFileSize(512))
	req.Equal("1.00 KB", FormatFileSize(1024))
	req.Equal("1.50 KB", FormatFileSize(1536))
	req.Equal("2.00 MB", FormatFileSize(2*1024*1024))
	req.Equal("3.00 GB", FormatFileSize(3*1024*1024*1024))
}
