package models

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const sniffLen = 3072

// UploadFile is a local file selected for upload. Its content is read only
// when Read is called, so oversized files can be rejected first.
type UploadFile struct {
	Path        string
	FileName    string `validate:"required"`
	ContentType string `validate:"required,mediatype"`
	Size        int64  `validate:"gt=0"`
}

// NewUploadFile inspects the file at path and detects its content type from
// its leading bytes.
func NewUploadFile(path string) (*UploadFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}

	return &UploadFile{
		Path:        path,
		FileName:    filepath.Base(path),
		ContentType: mimetype.Detect(head[:n]).String(),
		Size:        fi.Size(),
	}, nil
}

// Read loads the whole file.
func (u *UploadFile) Read() ([]byte, error) {
	return os.ReadFile(u.Path)
}
