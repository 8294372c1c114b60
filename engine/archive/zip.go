package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/h2non/filetype"
)

// ErrTooLarge is returned when a ZIP member exceeds the configured size limit
var ErrTooLarge = errors.New("archive member too large")

// Writer builds a ZIP archive in memory, one entry at a time, in call order
type Writer struct {
	buf     bytes.Buffer
	zw      *zip.Writer
	entries []string
	closed  bool
}

// NewWriter creates an empty archive
func NewWriter() *Writer {
	w := &Writer{}
	w.zw = zip.NewWriter(&w.buf)
	return w
}

// Add writes one entry with the given name and content
func (w *Writer) Add(name string, data []byte) error {
	return w.add(name, bytes.NewReader(data))
}

// AddFile copies the file at filePath into the archive as name. The file is
// read completely first, so a failure leaves no entry behind.
func (w *Writer) AddFile(name, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("unable to read %s for archiving: %w", filePath, err)
	}
	return w.add(name, bytes.NewReader(data))
}

func (w *Writer) add(name string, r io.Reader) error {
	if w.closed {
		return errors.New("archive already closed")
	}
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	entry, err := w.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("unable to create archive entry %s: %w", name, err)
	}
	if _, err := io.Copy(entry, r); err != nil {
		return fmt.Errorf("unable to write archive entry %s: %w", name, err)
	}
	w.entries = append(w.entries, name)
	return nil
}

// Entries lists the entry names written so far
func (w *Writer) Entries() []string {
	return append([]string(nil), w.entries...)
}

// Close finishes the archive and returns its bytes
func (w *Writer) Close() ([]byte, error) {
	if !w.closed {
		w.closed = true
		if err := w.zw.Close(); err != nil {
			return nil, fmt.Errorf("unable to finish archive: %w", err)
		}
	}
	return w.buf.Bytes(), nil
}

// Member is one file extracted from an uploaded archive. Err is set, and
// Data empty, when that member alone could not be read.
type Member struct {
	Name string
	Data []byte
	Err  error
}

// IsZip reports whether data looks like a ZIP container
func IsZip(data []byte) bool {
	return filetype.Is(data, "zip")
}

// Expand returns the regular-file members of a ZIP upload in archive order.
// Uploads that are not ZIP containers come back as a single member. Members
// larger than maxMemberBytes (when positive) carry ErrTooLarge; the other
// members are still returned.
func Expand(name string, data []byte, maxMemberBytes int64) ([]Member, error) {
	if !IsZip(data) || strings.EqualFold(path.Ext(name), ".pdf") {
		return []Member{{Name: name, Data: data}}, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to read archive %s: %w", name, err)
	}

	var members []Member
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if maxMemberBytes > 0 && file.UncompressedSize64 > uint64(maxMemberBytes) {
			members = append(members, Member{
				Name: file.Name,
				Err:  fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, file.Name, file.UncompressedSize64),
			})
			continue
		}

		content, err := readMember(file, maxMemberBytes)
		members = append(members, Member{Name: file.Name, Data: content, Err: err})
	}
	return members, nil
}

func readMember(file *zip.File, maxMemberBytes int64) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open archive member %s: %w", file.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if maxMemberBytes > 0 {
		// the header size is not trusted
		r = io.LimitReader(rc, maxMemberBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read archive member %s: %w", file.Name, err)
	}
	if maxMemberBytes > 0 && int64(len(content)) > maxMemberBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, file.Name, maxMemberBytes)
	}
	return content, nil
}
