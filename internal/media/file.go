package media

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
)

const octetStream = "application/octet-stream"

// File is an image received from a client, before it is stored.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// OpenMultipart opens every header as a File. The returned closer releases
// all of them and must be called once the files are no longer needed.
func OpenMultipart(headers []*multipart.FileHeader) ([]File, func(), error) {
	files := make([]File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open %q: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return files, closeAll, nil
}

// Validate enforces the size and image type rules. When the client did not
// declare a usable content type it is sniffed from the bytes, and the
// resolved type is written back to f.
func Validate(f *File) error {
	if f.Size <= 0 {
		return ErrEmptyFile
	}
	if f.Size > constants.MaxImageSizeBytes {
		return ErrFileTooLarge
	}

	contentType := baseType(f.ContentType)
	if contentType == "" || contentType == octetStream {
		sniffed, err := sniff(f.Content)
		if err != nil {
			return ErrUnsupportedType.WithCause(err)
		}
		contentType = sniffed
	}

	if !strings.HasPrefix(contentType, "image/") {
		return ErrUnsupportedType
	}
	f.ContentType = contentType
	return nil
}

func sniff(r io.ReadSeeker) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no content")
	}
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return baseType(mtype.String()), nil
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}
