// Package upload validates multipart image batches before they reach the
// model. Files are fully read into memory; nothing is streamed or written
// to disk.
package upload

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/binaryshrey/HungrAI/internal/ai"
)

// MaxBatchSize caps the number of images accepted per request.
const MaxBatchSize = 10

// ValidationError is a client-caused rejection. Filename names the first
// offending file when one exists.
type ValidationError struct {
	Filename string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s: %s", e.Filename, e.Reason)
	}
	return e.Reason
}

// ReadBatch reads and validates every file in input order, failing fast on
// the first invalid one. Batch-size limits are checked before any file bytes
// are read.
func ReadBatch(headers []*multipart.FileHeader) ([]ai.Image, error) {
	if len(headers) == 0 {
		return nil, &ValidationError{Reason: "no files uploaded"}
	}
	if len(headers) > MaxBatchSize {
		return nil, &ValidationError{Reason: fmt.Sprintf("too many files: got %d, maximum is %d", len(headers), MaxBatchSize)}
	}

	images := make([]ai.Image, 0, len(headers))
	for i, header := range headers {
		filename := header.Filename
		if filename == "" {
			filename = fmt.Sprintf("image_%d", i)
		}

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return nil, &ValidationError{Filename: filename, Reason: fmt.Sprintf("unsupported content type %q, only images are accepted", contentType)}
		}

		data, err := readFile(header)
		if err != nil {
			return nil, &ValidationError{Filename: filename, Reason: "failed to read file"}
		}

		if err := verifyImage(data); err != nil {
			return nil, &ValidationError{Filename: filename, Reason: "file is not a valid image"}
		}

		images = append(images, ai.Image{
			Filename:    filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	return images, nil
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// verifyImage decodes the bytes to confirm they are structurally a real
// image in one of the registered formats (JPEG, PNG, GIF, WebP).
func verifyImage(data []byte) error {
	_, _, err := image.Decode(bytes.NewReader(data))
	return err
}
