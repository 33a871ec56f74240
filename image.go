package lilfast

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when an upload is not a decodable image.
var ErrUnsupportedImage = errors.New("unsupported image file")

// sniffLen is the number of header bytes inspected by the filetype matchers.
const sniffLen = 262

// DecodeImage decodes an uploaded image, applying the EXIF orientation if present.
// The content type is sniffed before decoding so non-image uploads are rejected early.
func DecodeImage(r io.Reader) (image.Image, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not read the image header: %w", err)
	}
	if !filetype.IsImage(head) {
		return nil, ErrUnsupportedImage
	}

	img, err := imaging.Decode(br, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	return img, nil
}

// LoadImage opens and decodes the image file at path.
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the image file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("could not close the opened file: %v", err)
		}
	}()

	return DecodeImage(file)
}

// EncodeImage encodes img to w. When w is a file the format is chosen
// after its extension, otherwise PNG is used.
func EncodeImage(w io.Writer, img image.Image) error {
	format := imaging.PNG
	if f, ok := w.(*os.File); ok {
		if ext := filepath.Ext(f.Name()); ext != "" {
			var err error
			format, err = imaging.FormatFromExtension(ext)
			if err != nil {
				return fmt.Errorf("%v file type not supported", ext)
			}
		}
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(100))
}

// IsSupportedExt reports whether the file extension is one of the image formats lilfast reads and writes.
func IsSupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".gif":
		return true
	}
	return false
}

// FilterByName resolves the resampling filter names accepted on the command line.
func FilterByName(name string) (imaging.ResampleFilter, bool) {
	switch strings.ToLower(name) {
	case "nearest":
		return imaging.NearestNeighbor, true
	case "box":
		return imaging.Box, true
	case "linear":
		return imaging.Linear, true
	case "catmullrom":
		return imaging.CatmullRom, true
	case "lanczos":
		return imaging.Lanczos, true
	}
	return imaging.ResampleFilter{}, false
}
