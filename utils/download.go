package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/h2non/filetype"
)

// ErrNotImage is returned when a downloaded or sniffed file is not an image.
var ErrNotImage = errors.New("the file is not a valid image type")

// DownloadImage downloads the image from the internet and saves it into a temporary file.
// The caller is responsible for removing the file.
func DownloadImage(ctx context.Context, uri string) (*os.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URI %s: %w", uri, err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download image file from URI: %s, status %v", uri, res.Status)
	}

	tmpfile, err := os.CreateTemp("", "lilfast-image")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}

	// Copy the image binary data into the temporary file.
	if _, err := io.Copy(tmpfile, res.Body); err != nil {
		removeTemp(tmpfile)
		return nil, fmt.Errorf("unable to copy the source URI into the destination file: %w", err)
	}
	if _, err := tmpfile.Seek(0, io.SeekStart); err != nil {
		removeTemp(tmpfile)
		return nil, err
	}

	ok, err := IsImage(tmpfile)
	if err != nil {
		removeTemp(tmpfile)
		return nil, err
	}
	if !ok {
		removeTemp(tmpfile)
		return nil, ErrNotImage
	}

	return tmpfile, nil
}

func removeTemp(f *os.File) {
	if err := f.Close(); err != nil {
		log.Printf("could not close the temporary file: %v", err)
	}
	os.Remove(f.Name())
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

// IsImage sniffs the file header and reports whether it holds a known image format.
// The read offset is restored before returning.
func IsImage(rs io.ReadSeeker) (bool, error) {
	// The matchers only inspect the first 262 bytes of the file.
	head := make([]byte, 262)
	n, err := io.ReadFull(rs, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}

	// Reset the read pointer.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return false, err
	}

	return filetype.IsImage(head[:n]), nil
}
