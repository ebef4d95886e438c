package draft

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxImageSize is the largest accepted image, inclusive.
const MaxImageSize = 5 << 20

var (
	// ErrImageTooLarge is returned for files above MaxImageSize.
	ErrImageTooLarge = fmt.Errorf("%w: image exceeds 5 MiB", apperr.ErrValidation)
	// ErrNotImage is returned for files whose content is not an image.
	ErrNotImage = fmt.Errorf("%w: file is not an image", apperr.ErrValidation)
)

// File is a selected file waiting to be attached.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// Image is an attached image transcoded to a data URL.
type Image struct {
	Name    string
	MIME    string
	Size    int64
	DataURL string
}

// Rejection explains why one file of a batch was not attached.
type Rejection struct {
	Index int
	Name  string
	Err   error
}

func (r Rejection) Error() string { return r.Name + ": " + r.Err.Error() }

// Attach reads and transcodes files concurrently and appends the accepted
// ones in selection order, whatever order the reads finish in. A rejected
// file never blocks the rest of the batch. err is non-nil only when ctx
// ends first, in which case nothing from the batch is attached.
func (d *Draft) Attach(ctx context.Context, files ...File) (rejected []Rejection, err error) {
	slots := make([]*Image, len(files))
	fails := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.readers)
	for i, f := range files {
		if f.Size() > MaxImageSize {
			fails[i] = ErrImageTooLarge
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := transcode(f)
			if err != nil {
				fails[i] = err
				return nil
			}
			slots[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	for i, img := range slots {
		if img != nil {
			d.images = append(d.images, *img)
		}
		if fails[i] != nil {
			rejected = append(rejected, Rejection{Index: i, Name: files[i].Name(), Err: fails[i]})
		}
	}
	d.mu.Unlock()

	for _, r := range rejected {
		d.log.Info("image rejected", zap.String("name", r.Name), zap.Error(r.Err))
	}
	return rejected, nil
}

func transcode(f File) (*Image, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	// The declared size may be stale; never read past the limit.
	data, err := io.ReadAll(io.LimitReader(rc, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, ErrNotImage
	}

	return &Image{
		Name:    f.Name(),
		MIME:    mime,
		Size:    int64(len(data)),
		DataURL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Images returns the attached images in order.
func (d *Draft) Images() []Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Image, len(d.images))
	copy(out, d.images)
	return out
}

// RemoveImage drops the image at index i, keeping the others in order.
func (d *Draft) RemoveImage(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.images) {
		return fmt.Errorf("image index %d out of range", i)
	}
	d.images = append(d.images[:i], d.images[i+1:]...)
	return nil
}

type diskFile struct {
	path string
	size int64
}

// OpenFile adapts a file on disk for Attach.
func OpenFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New(path + " is a directory")
	}
	return &diskFile{path: path, size: info.Size()}, nil
}

func (f *diskFile) Name() string                 { return filepath.Base(f.path) }
func (f *diskFile) Size() int64                  { return f.size }
func (f *diskFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }
