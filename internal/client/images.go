package client

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"

	"CanvasBoard/internal/element"
)

// ErrNotFetched is returned for a reference Prefetch has not seen yet.
var ErrNotFetched = errors.New("image not fetched yet")

type fetched struct {
	img image.Image
	err error
}

// Images resolves image references against the server's /uploads/ route.
// Fetching happens only in Prefetch; Resolve reads what Prefetch stored, so
// painting never touches the network. Failures are kept as well as images.
type Images struct {
	client *Client
	mu     sync.Mutex
	cache  map[string]fetched
}

func NewImages(c *Client) *Images {
	return &Images{client: c, cache: make(map[string]fetched)}
}

// ImageRefs lists the distinct image references in elems.
func ImageRefs(elems []element.Element) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, e := range elems {
		if img, ok := e.(element.Image); ok && !seen[img.ImageReference] {
			seen[img.ImageReference] = true
			refs = append(refs, img.ImageReference)
		}
	}
	return refs
}

// Prefetch fetches every reference it has not fetched before.
func (im *Images) Prefetch(ctx context.Context, refs []string) {
	for _, ref := range refs {
		im.mu.Lock()
		_, known := im.cache[ref]
		im.mu.Unlock()
		if known {
			continue
		}
		img, err := im.fetch(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[CLIENT] Image %s unavailable: %v", ref, err)
		}
		im.mu.Lock()
		im.cache[ref] = fetched{img: img, err: err}
		im.mu.Unlock()
	}
}

// Resolve implements render.ImageResolver.
func (im *Images) Resolve(ref string) (image.Image, error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	f, ok := im.cache[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFetched, ref)
	}
	return f.img, f.err
}

func (im *Images) url(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return im.client.base + "/uploads/" + strings.TrimPrefix(ref, "/uploads/")
}

func (im *Images) fetch(ctx context.Context, ref string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, im.url(ref), nil)
	if err != nil {
		return nil, err
	}
	resp, err := im.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("fetching image %s: %w", ref, err)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", ref, err)
	}
	return img, nil
}
