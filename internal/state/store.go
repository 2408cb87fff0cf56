package state

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/google/uuid"

	"CanvasBoard/internal/element"
	"CanvasBoard/internal/render"
)

const (
	MinDimension = 100
	MaxDimension = 2000
)

// Event describes one successful mutation of a session.
type Event struct {
	SessionID string `json:"sessionId"`
	Revision  uint64 `json:"revision"`
	Op        string `json:"op"`
}

// Session is one canvas: fixed dimensions, an append-only element log and the
// raster that log has been painted onto. All access goes through its mutex.
type Session struct {
	ID     string
	Width  int
	Height int

	mu       sync.Mutex
	elements []element.Element
	raster   *render.Raster
	fonts    *render.Fonts
	images   render.ImageResolver
	clock    Clock
}

// View is a point-in-time copy of a session.
type View struct {
	SessionID string       `json:"sessionId"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Revision  uint64       `json:"revision"`
	Elements  element.List `json:"elements"`
}

// View copies the session's log under its lock.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	elems := make(element.List, len(s.elements))
	copy(elems, s.elements)
	return View{
		SessionID: s.ID,
		Width:     s.Width,
		Height:    s.Height,
		Revision:  s.clock.Now(),
		Elements:  elems,
	}
}

// WithRaster runs fn with exclusive access to the session raster. fn must not
// keep the raster after it returns.
func (s *Session) WithRaster(fn func(r *render.Raster) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.raster)
}

// commit paints e and appends it. img, when set, is the already decoded
// pixels of an image element. Fonts and images are checked before painting,
// so a failure leaves the raster untouched; a paint error after that point
// repaints the raster from the log.
func (s *Session) commit(e element.Element, img image.Image) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepare(e, &img); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	if err := element.Paint(resolvedSurface{Raster: s.raster, img: img}, e); err != nil {
		s.repaint()
		return 0, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	s.elements = append(s.elements, e)
	return s.clock.Tick(), nil
}

// prepare loads whatever painting e needs and could fail on.
func (s *Session) prepare(e element.Element, img *image.Image) error {
	switch v := e.(type) {
	case element.Text:
		_, err := s.fonts.Face(v.FontFamily, v.FontSize)
		return err
	case element.Image:
		if *img != nil {
			return nil
		}
		if s.images == nil {
			return render.ErrNoImages
		}
		resolved, err := s.images.Resolve(v.ImageReference)
		if err != nil {
			return fmt.Errorf("resolve image %q: %w", v.ImageReference, err)
		}
		*img = resolved
	}
	return nil
}

// repaint rebuilds the raster from the log.
func (s *Session) repaint() {
	s.raster.Reset()
	for _, e := range s.elements {
		if err := element.Paint(s.raster, e); err != nil {
			log.Printf("[STORE] Session %s: repaint of %s failed: %v", s.ID, e.Kind(), err)
		}
	}
}

// resolvedSurface paints image elements from pixels decoded before the
// commit instead of resolving their reference again.
type resolvedSurface struct {
	*render.Raster
	img image.Image
}

func (r resolvedSurface) DrawImage(ref string, x, y, w, h float64) error {
	if r.img == nil {
		return r.Raster.DrawImage(ref, x, y, w, h)
	}
	r.Raster.PutImage(r.img, x, y, w, h)
	return nil
}

func (s *Session) clear() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = nil
	s.raster.Reset()
	return s.clock.Tick()
}

// Store holds every session of the process. Sessions are never evicted; they
// live until the process exits.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	fonts    *render.Fonts
	images   render.ImageResolver

	// OnChange is called after every successful mutation, outside any lock.
	OnChange func(Event)
}

// NewStore creates an empty store whose rasters resolve image references
// through images.
func NewStore(images render.ImageResolver) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		fonts:    render.DefaultFonts,
		images:   images,
	}
}

// Images returns the resolver rasters use.
func (st *Store) Images() render.ImageResolver {
	return st.images
}

// Create starts a new session with a white raster.
func (st *Store) Create(width, height int) (*Session, error) {
	if width < MinDimension || width > MaxDimension || height < MinDimension || height > MaxDimension {
		return nil, ErrInvalidDimensions
	}
	s := &Session{
		ID:     uuid.NewString(),
		Width:  width,
		Height: height,
		raster: render.NewRaster(width, height, st.fonts, st.images),
		fonts:  st.fonts,
		images: st.images,
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	log.Printf("[STORE] Session %s created (%dx%d)", s.ID, width, height)
	return s, nil
}

// Get returns the session or ErrNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Append paints e onto the session raster and appends it to the log.
func (st *Store) Append(id string, e element.Element) (uint64, error) {
	return st.append(id, e, nil)
}

// AppendImage appends an image element whose pixels the caller already
// decoded, so the reference is not resolved a second time.
func (st *Store) AppendImage(id string, e element.Image, img image.Image) (uint64, error) {
	return st.append(id, e, img)
}

func (st *Store) append(id string, e element.Element, img image.Image) (uint64, error) {
	s, err := st.Get(id)
	if err != nil {
		return 0, err
	}
	rev, err := s.commit(e, img)
	if err != nil {
		log.Printf("[STORE] Session %s: %s rejected: %v", id, e.Kind(), err)
		return 0, err
	}
	st.notify(Event{SessionID: id, Revision: rev, Op: string(e.Kind())})
	return rev, nil
}

// Clear empties the log and re-initializes the raster; the session stays.
func (st *Store) Clear(id string) (uint64, error) {
	s, err := st.Get(id)
	if err != nil {
		return 0, err
	}
	rev := s.clear()
	log.Printf("[STORE] Session %s cleared", id)
	st.notify(Event{SessionID: id, Revision: rev, Op: "clear"})
	return rev, nil
}

// Len reports how many sessions exist.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) notify(ev Event) {
	if st.OnChange != nil {
		st.OnChange(ev)
	}
}

// IsNotFound reports whether err means an unknown session.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
