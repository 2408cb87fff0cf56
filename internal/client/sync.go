package client

import (
	"context"
	"fmt"
	"io"
	"log"

	"CanvasBoard/internal/element"
	"CanvasBoard/internal/state"
)

// Placement of uploaded images, as the toolbar drops them.
const (
	ImageX      = 50.0
	ImageY      = 50.0
	ImageWidth  = 200.0
	ImageHeight = 150.0
)

// Sync keeps a Board in step with the server. Every mutation is followed by a
// full refetch of the log; refetches are ordered by a Sequencer. Images a
// log refers to are fetched before the log is applied.
type Sync struct {
	api    *Client
	board  *Board
	images *Images
	seq    Sequencer

	// OnChange runs after the board's log was replaced.
	OnChange func()
}

func NewSync(api *Client, board *Board) *Sync {
	return &Sync{api: api, board: board, images: NewImages(api)}
}

func (s *Sync) Board() *Board { return s.board }

func (s *Sync) API() *Client { return s.api }

// Images resolves the references of every log this Sync has applied.
func (s *Sync) Images() *Images { return s.images }

// Open joins sessionID, or creates a width x height session when it is empty.
func (s *Sync) Open(ctx context.Context, sessionID string, width, height int) error {
	if sessionID == "" {
		info, err := s.api.Init(ctx, width, height)
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		sessionID = info.SessionID
		log.Printf("[CLIENT] Created session %s (%dx%d)", sessionID, info.Width, info.Height)
	}
	return s.refresh(ctx, sessionID)
}

// Refresh refetches the current session's log.
func (s *Sync) Refresh(ctx context.Context) error {
	return s.refresh(ctx, s.board.SessionID())
}

func (s *Sync) refresh(ctx context.Context, sessionID string) error {
	n := s.seq.Next()
	view, err := s.api.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	s.images.Prefetch(ctx, ImageRefs(view.Elements))
	if !s.seq.Apply(n) {
		log.Printf("[CLIENT] Dropping stale log (request %d, revision %d)", n, view.Revision)
		return nil
	}
	s.board.Replace(view)
	if s.OnChange != nil {
		s.OnChange()
	}
	return nil
}

// Commit sends a completed gesture and refetches the log.
func (s *Sync) Commit(ctx context.Context, c Commit) error {
	ack, err := c.Send(ctx, s.api, s.board.SessionID())
	if err != nil {
		return err
	}
	if !ack.Appended {
		log.Printf("[CLIENT] %s", ack.Message)
	}
	return s.Refresh(ctx)
}

func (s *Sync) Clear(ctx context.Context) error {
	if _, err := s.api.Clear(ctx, s.board.SessionID()); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// PlaceImage uploads an image and places it on the board.
func (s *Sync) PlaceImage(ctx context.Context, filename string, r io.Reader) error {
	up, err := s.api.Upload(ctx, filename, r)
	if err != nil {
		return err
	}
	x, y, w, h := ImageX, ImageY, ImageWidth, ImageHeight
	req := state.ImageRequest{X: &x, Y: &y, Width: &w, Height: &h, ImageReference: up.Filename}
	if _, err := s.api.Image(ctx, s.board.SessionID(), req); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// ExportPDF writes the session's PDF to w.
func (s *Sync) ExportPDF(ctx context.Context, w io.Writer) error {
	return s.api.ExportPDF(ctx, s.board.SessionID(), w)
}

// Follow refetches whenever the server reports a revision newer than the
// board's. It blocks like Watch.
func (s *Sync) Follow(ctx context.Context) error {
	id := s.board.SessionID()
	return s.api.Watch(ctx, id, func(ev state.Event) {
		if ev.Revision <= s.board.Revision() {
			return
		}
		if err := s.Refresh(ctx); err != nil {
			log.Printf("[CLIENT] Refresh after %s failed: %v", ev.Op, err)
		}
	})
}

// Logical maps a display position to board coordinates.
func (s *Sync) Logical(p element.Point, display Size) element.Point {
	w, h := s.board.Size()
	return ToLogical(p, display, Size{Width: float64(w), Height: float64(h)})
}
