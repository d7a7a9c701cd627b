package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/database"
	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/ds124wfegd/gradphoto/internal/pkg/codec"
	"github.com/ds124wfegd/gradphoto/internal/pkg/export"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func (s *sessionService) CreateSession() (entity.SessionResponse, error) {
	id := uuid.New().String()
	session := database.NewSession(id, s.newMachine(id), s.now())

	if err := s.repo.Save(session); err != nil {
		return entity.SessionResponse{}, err
	}

	logrus.WithField("session_id", id).Info("Session created")
	return toResponse(session), nil
}

func (s *sessionService) GetSession(id string) (entity.SessionResponse, error) {
	session, err := s.session(id)
	if err != nil {
		return entity.SessionResponse{}, err
	}
	return toResponse(session), nil
}

func (s *sessionService) DeleteSession(id string) error {
	session, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	session.Machine.Close()
	return nil
}

func (s *sessionService) SelectFile(id string, file *multipart.FileHeader) (entity.SessionResponse, error) {
	session, err := s.session(id)
	if err != nil {
		return entity.SessionResponse{}, err
	}

	src, err := file.Open()
	if err != nil {
		return entity.SessionResponse{}, fmt.Errorf("%w: open upload: %w", entity.ErrIOFailure, err)
	}
	defer src.Close()

	image, err := s.readUpload(src, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		return entity.SessionResponse{}, err
	}

	session.Machine.SelectFile(image)
	return toResponse(session), nil
}

func (s *sessionService) readUpload(r io.Reader, filename, contentType string) (entity.SourceImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxUploadBytes+1))
	if err != nil {
		return entity.SourceImage{}, fmt.Errorf("%w: read upload: %w", entity.ErrIOFailure, err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return entity.SourceImage{}, fmt.Errorf("%w: upload exceeds %d bytes", entity.ErrMalformedInput, s.maxUploadBytes)
	}

	detected, err := codec.DetectMIME(data)
	if err != nil {
		return entity.SourceImage{}, err
	}

	mimeType := detected
	if strings.HasPrefix(contentType, "image/") {
		mimeType = contentType
	}

	return entity.SourceImage{Filename: filename, MIMEType: mimeType, Data: data}, nil
}

func (s *sessionService) SetCaption(id, caption string) (entity.SessionResponse, error) {
	session, err := s.session(id)
	if err != nil {
		return entity.SessionResponse{}, err
	}

	if !session.Machine.SetCaption(caption) {
		return toResponse(session), entity.ErrInvalidState
	}
	return toResponse(session), nil
}

func (s *sessionService) Generate(id string) (entity.SessionResponse, error) {
	session, err := s.session(id)
	if err != nil {
		return entity.SessionResponse{}, err
	}

	if !session.Machine.Generate() {
		if session.Machine.Snapshot().Source == nil {
			return toResponse(session), entity.ErrNoSource
		}
		return toResponse(session), entity.ErrInvalidState
	}
	return toResponse(session), nil
}

func (s *sessionService) Retry(id string) (entity.SessionResponse, error) {
	session, err := s.session(id)
	if err != nil {
		return entity.SessionResponse{}, err
	}

	if !session.Machine.Retry() {
		return toResponse(session), entity.ErrInvalidState
	}
	return toResponse(session), nil
}

func (s *sessionService) Reset(id string) (entity.SessionResponse, error) {
	session, err := s.session(id)
	if err != nil {
		return entity.SessionResponse{}, err
	}

	session.Machine.Reset()
	return toResponse(session), nil
}

func (s *sessionService) FinalImage(id string) ([]byte, string, string, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, "", "", err
	}

	snap := session.Machine.Snapshot()
	if snap.State != entity.StateResult {
		return nil, "", "", entity.ErrNoResult
	}
	return snap.Final, snap.FinalMIME, export.DownloadFilename(snap.Source), nil
}

func (s *sessionService) DataURL(id string) (entity.DataURLResponse, error) {
	data, mimeType, filename, err := s.FinalImage(id)
	if err != nil {
		return entity.DataURLResponse{}, err
	}
	return entity.DataURLResponse{DataURL: codec.DataURL(mimeType, data), Filename: filename}, nil
}

func (s *sessionService) Share(id string) (entity.ShareResponse, error) {
	session, err := s.session(id)
	if err != nil {
		return entity.ShareResponse{}, err
	}

	snap := session.Machine.Snapshot()
	if snap.State != entity.StateResult || snap.Source == nil {
		return entity.ShareResponse{}, entity.ErrNoResult
	}

	share, err := export.Share(codec.DataURL(snap.FinalMIME, snap.Final), snap.Source, snap.Caption)
	if err != nil {
		logrus.WithField("session_id", id).Errorf("Failed to share image: %v", err)
		return entity.ShareResponse{}, err
	}
	return share, nil
}

func (s *sessionService) Mailto(id string) (entity.MailtoResponse, error) {
	session, err := s.session(id)
	if err != nil {
		return entity.MailtoResponse{}, err
	}
	if session.Machine.Snapshot().State != entity.StateResult {
		return entity.MailtoResponse{}, entity.ErrNoResult
	}
	return entity.MailtoResponse{Href: export.MailtoLink()}, nil
}

func (s *sessionService) CleanupIdle(now time.Time, ttl time.Duration) int {
	removed := s.repo.DeleteIdle(now.Add(-ttl))
	for _, session := range removed {
		session.Machine.Close()
		logrus.WithField("session_id", session.ID).Debug("Idle session removed")
	}
	return len(removed)
}

func (s *sessionService) CloseAll(ctx context.Context) (int, error) {
	removed := s.repo.DeleteAll()
	for _, session := range removed {
		session.Machine.Close()
	}

	done := make(chan struct{})
	go func() {
		for _, session := range removed {
			session.Machine.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
		return len(removed), nil
	case <-ctx.Done():
		logrus.Warnf("Stopped waiting for in-flight generations: %v", ctx.Err())
		return len(removed), ctx.Err()
	}
}

func (s *sessionService) session(id string) (*database.Session, error) {
	session, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	session.Touch(s.now())
	return session, nil
}

func toResponse(session *database.Session) entity.SessionResponse {
	snap, progress := session.Machine.View()

	resp := entity.SessionResponse{
		ID:              session.ID,
		State:           snap.State,
		ProgressMessage: progress,
		Caption:         snap.Caption,
		HasSource:       snap.Source != nil,
		HasResult:       snap.State == entity.StateResult,
		Error:           snap.Err,
	}
	if snap.Source != nil {
		resp.Filename = snap.Source.Filename
	}
	return resp
}
