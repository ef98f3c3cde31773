package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"gorm.io/gorm"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository/testutil"
)

type fakeStorage struct {
	uploads map[string][]byte
	failPut bool
}

func (f *fakeStorage) UploadObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if f.failPut {
		return errors.New("upload failed")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://example.com/" + key, nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, key string) error {
	delete(f.uploads, key)
	return nil
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) TranscribeBytes(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return f.transcript, f.err
}

func (f *fakeTranscriber) Close() error { return nil }

type fakeVoiceNoteRepo struct {
	notes []domain.VoiceNote
}

func (f *fakeVoiceNoteRepo) Create(ctx context.Context, tx *gorm.DB, note *domain.VoiceNote) error {
	note.ID = uint(len(f.notes) + 1)
	f.notes = append(f.notes, *note)
	return nil
}

func (f *fakeVoiceNoteRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]domain.VoiceNote, error) {
	var out []domain.VoiceNote
	for _, n := range f.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func TestTranscribeVoiceNote(t *testing.T) {
	storage := &fakeStorage{}
	repo := &fakeVoiceNoteRepo{}
	svc := NewTranscriptionService(repo, storage, &fakeTranscriber{transcript: "three sets of five"}, testutil.Logger(t))
	ctx := context.Background()

	note, err := svc.TranscribeVoiceNote(ctx, 7, []byte("fake audio bytes"), "audio/ogg")
	if err != nil {
		t.Fatalf("TranscribeVoiceNote: %v", err)
	}
	if note.Transcript != "three sets of five" {
		t.Fatalf("unexpected transcript: %q", note.Transcript)
	}
	if note.UserID != 7 || note.Size != int64(len("fake audio bytes")) {
		t.Fatalf("unexpected note: %+v", note)
	}
	if len(storage.uploads) != 1 {
		t.Fatalf("expected the clip to be archived, got %d uploads", len(storage.uploads))
	}

	notes, err := svc.ListVoiceNotes(ctx, 7)
	if err != nil {
		t.Fatalf("ListVoiceNotes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
}

func TestTranscribeVoiceNoteRejectsBadInput(t *testing.T) {
	svc := NewTranscriptionService(&fakeVoiceNoteRepo{}, &fakeStorage{}, &fakeTranscriber{}, testutil.Logger(t))
	ctx := context.Background()

	if _, err := svc.TranscribeVoiceNote(ctx, 1, nil, "audio/ogg"); !errors.Is(err, ErrInvalidAudio) {
		t.Fatalf("empty audio: expected ErrInvalidAudio, got %v", err)
	}
	if _, err := svc.TranscribeVoiceNote(ctx, 1, []byte("x"), "video/mp4"); !errors.Is(err, ErrInvalidAudio) {
		t.Fatalf("wrong content type: expected ErrInvalidAudio, got %v", err)
	}
	oversized := make([]byte, MaxVoiceNoteBytes+1)
	if _, err := svc.TranscribeVoiceNote(ctx, 1, oversized, "audio/ogg"); !errors.Is(err, ErrInvalidAudio) {
		t.Fatalf("oversized audio: expected ErrInvalidAudio, got %v", err)
	}
}

func TestTranscribeVoiceNoteArchivesBeforeTranscribing(t *testing.T) {
	storage := &fakeStorage{}
	repo := &fakeVoiceNoteRepo{}
	svc := NewTranscriptionService(repo, storage, &fakeTranscriber{err: errors.New("speech api down")}, testutil.Logger(t))
	ctx := context.Background()

	_, err := svc.TranscribeVoiceNote(ctx, 3, []byte("clip"), "audio/webm")
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
	// The raw clip survives the failed transcription.
	if len(storage.uploads) != 1 {
		t.Fatalf("expected 1 archived clip, got %d", len(storage.uploads))
	}
	if len(repo.notes) != 0 {
		t.Fatalf("no note should be recorded on failure, got %d", len(repo.notes))
	}
}
