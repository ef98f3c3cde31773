package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
	"alcyxob/workout-tracker/internal/transcribe"
)

// --- Error Definitions ---
var (
	ErrInvalidAudio        = errors.New("invalid or missing audio payload")
	ErrTranscriptionFailed = errors.New("failed to transcribe audio")
)

// Uploaded clips are capped well below the Speech API's inline-content limit.
const MaxVoiceNoteBytes = 10 << 20 // 10 MiB

// --- Service Interface ---

// TranscriptionService archives an uploaded voice note to object storage,
// transcribes it, and records the result.
type TranscriptionService interface {
	TranscribeVoiceNote(ctx context.Context, userID uint, audio []byte, contentType string) (*domain.VoiceNote, error)
	ListVoiceNotes(ctx context.Context, userID uint) ([]domain.VoiceNote, error)
}

// --- Service Implementation ---

type transcriptionService struct {
	voiceNoteRepo repository.VoiceNoteRepository
	fileStorage   storage.FileStorage
	transcriber   transcribe.Transcriber
	log           *logger.Logger
}

// NewTranscriptionService creates a new instance of transcriptionService.
func NewTranscriptionService(
	voiceNoteRepo repository.VoiceNoteRepository,
	fileStorage storage.FileStorage,
	transcriber transcribe.Transcriber,
	baseLog *logger.Logger,
) TranscriptionService {
	return &transcriptionService{
		voiceNoteRepo: voiceNoteRepo,
		fileStorage:   fileStorage,
		transcriber:   transcriber,
		log:           baseLog.With("service", "TranscriptionService"),
	}
}

func (s *transcriptionService) TranscribeVoiceNote(ctx context.Context, userID uint, audio []byte, contentType string) (*domain.VoiceNote, error) {
	if len(audio) == 0 || len(audio) > MaxVoiceNoteBytes {
		return nil, ErrInvalidAudio
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "audio/") {
		return nil, ErrInvalidAudio
	}

	// Archive the raw clip first so a transcription failure never loses the
	// user's recording.
	objectKey := path.Join("voice-notes", strconv.FormatUint(uint64(userID), 10), uuid.NewString())
	if err := s.fileStorage.UploadObject(ctx, objectKey, bytes.NewReader(audio), int64(len(audio)), contentType); err != nil {
		return nil, err
	}

	transcript, err := s.transcriber.TranscribeBytes(ctx, audio, contentType)
	if err != nil {
		s.log.Error("transcription failed", "userId", userID, "key", objectKey, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	note := &domain.VoiceNote{
		UserID:      userID,
		S3ObjectKey: objectKey,
		ContentType: contentType,
		Size:        int64(len(audio)),
		Transcript:  transcript,
	}
	if err := s.voiceNoteRepo.Create(ctx, nil, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *transcriptionService) ListVoiceNotes(ctx context.Context, userID uint) ([]domain.VoiceNote, error) {
	return s.voiceNoteRepo.ListByUser(ctx, nil, userID)
}
