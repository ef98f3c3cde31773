package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/service"
)

// TranscriptionHandler holds the transcription service dependency.
type TranscriptionHandler struct {
	transcriptionService service.TranscriptionService
}

// NewTranscriptionHandler creates a new TranscriptionHandler.
func NewTranscriptionHandler(transcriptionService service.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{transcriptionService: transcriptionService}
}

// VoiceNoteResponse is the DTO for a transcribed voice note.
type VoiceNoteResponse struct {
	ID          uint   `json:"id"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Transcript  string `json:"transcript"`
	CreatedAt   string `json:"createdAt"`
}

// TranscribeVoiceNote accepts a multipart "audio" file, archives it, and
// returns the transcript.
func (h *TranscriptionHandler) TranscribeVoiceNote(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, "Multipart field 'audio' is required.")
		return
	}
	if fileHeader.Size > service.MaxVoiceNoteBytes {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Audio file exceeds the upload limit.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to read uploaded file.")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, service.MaxVoiceNoteBytes+1))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to read uploaded file.")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	note, err := h.transcriptionService.TranscribeVoiceNote(c.Request.Context(), userID, audio, contentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAudio):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrTranscriptionFailed):
			abortWithError(c, http.StatusBadGateway, "Transcription backend failed.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to process voice note.")
		}
		return
	}

	c.JSON(http.StatusCreated, VoiceNoteResponse{
		ID:          note.ID,
		ContentType: note.ContentType,
		Size:        note.Size,
		Transcript:  note.Transcript,
		CreatedAt:   note.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ListVoiceNotes returns the caller's transcribed notes, newest first.
func (h *TranscriptionHandler) ListVoiceNotes(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	notes, err := h.transcriptionService.ListVoiceNotes(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list voice notes.")
		return
	}

	responses := make([]VoiceNoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = VoiceNoteResponse{
			ID:          note.ID,
			ContentType: note.ContentType,
			Size:        note.Size,
			Transcript:  note.Transcript,
			CreatedAt:   note.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, responses)
}
