package transcribe

import (
	"context"
	"errors"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"alcyxob/workout-tracker/internal/logger"
)

const recognizeTimeout = 3 * time.Minute

// gcpTranscriber implements Transcriber on Google Cloud Speech-to-Text.
type gcpTranscriber struct {
	client *speech.Client
	log    *logger.Logger
}

// NewGCPTranscriber creates a Speech-to-Text backed transcriber. Credentials
// are resolved from the environment (GOOGLE_APPLICATION_CREDENTIALS).
func NewGCPTranscriber(ctx context.Context, baseLog *logger.Logger) (Transcriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &gcpTranscriber{
		client: client,
		log:    baseLog.With("component", "gcpTranscriber"),
	}, nil
}

func (t *gcpTranscriber) Close() error {
	return t.client.Close()
}

// TranscribeBytes runs a long-running recognition over the clip and joins
// the top alternative of every result into one transcript.
func (t *gcpTranscriber) TranscribeBytes(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("empty audio payload")
	}

	ctx, cancel := context.WithTimeout(ctx, recognizeTimeout)
	defer cancel()

	req := &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encodingForMimeType(mimeType),
			LanguageCode:               "en-US",
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	op, err := t.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return "", err
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		if text := strings.TrimSpace(alternatives[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// encodingForMimeType maps common upload content types to the Speech API
// encodings. ENCODING_UNSPECIFIED lets the API sniff containers it can
// detect on its own (e.g. WAV).
func encodingForMimeType(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0])) {
	case "audio/flac":
		return speechpb.RecognitionConfig_FLAC
	case "audio/ogg", "application/ogg":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "audio/webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	case "audio/mp3", "audio/mpeg":
		return speechpb.RecognitionConfig_MP3
	case "audio/amr":
		return speechpb.RecognitionConfig_AMR
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
