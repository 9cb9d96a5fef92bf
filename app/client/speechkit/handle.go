package speechkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
)

const chunkSize = 4096

type handle struct {
	client stt.Recognizer_RecognizeStreamingClient
	cancel context.CancelFunc
}

// Transcribe runs a whole Telegram voice note (OggOpus container) through
// the recognizer and joins the final hypotheses into a single line.
func (y *YandexSpeechKit) Transcribe(ctx context.Context, audio []byte) (string, error) {
	h, err := y.start(ctx)
	if err != nil {
		return "", err
	}
	defer h.close()

	if err := h.sendConfig(); err != nil {
		return "", fmt.Errorf("failed to send stt config: %w", err)
	}

	for off := 0; off < len(audio); off += chunkSize {
		end := off + chunkSize
		if end > len(audio) {
			end = len(audio)
		}

		if err := h.send(audio[off:end]); err != nil {
			return "", fmt.Errorf("failed to send stt chunk: %w", err)
		}
	}

	if err := h.client.CloseSend(); err != nil {
		return "", fmt.Errorf("failed to close stt stream: %w", err)
	}

	var parts []string
	for {
		texts, err := h.recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		parts = append(parts, texts...)
	}

	return strings.Join(parts, " "), nil
}

func (h *handle) sendConfig() error {
	var audioFormatOpts stt.AudioFormatOptions
	audioFormatOpts.SetContainerAudio(&stt.ContainerAudio{
		ContainerAudioType: stt.ContainerAudio_OGG_OPUS,
	})

	var req stt.StreamingRequest
	req.SetSessionOptions(&stt.StreamingOptions{
		RecognitionModel: &stt.RecognitionModelOptions{
			Model:       "general",
			AudioFormat: &audioFormatOpts,
			LanguageRestriction: &stt.LanguageRestrictionOptions{
				RestrictionType: stt.LanguageRestrictionOptions_WHITELIST,
				LanguageCode:    []string{"ru-RU"},
			},
		},
	})

	return h.client.Send(&req)
}

func (h *handle) send(content []byte) error {
	var req stt.StreamingRequest
	req.SetChunk(&stt.AudioChunk{
		Data: content,
	})

	return h.client.Send(&req)
}

func (h *handle) recv() ([]string, error) {
	res, err := h.client.Recv()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to receive stt: %w", err)
	}

	finalEvent := res.GetFinal()
	if finalEvent == nil {
		return nil, nil
	}

	result := make([]string, 0, len(finalEvent.Alternatives))
	for _, alt := range finalEvent.Alternatives {
		text := strings.TrimSpace(alt.Text)
		if text == "" {
			continue
		}

		result = append(result, text)
	}

	return result, nil
}

func (h *handle) close() {
	h.cancel()
}
