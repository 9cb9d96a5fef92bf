package speechkit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/do"
	ycsdk "github.com/yandex-cloud/go-sdk"
	"github.com/yandex-cloud/go-sdk/iamkey"

	"tezbot/app/config"
)

type YandexSpeechKit struct {
	cfg *config.Config
	sdk *ycsdk.SDK
}

// NewClient builds the SpeechKit client when a service account key is
// configured. Without a key file the constructor returns (nil, nil) and
// voice transcription falls back to the generative model.
func NewClient(di *do.Injector) (*YandexSpeechKit, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	if cfg.Yandex.SpeechKit.KeyFile == "" {
		return nil, nil
	}

	keyBytes, err := os.ReadFile(cfg.Yandex.SpeechKit.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("could not read service account key: %w", err)
	}

	var key iamkey.Key
	if err = json.Unmarshal(keyBytes, &key); err != nil {
		return nil, fmt.Errorf("could not parse service account key: %w", err)
	}

	creds, err := ycsdk.ServiceAccountKey(&key)
	if err != nil {
		return nil, fmt.Errorf("could not create service account key: %w", err)
	}

	sdk, err := ycsdk.Build(ctx, ycsdk.Config{
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Yandex SDK: %w", err)
	}

	return &YandexSpeechKit{
		cfg: cfg,
		sdk: sdk,
	}, nil
}

func (y *YandexSpeechKit) start(ctx context.Context) (*handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	client, err := y.sdk.AI().STTV3().Recognizer().RecognizeStreaming(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &handle{
		client: client,
		cancel: cancel,
	}, nil
}
