package engine

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"

	"tezbot/app/client/gemini"
	"tezbot/app/client/speechkit"
	"tezbot/app/client/telegram"
	"tezbot/app/config"
	"tezbot/app/game"
	"tezbot/app/service/fun"
	"tezbot/app/service/persona"
	"tezbot/app/service/router"
	"tezbot/app/service/session"
	"tezbot/app/service/stats"
)

const (
	maxConcurrentUpdates = 32
	cleanupInterval      = time.Hour
)

type Service struct {
	cfg      *config.Config
	tg       *telegram.Client
	gemini   *gemini.Client
	stt      *speechkit.YandexSpeechKit
	sessions *session.Service
	personas *persona.Service
	fun      *fun.Service
	stats    *stats.Service
	router   *router.Service
	rand     game.Source
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:      do.MustInvoke[*config.Config](di),
		tg:       do.MustInvoke[*telegram.Client](di),
		gemini:   do.MustInvoke[*gemini.Client](di),
		stt:      do.MustInvoke[*speechkit.YandexSpeechKit](di),
		sessions: do.MustInvoke[*session.Service](di),
		personas: do.MustInvoke[*persona.Service](di),
		fun:      do.MustInvoke[*fun.Service](di),
		stats:    do.MustInvoke[*stats.Service](di),
		router:   do.MustInvoke[*router.Service](di),
		rand:     game.NewSource(),
	}, nil
}

func (s *Service) Run(ctx context.Context) {
	go s.runCleanupLoop(ctx)

	updates := s.tg.Updates()
	slog.Info("Listening for updates", "bot", s.tg.Username())

	grp := new(errgroup.Group)
	grp.SetLimit(maxConcurrentUpdates)

	for {
		select {
		case <-ctx.Done():
			s.tg.Stop()
			_ = grp.Wait()
			return

		case update, ok := <-updates:
			if !ok {
				_ = grp.Wait()
				return
			}

			grp.Go(func() error {
				s.handleUpdate(ctx, update)
				return nil
			})
		}
	}
}

func (s *Service) runCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.sessions.CleanupStale(); evicted > 0 {
				slog.Info("Evicted stale history", "users", evicted)
			}
		}
	}
}

func (s *Service) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID

	// Same-user turns run strictly one at a time.
	unlock := s.sessions.LockUser(userID)
	defer unlock()

	start := time.Now()
	s.stats.Increment(ctx, userID, stats.CounterMessages)

	switch {
	case msg.IsCommand():
		s.handleCommand(ctx, userID, chatID, msg)
	case len(msg.Photo) > 0:
		s.handlePhoto(ctx, userID, chatID, msg)
	case msg.Voice != nil:
		s.handleVoice(ctx, userID, chatID, msg)
	case msg.Text != "":
		s.handleText(ctx, userID, chatID, msg.Text)
	}

	slog.Info("Processed update",
		"user", userID,
		"duration", time.Since(start))
}

func (s *Service) send(chatID int64, text string) {
	if err := s.tg.Send(chatID, text); err != nil {
		slog.Warn("Failed to send reply", "chat", chatID, "error", err)
	}
}
