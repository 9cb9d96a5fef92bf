package telegram

import (
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/do"

	"tezbot/app/config"
)

type Client struct {
	cfg *config.Config
	api *tgbotapi.BotAPI

	httpClient *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	return &Client{
		cfg: cfg,
		api: api,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Updates opens the long-polling channel.
func (c *Client) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	return c.api.GetUpdatesChan(u)
}

func (c *Client) Stop() {
	c.api.StopReceivingUpdates()
}

// Send posts a plain-text message to a chat.
func (c *Client) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

// SendReply posts a message quoting the message it answers.
func (c *Client) SendReply(chatID int64, replyTo int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram reply: %w", err)
	}

	return nil
}

func (c *Client) SendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = c.api.Request(action)
}

// DownloadFile fetches an attachment (photo, voice note) by file ID.
func (c *Client) DownloadFile(fileID string) ([]byte, error) {
	fileURL, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve telegram file url: %w", err)
	}

	res, err := c.httpClient.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download telegram file: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download telegram file: status %d", res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read telegram file: %w", err)
	}

	return data, nil
}
