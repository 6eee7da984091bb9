// Package sender posts booking requests to the staff Telegram channel.
package sender

import (
	"context"
	"math"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
	"github.com/rs/zerolog"
)

const attempts = 3

// BotAPI is the part of *tgbotapi.BotAPI the processor needs.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Processor struct {
	config ProcessorConfig
	logger zerolog.Logger

	bot   BotAPI
	sleep func(time.Duration)
	wg    sync.WaitGroup
}

func New(config ProcessorConfig, logger zerolog.Logger, bot BotAPI) *Processor {
	return &Processor{
		config: config,
		logger: logger,
		bot:    bot,
		sleep:  time.Sleep,
	}
}

// Connect authorizes against the Bot API with the configured token.
func Connect(config ProcessorConfig, logger zerolog.Logger) (*Processor, error) {
	if !config.Enabled() {
		return nil, errs.Invalid("telegram credentials missing")
	}
	bot, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, errs.New("failed to create bot api").Wrap(err)
	}
	bot.Debug = false
	logger.Info().Str("bot", bot.Self.UserName).Msg("authorized")
	return New(config, logger, bot), nil
}

// Send posts text to the channel, retrying with exponential backoff, and
// returns the message id.
func (p *Processor) Send(text string) (int, error) {
	p.logger.Trace().Msg("In")
	defer p.logger.Trace().Msg("Out")

	msgToSend := tgbotapi.NewMessageToChannel(p.config.ChannelID, text)

	var err error
	var msg tgbotapi.Message

	for i := 0; i < attempts; i++ {
		msg, err = p.bot.Send(msgToSend)
		if err == nil {
			return msg.MessageID, nil
		}
		p.logger.Warn().Err(err).Int("retry", i+1).Msg("send failed, retrying")

		if i < attempts-1 {
			p.sleep(time.Duration(math.Pow(2, float64(i))) * time.Second)
		}
	}
	p.logger.Error().Err(err).Msg("send permanently failed")

	return 0, errs.New("failed to send message").Wrap(err)
}

// Notify sends text in the background. The booking flow never waits for it
// and failures are only logged.
func (p *Processor) Notify(ctx context.Context, text string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := ctx.Err(); err != nil {
			p.logger.Warn().Err(err).Msg("notification dropped")
			return
		}
		id, err := p.Send(text)
		if err != nil {
			p.logger.Error().Err(err).Msg("staff notification failed")
			return
		}
		p.logger.Info().Int("message_id", id).Msg("staff notified")
	}()
}

// Wait blocks until every pending notification has finished.
func (p *Processor) Wait() {
	p.wg.Wait()
}
