package sender

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

// ProcessorConfig holds the staff channel credentials, usually from .env.
type ProcessorConfig struct {
	Token     string
	ChannelID string
}

// Enabled reports whether both credentials are present.
func (c ProcessorConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

func (c *ProcessorConfig) LoadFromEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.New("failed to load .env").Wrap(err)
	}

	token := os.Getenv("TG_TOKEN")
	if token == "" {
		return errs.Invalid("empty token")
	}

	channelID := os.Getenv("TG_CHANNEL_ID")
	if channelID == "" {
		return errs.Invalid("empty channel id")
	}

	c.Token = token
	c.ChannelID = channelID

	return nil
}
