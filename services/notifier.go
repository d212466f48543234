package services

import (
	"os"

	"github.com/rs/zerolog"
)

// Notifier surfaces mutation outcomes to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Localized user-facing messages.
const (
	msgCreated        = "지출을 기록했어요"
	msgUpdated        = "지출을 수정했어요"
	msgDeleted        = "지출을 삭제했어요"
	msgGenericFailure = "요청을 처리하지 못했어요. 잠시 후 다시 시도해주세요"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "services").Logger()

// logNotifier is the default Notifier; embedding applications replace it
// with their own toast/snackbar implementation.
type logNotifier struct{}

func (logNotifier) Success(msg string) { logger.Info().Msg(msg) }
func (logNotifier) Error(msg string)   { logger.Error().Msg(msg) }
