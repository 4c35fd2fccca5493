package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	app "ppe-gate/internal/application"
	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
	"ppe-gate/internal/infrastructure/storage"
	"ppe-gate/internal/timeutil"
)

type sentText struct {
	chatID int64
	text   string
}

type fakeSender struct {
	sent []sentText
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, sentText{chatID: m.ChatID, text: m.Text})
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].text
}

var botNow = time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)

func newTestBot(t *testing.T) (*Bot, *fakeSender, Deps) {
	t.Helper()
	session, err := app.NewSession(entity.NewRequiredSet(entity.Helmet, entity.Vest))
	require.NoError(t, err)

	deps := Deps{
		Operators: app.NewOperatorService(storage.NewMemoryOperatorRepository()),
		Session:   session,
		Board:     app.NewStatusBoard(),
		Clock:     timeutil.NewMockClock(botNow),
	}
	out := &fakeSender{}
	return newBot(out, deps, zerolog.Nop()), out, deps
}

func message(userID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID * 10},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		n := strings.IndexByte(text, ' ')
		if n < 0 {
			n = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}}
	}
	return msg
}

func TestBot_ToggleWithArgument(t *testing.T) {
	b, out, deps := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, message(1, "/toggle gloves"))
	require.True(t, deps.Session.Required().Enabled(entity.Glove))
	require.Contains(t, out.last(), "✅ glove")
	require.Equal(t, int64(10), out.sent[0].chatID)
}

func TestBot_ToggleDialog(t *testing.T) {
	b, out, deps := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, message(1, "/toggle"))
	require.Equal(t, msgAwaitingClass, out.last())

	b.handleMessage(ctx, message(1, "cape"))
	require.Equal(t, msgUnknownClass, out.last())

	b.handleMessage(ctx, message(1, "vest"))
	require.False(t, deps.Session.Required().Enabled(entity.Vest))

	op, err := deps.Operators.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, op.State)

	// после диалога обычный текст не переключает СИЗ
	b.handleMessage(ctx, message(1, "helmet"))
	require.Equal(t, msgUseCommands, out.last())
	require.True(t, deps.Session.Required().Enabled(entity.Helmet))
}

func TestBot_CannotDisableLastClass(t *testing.T) {
	b, out, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, message(1, "/toggle vest"))
	b.handleMessage(ctx, message(1, "/toggle helmet"))
	require.Equal(t, msgLastClass, out.last())
}

func TestBot_ResetAndStatus(t *testing.T) {
	b, out, deps := newTestBot(t)
	ctx := context.Background()
	require.NoError(t, deps.Board.NotifyOutcome(ctx, entity.PassOutcome{ID: "abc", Decision: entity.DecisionDenied, Required: entity.NewRequiredSet(entity.Helmet)}))

	b.handleMessage(ctx, message(1, "/status"))
	require.Contains(t, out.last(), "Доступ запрещён")

	b.handleMessage(ctx, message(1, "/reset"))
	require.Equal(t, msgResetDone, out.last())
	require.Nil(t, deps.Board.Snapshot().Last)
	require.Equal(t, botNow, deps.Board.Snapshot().UpdatedAt)

	b.handleMessage(ctx, message(1, "/status"))
	require.Contains(t, out.last(), "Экран пуст.")
}

func TestBot_HistoryDisabled(t *testing.T) {
	b, out, _ := newTestBot(t)
	b.handleMessage(context.Background(), message(1, "/history"))
	require.Equal(t, msgHistoryOff, out.last())
}

func TestBot_UnknownCommand(t *testing.T) {
	b, out, _ := newTestBot(t)
	b.handleMessage(context.Background(), message(1, "/fly"))
	require.Equal(t, msgUnknownCommand, out.last())
}

func TestBot_NotifyOutcomeOnlySubscribers(t *testing.T) {
	b, out, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, message(1, "/subscribe"))
	b.handleMessage(ctx, message(2, "/start"))
	b.handleMessage(ctx, message(3, "/subscribe"))
	b.handleMessage(ctx, message(3, "/unsubscribe"))
	out.sent = nil

	result := entity.NewPassResult()
	result.Statuses[entity.Helmet] = entity.StatusMatched
	result.Confidence[entity.Helmet] = 0.96
	outcome := entity.PassOutcome{
		ID:       "0123456789",
		At:       botNow,
		Decision: entity.DecisionDenied,
		Result:   result,
		Required: entity.NewRequiredSet(entity.Helmet, entity.Vest),
	}
	require.NoError(t, b.NotifyOutcome(ctx, outcome))

	require.Len(t, out.sent, 1)
	require.Equal(t, int64(10), out.sent[0].chatID)
	require.Equal(t, "⛔ Доступ запрещён\nПроход 01234567, 08:30:00\n• helmet: ✅ 0.96\n• vest: ❌\n", out.sent[0].text)
}

// readOnlyOperators отдаёт операторов, но не сохраняет изменения
type readOnlyOperators struct {
	port.OperatorRepository
}

func (readOnlyOperators) Save(context.Context, *entity.Operator) error {
	return errors.New("storage is read-only")
}

func TestBot_OperatorSaveFailureIsReported(t *testing.T) {
	for _, cmd := range []string{"/subscribe", "/unsubscribe", "/start", "/cancel", "/toggle", "/toggle vest"} {
		t.Run(cmd, func(t *testing.T) {
			b, out, deps := newTestBot(t)
			b.deps.Operators = app.NewOperatorService(readOnlyOperators{storage.NewMemoryOperatorRepository()})

			b.handleMessage(context.Background(), message(1, cmd))

			require.Equal(t, msgError, out.last())
			require.Equal(t, "helmet,vest", deps.Session.Required().String())
		})
	}
}

func TestBot_SubscribeFailureKeepsOperatorUnsubscribed(t *testing.T) {
	b, out, _ := newTestBot(t)
	b.deps.Operators = app.NewOperatorService(readOnlyOperators{storage.NewMemoryOperatorRepository()})
	ctx := context.Background()

	b.handleMessage(ctx, message(1, "/subscribe"))
	out.sent = nil

	require.NoError(t, b.NotifyOutcome(ctx, entity.PassOutcome{ID: "0123456789", At: botNow, Decision: entity.DecisionGranted, Result: entity.NewPassResult()}))
	require.Empty(t, out.sent)
}
