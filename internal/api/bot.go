package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	app "ppe-gate/internal/application"
	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
	"ppe-gate/internal/timeutil"
)

const (
	msgStart = `👋 Привет! Я бот поста досмотра СИЗ.

Я присылаю итоги проходов и позволяю менять список обязательных средств защиты.

📋 Команды:
/status — что сейчас на экране поста
/required — обязательные СИЗ
/toggle — включить или выключить СИЗ
/history — последние проходы
/reset — сбросить экран
/subscribe — получать итоги проходов
/unsubscribe — не получать итоги
/help — справка`

	msgHelp = `ℹ️ Как работает пост:

1️⃣ Сотрудник встаёт перед камерой и сгибает руки в локтях
2️⃣ Через 3 секунды удержания позы начинается проверка
3️⃣ Каждое найденное СИЗ сверяется с зоной тела
4️⃣ Результат: доступ разрешён, запрещён или СИЗ надеты неправильно

💡 Перчатки и ботинки засчитываются только парой.

📋 Команды:
/toggle <имя> — например /toggle gloves
/cancel — отменить текущую операцию`

	msgAwaitingClass  = "✏️ Какое СИЗ переключить? Напишите имя: mask, helmet, glasses, ear_protection, vest, glove, boot."
	msgCancelled      = "❌ Операция отменена."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgUseCommands    = "Используйте /help, чтобы увидеть команды."
	msgUnknownClass   = "❓ Не знаю такого СИЗ. Доступны: mask, helmet, glasses, ear_protection, vest, glove, boot."
	msgLastClass      = "⚠️ Нельзя выключить последнее обязательное СИЗ."
	msgSubscribed     = "🔔 Вы будете получать итоги проходов."
	msgUnsubscribed   = "🔕 Уведомления о проходах выключены."
	msgResetDone      = "🧹 Экран поста сброшен."
	msgNoPasses       = "Проходов пока не было."
	msgHistoryOff     = "Журнал проходов выключен."
	msgError          = "⚠️ Что-то пошло не так, попробуйте ещё раз."

	historyLimit = 10
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Deps сервисы, с которыми работает бот
type Deps struct {
	Operators *app.OperatorService
	Session   *app.Session
	Board     *app.StatusBoard
	History   port.PassHistory // nil, если журнал выключен
	Clock     timeutil.Clock
}

// Bot представляет Telegram-бота оператора поста
type Bot struct {
	api  *tgbotapi.BotAPI
	out  sender
	deps Deps
	log  zerolog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, deps Deps, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := newBot(api, deps, logger)
	b.api = api
	b.log.Info().Str("account", api.Self.UserName).Msg("Authorized on Telegram")
	return b, nil
}

func newBot(out sender, deps Deps, logger zerolog.Logger) *Bot {
	return &Bot{
		out:  out,
		deps: deps,
		log:  logger.With().Str("component", "telegram").Logger(),
	}
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	op, err := b.deps.Operators.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error().Err(err).Int64("user", msg.From.ID).Msg("get operator")
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, op)
		return
	}

	// Ожидаем имя СИЗ после /toggle без аргумента
	if op.State == entity.StateAwaitingClass {
		b.toggle(ctx, msg, strings.TrimSpace(msg.Text))
		return
	}

	b.sendMessage(msg.Chat.ID, msgUseCommands)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, op *entity.Operator) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.deps.Operators.Cancel(ctx, op.ID, chatID); err != nil {
			b.sendError(chatID, err, "reset operator state")
			return
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "status":
		b.sendMessage(chatID, FormatStatus(b.deps.Board.Snapshot()))

	case "required":
		b.sendMessage(chatID, FormatRequired(b.deps.Session.Required()))

	case "toggle":
		if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
			b.toggle(ctx, msg, arg)
			return
		}
		if _, err := b.deps.Operators.BeginToggle(ctx, op.ID, chatID); err != nil {
			b.sendError(chatID, err, "begin toggle")
			return
		}
		b.sendMessage(chatID, msgAwaitingClass)

	case "cancel":
		if _, err := b.deps.Operators.Cancel(ctx, op.ID, chatID); err != nil {
			b.sendError(chatID, err, "cancel operation")
			return
		}
		b.sendMessage(chatID, msgCancelled)

	case "history":
		b.sendHistory(ctx, chatID)

	case "reset":
		b.deps.Board.Reset(b.deps.Clock.Now())
		b.log.Info().Int64("user", op.ID).Msg("display reset by operator")
		b.sendMessage(chatID, msgResetDone)

	case "subscribe":
		if _, err := b.deps.Operators.Subscribe(ctx, op.ID, chatID, true); err != nil {
			b.sendError(chatID, err, "subscribe operator")
			return
		}
		b.sendMessage(chatID, msgSubscribed)

	case "unsubscribe", "stop":
		if _, err := b.deps.Operators.Subscribe(ctx, op.ID, chatID, false); err != nil {
			b.sendError(chatID, err, "unsubscribe operator")
			return
		}
		b.sendMessage(chatID, msgUnsubscribed)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// toggle переключает СИЗ и возвращает оператора в главное меню
func (b *Bot) toggle(ctx context.Context, msg *tgbotapi.Message, name string) {
	chatID := msg.Chat.ID

	class, err := entity.ParsePPEClass(name)
	if err != nil {
		b.sendMessage(chatID, msgUnknownClass)
		return
	}

	if _, err := b.deps.Operators.Cancel(ctx, msg.From.ID, chatID); err != nil {
		b.sendError(chatID, err, "reset operator state")
		return
	}

	rs, err := b.deps.Session.Toggle(class)
	if errors.Is(err, entity.ErrEmptyRequiredSet) {
		b.sendMessage(chatID, msgLastClass)
		return
	}
	if err != nil {
		b.sendError(chatID, err, "toggle required ppe")
		return
	}

	b.log.Info().Int64("user", msg.From.ID).Str("class", class.String()).Str("required", rs.String()).Msg("required ppe toggled")
	b.sendMessage(chatID, FormatRequired(rs))
}

func (b *Bot) sendHistory(ctx context.Context, chatID int64) {
	if b.deps.History == nil {
		b.sendMessage(chatID, msgHistoryOff)
		return
	}

	passes, err := b.deps.History.Recent(ctx, historyLimit)
	if err != nil {
		b.sendError(chatID, err, "read pass history")
		return
	}
	if len(passes) == 0 {
		b.sendMessage(chatID, msgNoPasses)
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 Последние проходы:\n")
	for _, p := range passes {
		fmt.Fprintf(&sb, "%s %s %s\n", p.At.Format("02.01 15:04:05"), decisionIcon(p.Decision), shortID(p.ID))
	}
	b.sendMessage(chatID, sb.String())
}

// NotifyGateEvent бот не показывает уровни удержания
func (b *Bot) NotifyGateEvent(_ context.Context, _ entity.GateEvent) error {
	return nil
}

// NotifyOutcome рассылает итог прохода подписанным операторам
func (b *Bot) NotifyOutcome(ctx context.Context, outcome entity.PassOutcome) error {
	subs, err := b.deps.Operators.Subscribers(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	text := FormatOutcome(outcome)
	var errs []error
	for _, op := range subs {
		if _, err := b.out.Send(tgbotapi.NewMessage(op.ChatID, text)); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", op.ChatID, err))
		}
	}
	return errors.Join(errs...)
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("Error sending message")
	}
}

// sendError пишет ошибку в лог и отвечает оператору общим сообщением
func (b *Bot) sendError(chatID int64, err error, action string) {
	b.log.Error().Err(err).Int64("chat", chatID).Msg(action)
	b.sendMessage(chatID, msgError)
}

var _ port.Notifier = (*Bot)(nil)
