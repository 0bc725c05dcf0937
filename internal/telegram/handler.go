package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/reactor-bot/internal/domain"
)

const maxMessageLen = 4096 // лимит телеграма

const defaultHistoryLimit = 10

var errRateLimited = errors.New("rate limited")

var knownCommands = map[string]bool{
	"start": true, "help": true, "presets": true, "new": true,
	"list": true, "remove": true, "inputs": true, "conversion": true,
	"split": true, "mode": true, "run": true, "reset": true,
	"out": true, "status": true, "history": true, "batch": true,
}

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	startTime := time.Now()

	if !msg.IsCommand() {
		h.bot.Send(msg.Chat.ID, "Это стенд реакторной стадии, он понимает только команды. Список: /help")
		if h.bot.metrics != nil {
			h.bot.metrics.RecordCommand("text", "ok", time.Since(startTime))
		}
		return
	}

	cmd := msg.Command()
	err := h.dispatch(ctx, cmd, msg)

	status := "ok"
	switch {
	case errors.Is(err, errRateLimited):
		status = "rate_limited"
	case err != nil:
		status = "error"
	}

	// неизвестные команды не раздувают кардинальность метрики
	label := cmd
	if !knownCommands[cmd] {
		label = "unknown"
	}
	if h.bot.metrics != nil {
		h.bot.metrics.RecordCommand(label, status, time.Since(startTime))
	}
}

func (h *Handler) dispatch(ctx context.Context, cmd string, msg *tgbotapi.Message) error {
	switch cmd {
	case "start":
		return h.handleStart(ctx, msg)
	case "help":
		return h.handleHelp(msg)
	case "presets":
		return h.handlePresets(msg)
	case "new":
		return h.handleNew(ctx, msg)
	case "list":
		return h.handleList(ctx, msg)
	case "remove":
		return h.handleRemove(ctx, msg)
	case "inputs":
		return h.handleInputs(ctx, msg)
	case "conversion":
		return h.handleConversion(ctx, msg)
	case "split":
		return h.handleSplit(ctx, msg)
	case "mode":
		return h.handleMode(ctx, msg)
	case "run":
		return h.handleRun(ctx, msg)
	case "reset":
		return h.handleReset(ctx, msg)
	case "out":
		return h.handleOut(ctx, msg)
	case "status":
		return h.handleStatus(ctx, msg)
	case "history":
		return h.handleHistory(ctx, msg)
	case "batch":
		return h.handleBatch(ctx, msg)
	default:
		h.bot.Send(msg.Chat.ID, "Неизвестная команда. Используйте /help для справки.")
		return nil
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	created, err := h.bot.reactors.EnsureDefault(ctx, msg.From.ID)
	if err != nil {
		h.bot.logger.Error("failed to ensure default reactor", zap.Error(err))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	var response string
	if created {
		response = fmt.Sprintf("Добро пожаловать! Создан реактор %s из пресета %s.\n\nИспользуйте /help для списка команд.",
			domain.DefaultReactorName, h.bot.reactors.DefaultPresetName())
	} else {
		response = "С возвращением! Ваши реакторы на месте: /list.\n\nИспользуйте /help для списка команд."
	}

	h.bot.Send(msg.Chat.ID, response)
	return nil
}

func (h *Handler) handleHelp(msg *tgbotapi.Message) error {
	helpText := `<b>Доступные команды:</b>

/start - Регистрация и реактор по умолчанию
/help - Показать эту справку
/presets - Список пресетов
/new имя [пресет] - Создать реактор
/list - Список ваших реакторов
/remove [имя] - Удалить реактор

<b>Настройка и запуск:</b>
/inputs [имя] A B - Задать количества реагентов
/conversion [имя] X - Задать конверсию (0..1)
/split [имя] X - Задать долю разделения (0..1)
/mode [имя] single|split - Один или два выхода
/run [имя] - Запустить реакцию
/reset [имя] - Сбросить входы и историю
/out [имя] [N] - Выход N последнего прогона
/status [имя] - Состояние реактора
/history [имя] [N] - Последние прогоны

<b>Пакетные сценарии:</b>
/batch - посчитать список сценариев, по одному на строку:
  A B конверсия - один выход
  A B конверсия доля - два выхода

<b>Адресация:</b>
Команды настройки принимают имя реактора первым аргументом.
Без имени команда работает с реактором main.

<b>Примеры:</b>
• /inputs 120 80
• /conversion lab 0.85
• /batch
10 5 0.5
10 5 0.8 0.3`

	h.bot.Send(msg.Chat.ID, helpText)
	return nil
}

func (h *Handler) handlePresets(msg *tgbotapi.Message) error {
	presets := h.bot.reactors.Presets()
	h.bot.Send(msg.Chat.ID, FormatPresetList(presets, h.bot.reactors.DefaultPresetName()))
	return nil
}

func (h *Handler) handleNew(ctx context.Context, msg *tgbotapi.Message) error {
	name, preset, err := ParseNewArgs(msg.CommandArguments())
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /new имя [пресет]\nПример: /new lab rich\nПресеты: /presets")
		return err
	}

	snap, err := h.bot.reactors.Create(ctx, msg.From.ID, name, preset)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Реактор %s создан из пресета %s.", snap.Name, snap.Preset))
	return nil
}

func (h *Handler) handleList(ctx context.Context, msg *tgbotapi.Message) error {
	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	snapshots, err := h.bot.reactors.List(ctx, msg.From.ID)
	if err != nil {
		h.bot.logger.Error("failed to list reactors", zap.Error(err))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, FormatReactorList(snapshots))
	return nil
}

func (h *Handler) handleRemove(ctx context.Context, msg *tgbotapi.Message) error {
	name, err := ParseName(msg.CommandArguments())
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /remove имя")
		return err
	}

	if err := h.bot.reactors.Remove(ctx, msg.From.ID, name); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Реактор %s удален.", name))
	return nil
}

func (h *Handler) handleInputs(ctx context.Context, msg *tgbotapi.Message) error {
	name, values, err := ParseNameAndFloats(msg.CommandArguments(), 2)
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /inputs [имя] A B\nПример: /inputs 120 80")
		return err
	}

	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	if err := h.bot.reactors.SetInputs(ctx, msg.From.ID, name, values[0], values[1]); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Входы реактора %s: A=%s, B=%s.", name, formatQty(values[0]), formatQty(values[1])))
	return nil
}

func (h *Handler) handleConversion(ctx context.Context, msg *tgbotapi.Message) error {
	name, values, err := ParseNameAndFloats(msg.CommandArguments(), 1)
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /conversion [имя] X\nПример: /conversion 0.85")
		return err
	}

	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	if err := h.bot.reactors.SetConversion(ctx, msg.From.ID, name, values[0]); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Конверсия реактора %s: %s.", name, formatQty(values[0])))
	return nil
}

func (h *Handler) handleSplit(ctx context.Context, msg *tgbotapi.Message) error {
	name, values, err := ParseNameAndFloats(msg.CommandArguments(), 1)
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /split [имя] X\nПример: /split 0.3")
		return err
	}

	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	if err := h.bot.reactors.SetSplitRatio(ctx, msg.From.ID, name, values[0]); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Доля разделения реактора %s: %s.", name, formatQty(values[0])))
	return nil
}

func (h *Handler) handleMode(ctx context.Context, msg *tgbotapi.Message) error {
	name, word, err := ParseNameAndWord(msg.CommandArguments())
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /mode [имя] single|split")
		return err
	}

	mode, err := domain.ParseMode(word)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	if err := h.bot.reactors.SetMode(ctx, msg.From.ID, name, mode); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Режим реактора %s: %s.", name, mode))
	return nil
}

func (h *Handler) handleRun(ctx context.Context, msg *tgbotapi.Message) error {
	if err := h.checkRateLimit(msg); err != nil {
		return err
	}

	name, err := ParseName(msg.CommandArguments())
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /run [имя]")
		return err
	}

	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	rec, err := h.bot.reactors.Run(ctx, msg.From.ID, name)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, FormatRun(rec))
	return nil
}

func (h *Handler) handleReset(ctx context.Context, msg *tgbotapi.Message) error {
	name, err := ParseName(msg.CommandArguments())
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /reset [имя]")
		return err
	}

	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	if err := h.bot.reactors.Reset(ctx, msg.From.ID, name); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Реактор %s сброшен: входы обнулены, история очищена.", name))
	return nil
}

func (h *Handler) handleOut(ctx context.Context, msg *tgbotapi.Message) error {
	name, index, err := ParseNameAndIndex(msg.CommandArguments(), 0)
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /out [имя] [номер]\nНомер выхода считается с нуля.")
		return err
	}

	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	value, err := h.bot.reactors.Output(ctx, msg.From.ID, name, index)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Выход %d реактора %s: %s", index, name, formatQty(value)))
	return nil
}

func (h *Handler) handleStatus(ctx context.Context, msg *tgbotapi.Message) error {
	name, err := ParseName(msg.CommandArguments())
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /status [имя]")
		return err
	}

	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	snap, err := h.bot.reactors.Status(ctx, msg.From.ID, name)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, FormatStatus(snap))
	return nil
}

func (h *Handler) handleHistory(ctx context.Context, msg *tgbotapi.Message) error {
	name, limit, err := ParseNameAndIndex(msg.CommandArguments(), defaultHistoryLimit)
	if err == nil && limit < 1 {
		err = fmt.Errorf("invalid history limit %d", limit)
	}
	if err != nil {
		h.sendParseError(msg.Chat.ID, err, "Использование: /history [имя] [N]")
		return err
	}

	if err := h.ensureDefault(ctx, msg); err != nil {
		return err
	}

	records, err := h.bot.reactors.History(ctx, msg.From.ID, name, limit)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	h.bot.Send(msg.Chat.ID, FormatHistory(name, records))
	return nil
}

func (h *Handler) handleBatch(ctx context.Context, msg *tgbotapi.Message) error {
	if err := h.checkRateLimit(msg); err != nil {
		return err
	}

	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		h.bot.Send(msg.Chat.ID, "Использование: /batch со сценариями, по одному на строку:\nA B конверсия - один выход\nA B конверсия доля - два выхода\n\nПример:\n/batch\n10 5 0.5\n10 5 0.8 0.3")
		return errors.New("empty batch command")
	}

	var scenarios []domain.Scenario
	for i, line := range strings.Split(args, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sc, err := ParseScenarioLine(line)
		if err != nil {
			h.bot.Send(msg.Chat.ID, fmt.Sprintf("Строка %d: нужно 3 или 4 числа (A B конверсия [доля]).", i+1))
			return err
		}
		scenarios = append(scenarios, sc)
	}

	h.bot.SendTyping(msg.Chat.ID)

	result, err := h.bot.batches.Process(ctx, msg.From.ID, scenarios)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}

	for _, m := range SplitMessage(FormatBatch(result), maxMessageLen) {
		if err := h.bot.Send(msg.Chat.ID, m); err != nil {
			h.bot.logger.Error("failed to send message", zap.Error(err))
		}
	}
	return nil
}

// ensureDefault создает main при первом обращении, чтобы команды работали
// и без /start.
func (h *Handler) ensureDefault(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := h.bot.reactors.EnsureDefault(ctx, msg.From.ID); err != nil {
		h.bot.logger.Error("failed to ensure default reactor", zap.Error(err))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return err
	}
	return nil
}

func (h *Handler) checkRateLimit(msg *tgbotapi.Message) error {
	if h.bot.rateLimiter.Allow(msg.From.ID) {
		return nil
	}

	resetTime := h.bot.rateLimiter.ResetTime(msg.From.ID)
	wait := int(time.Until(resetTime).Seconds()) + 1
	if wait < 1 {
		wait = 1
	}

	h.bot.logger.Warn("rate limit exceeded",
		zap.Int64("user_id", msg.From.ID),
		zap.Time("reset_at", resetTime),
	)
	h.bot.RecordRateLimitHit(msg.From.ID)
	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Слишком много запросов. Подождите %d сек.", wait))
	return errRateLimited
}

// на ошибку имени отвечаем конкретикой, на прочий мусор - подсказкой
func (h *Handler) sendParseError(chatID int64, err error, usage string) {
	if errors.Is(err, domain.ErrInvalidReactorName) {
		h.bot.Send(chatID, mapErrorToMessage(err))
		return
	}
	h.bot.Send(chatID, usage)
}

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNegativeInputs):
		return "Количества реагентов не могут быть отрицательными."
	case errors.Is(err, domain.ErrConversionOutOfRange):
		return "Конверсия должна быть числом в диапазоне [0, 1]."
	case errors.Is(err, domain.ErrSplitRatioOutOfRange):
		return "Доля разделения должна быть числом в диапазоне [0, 1]."
	case errors.Is(err, domain.ErrNoSuchOutput):
		return "Такого выхода нет. Запустите реакцию (/run) и проверьте номер."
	case errors.Is(err, domain.ErrInvalidReactorName):
		return "Некорректное имя реактора. Допустимы 1-32 символа: латиница, цифры, '-' и '_'."
	case errors.Is(err, domain.ErrDuplicateReactor):
		return "Реактор с таким именем уже существует."
	case errors.Is(err, domain.ErrReactorNotFound):
		return "Реактор не найден. Ваши реакторы: /list."
	case errors.Is(err, domain.ErrReactorLimitReached):
		return "Достигнут лимит реакторов (20)."
	case errors.Is(err, domain.ErrInvalidMode):
		return "Некорректный режим. Используйте: single или split."
	case errors.Is(err, domain.ErrUnknownPreset):
		return "Пресет не найден. Доступные пресеты: /presets."
	case errors.Is(err, domain.ErrEmptyBatch):
		return "Пустой батч. Добавьте хотя бы один сценарий."
	case errors.Is(err, domain.ErrBatchTooLarge):
		return "Слишком много сценариев в батче (максимум 50)."
	case errors.Is(err, domain.ErrInvalidArgument):
		return "Недопустимый аргумент."
	case errors.Is(err, domain.ErrOutOfRange):
		return "Значение вне допустимого диапазона."
	default:
		return "Произошла ошибка. Попробуйте позже."
	}
}
