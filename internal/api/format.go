package telegram

import (
	"fmt"
	"strings"

	app "ppe-gate/internal/application"
	"ppe-gate/internal/domain/entity"
)

func decisionIcon(d entity.AccessDecision) string {
	switch d {
	case entity.DecisionGranted:
		return "✅"
	case entity.DecisionMisplaced:
		return "⚠️"
	default:
		return "⛔"
	}
}

func decisionText(d entity.AccessDecision) string {
	switch d {
	case entity.DecisionGranted:
		return "Доступ разрешён"
	case entity.DecisionMisplaced:
		return "СИЗ надеты неправильно"
	default:
		return "Доступ запрещён"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatOutcome текст итога прохода: решение и статус каждого обязательного СИЗ
func FormatOutcome(o entity.PassOutcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", decisionIcon(o.Decision), decisionText(o.Decision))
	fmt.Fprintf(&sb, "Проход %s, %s\n", shortID(o.ID), o.At.Format("15:04:05"))

	for _, c := range o.Required.Classes() {
		if o.Result.Status(c) == entity.StatusMatched {
			fmt.Fprintf(&sb, "• %s: ✅ %.2f\n", c, o.Result.Confidence[c])
		} else {
			fmt.Fprintf(&sb, "• %s: ❌\n", c)
		}
	}
	if o.Result.Misplaced > 0 {
		fmt.Fprintf(&sb, "Не на месте: %d\n", o.Result.Misplaced)
	}
	return sb.String()
}

// FormatRequired список обязательных СИЗ
func FormatRequired(rs entity.RequiredSet) string {
	var sb strings.Builder
	sb.WriteString("🦺 Обязательные СИЗ:\n")
	for _, c := range entity.AllClasses() {
		mark := "⬜"
		if rs.Enabled(c) {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, c)
	}
	return sb.String()
}

// FormatStatus то, что сейчас на экране поста
func FormatStatus(s app.StatusSnapshot) string {
	head := fmt.Sprintf("🧍 Уровень удержания позы: %d/3\n", s.HoldLevel)
	if s.Last == nil {
		return head + "Экран пуст."
	}
	return head + FormatOutcome(*s.Last)
}
