package port

import (
	"context"

	"ppe-gate/internal/domain/entity"
)

// Notifier получатель событий гейта и итогов проходов.
// Вызовы идут из цикла обработки, реализация не должна надолго блокировать.
type Notifier interface {
	// NotifyGateEvent сообщает о смене уровня, разрешении прохода или сбросе экрана
	NotifyGateEvent(ctx context.Context, event entity.GateEvent) error

	// NotifyOutcome сообщает итог прохода проверки
	NotifyOutcome(ctx context.Context, outcome entity.PassOutcome) error
}
