package port

import (
	"context"

	"ppe-gate/internal/domain/entity"
)

// OperatorRepository интерфейс хранилища операторов
type OperatorRepository interface {
	// Get возвращает оператора по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error)

	// Save сохраняет состояние оператора
	Save(ctx context.Context, operator *entity.Operator) error

	// UpdateState обновляет состояние диалога оператора
	UpdateState(ctx context.Context, userID int64, state entity.OperatorState) error

	// List возвращает всех известных операторов
	List(ctx context.Context) ([]entity.Operator, error)
}
