package entity

// OperatorState состояние оператора в диалоге с ботом
type OperatorState string

const (
	StateMainMenu      OperatorState = "main_menu"      // В главном меню
	StateAwaitingClass OperatorState = "awaiting_class" // Ожидание имени СИЗ для переключения
)

// Operator оператор поста охраны, управляющий гейтом через бота
type Operator struct {
	ID         int64         // Telegram User ID
	ChatID     int64         // Telegram Chat ID
	State      OperatorState // Текущее состояние диалога
	Subscribed bool          // Получает уведомления о проходах
}

// NewOperator создаёт оператора с начальным состоянием
func NewOperator(userID, chatID int64) *Operator {
	return &Operator{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние диалога
func (o *Operator) SetState(state OperatorState) {
	o.State = state
}
