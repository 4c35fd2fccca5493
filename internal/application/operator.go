package app

import (
	"context"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
)

type OperatorService struct {
	repo port.OperatorRepository
}

func NewOperatorService(repo port.OperatorRepository) *OperatorService {
	return &OperatorService{repo: repo}
}

func (s *OperatorService) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *OperatorService) SetState(ctx context.Context, userID, chatID int64, state entity.OperatorState) (*entity.Operator, error) {
	op, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	op.SetState(state)
	if err := s.repo.Save(ctx, op); err != nil {
		return nil, err
	}

	return op, nil
}

// Subscribe включает или выключает уведомления о проходах.
func (s *OperatorService) Subscribe(ctx context.Context, userID, chatID int64, on bool) (*entity.Operator, error) {
	op, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	op.Subscribed = on
	if err := s.repo.Save(ctx, op); err != nil {
		return nil, err
	}

	return op, nil
}

// Subscribers операторы, которые получают итоги проходов.
func (s *OperatorService) Subscribers(ctx context.Context) ([]entity.Operator, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, op := range all {
		if op.Subscribed {
			out = append(out, op)
		}
	}
	return out, nil
}

func (s *OperatorService) BeginToggle(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingClass)
}

func (s *OperatorService) Cancel(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}
