package container

import (
	"github.com/rs/zerolog"

	app "ppe-gate/internal/application"
	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/inspection"
	"ppe-gate/internal/domain/port"
	"ppe-gate/internal/timeutil"
)

type Container struct {
	OperatorService   *app.OperatorService
	InspectionService *app.InspectionService
	Session           *app.Session
	Board             *app.StatusBoard
	Clock             timeutil.Clock
}

func New(
	operatorRepo port.OperatorRepository,
	detector port.PPEDetector,
	required entity.RequiredSet,
	gateCfg inspection.GateConfig,
	clock timeutil.Clock,
	logger zerolog.Logger,
) (*Container, error) {
	if err := gateCfg.Validate(); err != nil {
		return nil, err
	}
	session, err := app.NewSession(required)
	if err != nil {
		return nil, err
	}

	board := app.NewStatusBoard()
	gate := inspection.NewPostureGate(gateCfg, clock)
	inspectionService := app.NewInspectionService(gate, inspection.NewZoneMatcher(), detector, session, clock, logger)
	inspectionService.AddNotifier(board)

	return &Container{
		OperatorService:   app.NewOperatorService(operatorRepo),
		InspectionService: inspectionService,
		Session:           session,
		Board:             board,
		Clock:             clock,
	}, nil
}
