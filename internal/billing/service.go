package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Período sem presença que pausa a cobrança do aluno.
const inatividadePadrao = 30 * 24 * time.Hour

// BillingRepository é o contrato de persistência do módulo.
type BillingRepository interface {
	TouchUltimaPresenca(context.Context, uuid.UUID, time.Time) error
	TemPendencias(context.Context, uuid.UUID) (bool, error)
	ReativarAssinatura(context.Context, uuid.UUID) error
	ListInativos(context.Context, time.Time) ([]AlunoInativo, error)
	PausarAluno(context.Context, uuid.UUID, uuid.UUID) error
}

// Service liga presença e cobrança: presenças mantêm a assinatura viva,
// inatividade prolongada a pausa.
type Service struct {
	repo   BillingRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo BillingRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// RegistrarPresenca é chamado a cada confirmação de presença. Atualiza a
// última presença e, se o aluno estava pausado e não tem pendências,
// reativa a assinatura.
func (s *Service) RegistrarPresenca(ctx context.Context, alunoID uuid.UUID, dataHora time.Time) error {
	if err := s.repo.TouchUltimaPresenca(ctx, alunoID, dataHora); err != nil {
		return err
	}

	pendente, err := s.repo.TemPendencias(ctx, alunoID)
	if err != nil {
		return err
	}
	if pendente {
		s.logger.Debug().Str("aluno", alunoID.String()).Msg("presença registrada, assinatura mantida por pendências")
		return nil
	}
	return s.repo.ReativarAssinatura(ctx, alunoID)
}

// PausarInativos pausa a cobrança de alunos sem presença no período.
// Cada aluno é tratado isoladamente; falhas individuais não abortam o
// lote.
func (s *Service) PausarInativos(ctx context.Context) (int, error) {
	corte := s.now().Add(-inatividadePadrao)
	inativos, err := s.repo.ListInativos(ctx, corte)
	if err != nil {
		return 0, err
	}

	pausados := 0
	for _, aluno := range inativos {
		if err := s.repo.PausarAluno(ctx, aluno.ProfileID, aluno.UserID); err != nil {
			s.logger.Error().Err(err).Str("aluno", aluno.UserID.String()).Msg("falha ao pausar aluno inativo")
			continue
		}
		pausados++
	}
	return pausados, nil
}

// RegistrarJobs agenda a varredura diária de inatividade às 02:00.
func RegistrarJobs(c *cron.Cron, svc *Service) error {
	_, err := c.AddFunc("0 2 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		pausados, err := svc.PausarInativos(ctx)
		if err != nil {
			svc.logger.Error().Err(err).Msg("varredura de inatividade falhou")
			return
		}
		svc.logger.Info().Int("pausados", pausados).Msg("varredura de inatividade concluída")
	})
	return err
}
