package agenda

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// RegistrarJobs agenda a geração semanal: todo domingo 00:05 no fuso do
// próprio cron (configurado no bootstrap com o fuso padrão da aplicação).
// A folga de cinco minutos evita a ambiguidade da meia-noite em
// transições de horário de verão.
func RegistrarJobs(c *cron.Cron, svc *Service) error {
	_, err := c.AddFunc("5 0 * * 0", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		inicio := time.Now()
		if err := svc.GerarSemanaTodasTurmas(ctx); err != nil {
			log.Error().Err(err).Msg("lote semanal de aulas falhou")
			return
		}
		log.Info().Dur("duracao", time.Since(inicio)).Msg("lote semanal de aulas concluído")
	})
	return err
}
