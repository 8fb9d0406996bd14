package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

// AlunoInativo é um aluno elegível à pausa de cobrança.
type AlunoInativo struct {
	ProfileID      uuid.UUID
	UserID         uuid.UUID
	UltimaPresenca *time.Time
}

// Repository concentra o acesso a perfis e assinaturas.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TouchUltimaPresenca grava o instante da última presença do aluno e
// reativa o treino se estava pausado por inatividade.
func (r *Repository) TouchUltimaPresenca(ctx context.Context, alunoID uuid.UUID, quando time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		UPDATE profiles
		   SET ultima_presenca_em = $2,
		       status_treino = CASE WHEN status_treino = 'inativo' THEN 'ativo' ELSE status_treino END,
		       updated_at = NOW()
		 WHERE user_id = $1 AND tipo = 'aluno'
	`, alunoID, quando.UTC())
	return err
}

// TemPendencias indica se o aluno possui pagamentos pendentes ou falhos.
func (r *Repository) TemPendencias(ctx context.Context, alunoID uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var existe bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pagamentos
			 WHERE aluno_id = $1 AND status IN ('pendente', 'falhou')
		)
	`, alunoID).Scan(&existe)
	return existe, err
}

// ReativarAssinatura retoma a cobrança de um aluno que voltou a treinar.
func (r *Repository) ReativarAssinatura(ctx context.Context, alunoID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		UPDATE assinaturas
		   SET status = 'ativa', atualizado_em = NOW()
		 WHERE aluno_id = $1 AND status = 'pausada'
	`, alunoID)
	return err
}

// ListInativos devolve alunos ativos sem presença desde o corte, exceto
// isentos vitalícios.
func (r *Repository) ListInativos(ctx context.Context, corte time.Time) ([]AlunoInativo, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, ultima_presenca_em
		  FROM profiles
		 WHERE tipo = 'aluno'
		   AND status_treino = 'ativo'
		   AND COALESCE(isento_vitalicio, FALSE) = FALSE
		   AND (ultima_presenca_em IS NULL OR ultima_presenca_em < $1)
	`, corte.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inativos []AlunoInativo
	for rows.Next() {
		var item AlunoInativo
		if err := rows.Scan(&item.ProfileID, &item.UserID, &item.UltimaPresenca); err != nil {
			return nil, err
		}
		inativos = append(inativos, item)
	}
	return inativos, rows.Err()
}

// PausarAluno marca o treino como inativo e pausa a assinatura.
func (r *Repository) PausarAluno(ctx context.Context, profileID, userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `
		UPDATE profiles SET status_treino = 'inativo', updated_at = NOW() WHERE id = $1
	`, profileID); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE assinaturas
		   SET status = 'pausada', atualizado_em = NOW()
		 WHERE aluno_id = $1 AND status = 'ativa'
	`, userID)
	return err
}
