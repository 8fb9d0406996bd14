package agenda

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tatamehub/academia/internal/db"
)

var errNotFound = errors.New("not found")

const dbTimeout = 3 * time.Second

// Status de uma aula. Os valores trafegam no JSON e no banco.
const (
	StatusAgendada          = "agendada"
	StatusCancelada         = "cancelada"
	StatusAguardandoChamada = "aguardando chamada"
	StatusFinalizada        = "finalizada"
)

// Turma é a definição recorrente: dias da semana + horário local da academia.
type Turma struct {
	ID            uuid.UUID `json:"id"`
	Nome          string    `json:"nome"`
	ModalidadeID  uuid.UUID `json:"modalidade_id"`
	ProfessorID   uuid.UUID `json:"professor_id"`
	DiasDaSemana  []string  `json:"dias_da_semana"`
	Horario       string    `json:"horario"`
	AcademiaID    uuid.UUID `json:"academia_id"`
	CodigoConvite string    `json:"codigo_convite"`
}

// Aula é uma ocorrência concreta materializada de uma turma.
type Aula struct {
	ID           uuid.UUID   `json:"id"`
	TurmaID      uuid.UUID   `json:"turma_id"`
	DataHora     time.Time   `json:"data_hora"`
	Nome         string      `json:"nome"`
	Posicao      *string     `json:"posicao,omitempty"`
	Observacoes  *string     `json:"observacoes,omitempty"`
	Status       string      `json:"status"`
	ChamadaFeita bool        `json:"chamada_feita"`
	Confirmados  []uuid.UUID `json:"confirmados"`
}

// AulaSeed são os campos baseline gravados na geração. O upsert nunca
// sobrescreve status, chamada ou confirmados de uma aula existente.
type AulaSeed struct {
	TurmaID  uuid.UUID
	DataHora time.Time
	Nome     string
}

// Academia carrega somente o necessário para resolução de fuso e permissão.
type Academia struct {
	ID       uuid.UUID `json:"id"`
	Nome     string    `json:"nome"`
	Timezone *string   `json:"timezone,omitempty"`
	Country  string    `json:"country"`
	Region   string    `json:"region"`
	GestorID uuid.UUID `json:"gestor_id"`
}

// Profile são os campos de perfil usados por este módulo (resolução de
// professor e mapeamento de reconhecimento facial).
type Profile struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Tipo         string
	Nome         string
	AcademiaID   *uuid.UUID
	StatusTreino string
	FacePersonID *string
}

// Repository fornece acesso aos dados de turmas, aulas e colaboradores.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const turmaCols = `t.id, t.nome, t.modalidade_id, t.professor_id, t.dias_da_semana, t.horario, t.academia_id, t.codigo_convite`

func scanTurma(row pgx.Row) (Turma, error) {
	var t Turma
	err := row.Scan(&t.ID, &t.Nome, &t.ModalidadeID, &t.ProfessorID, &t.DiasDaSemana, &t.Horario, &t.AcademiaID, &t.CodigoConvite)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, errNotFound
	}
	return t, err
}

func (r *Repository) collectTurmas(rows pgx.Rows) ([]Turma, error) {
	defer rows.Close()
	var turmas []Turma
	for rows.Next() {
		var t Turma
		if err := rows.Scan(&t.ID, &t.Nome, &t.ModalidadeID, &t.ProfessorID, &t.DiasDaSemana, &t.Horario, &t.AcademiaID, &t.CodigoConvite); err != nil {
			return nil, err
		}
		turmas = append(turmas, t)
	}
	return turmas, rows.Err()
}

func (r *Repository) GetTurma(ctx context.Context, id uuid.UUID) (Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanTurma(r.pool.QueryRow(ctx, `
		SELECT `+turmaCols+`
		FROM turmas t
		WHERE t.id = $1
	`, id))
}

func (r *Repository) InsertTurma(ctx context.Context, t Turma) (Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.pool.QueryRow(ctx, `
		INSERT INTO turmas (nome, modalidade_id, professor_id, dias_da_semana, horario, academia_id, codigo_convite)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, t.Nome, t.ModalidadeID, t.ProfessorID, t.DiasDaSemana, t.Horario, t.AcademiaID, t.CodigoConvite).Scan(&t.ID)
	return t, err
}

// ListTurmas devolve todas as definições recorrentes (lote semanal).
func (r *Repository) ListTurmas(ctx context.Context) ([]Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+turmaCols+` FROM turmas t ORDER BY t.nome`)
	if err != nil {
		return nil, err
	}
	return r.collectTurmas(rows)
}

// ListTurmasDoProfessor aceita múltiplos ids porque o professor pode estar
// referenciado pelo id de usuário ou pelo id de perfil em turmas antigas.
func (r *Repository) ListTurmasDoProfessor(ctx context.Context, professorIDs []uuid.UUID, academiaID *uuid.UUID) ([]Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+turmaCols+`
		FROM turmas t
		WHERE t.professor_id = ANY($1)
		  AND ($2::uuid IS NULL OR t.academia_id = $2)
		ORDER BY t.nome
	`, professorIDs, academiaID)
	if err != nil {
		return nil, err
	}
	return r.collectTurmas(rows)
}

func (r *Repository) ListTurmasDoAluno(ctx context.Context, alunoID uuid.UUID) ([]Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+turmaCols+`
		FROM turmas t
		JOIN turmas_alunos ta ON ta.turma_id = t.id
		WHERE ta.aluno_id = $1
		ORDER BY t.nome
	`, alunoID)
	if err != nil {
		return nil, err
	}
	return r.collectTurmas(rows)
}

func (r *Repository) ListTurmasDaAcademia(ctx context.Context, academiaID uuid.UUID) ([]Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+turmaCols+`
		FROM turmas t
		WHERE t.academia_id = $1
		ORDER BY t.nome
	`, academiaID)
	if err != nil {
		return nil, err
	}
	return r.collectTurmas(rows)
}

func (r *Repository) ListAlunosDaTurma(ctx context.Context, turmaID uuid.UUID) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT aluno_id FROM turmas_alunos WHERE turma_id = $1`, turmaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alunos []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		alunos = append(alunos, id)
	}
	return alunos, rows.Err()
}

func (r *Repository) GetAcademia(ctx context.Context, id uuid.UUID) (Academia, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var a Academia
	err := r.pool.QueryRow(ctx, `
		SELECT id, nome, timezone, COALESCE(endereco_country, ''), COALESCE(endereco_region, ''), gestor_id
		FROM academias
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Nome, &a.Timezone, &a.Country, &a.Region, &a.GestorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, errNotFound
	}
	return a, err
}

func (r *Repository) GetAcademiaDoGestor(ctx context.Context, gestorID uuid.UUID) (Academia, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var a Academia
	err := r.pool.QueryRow(ctx, `
		SELECT id, nome, timezone, COALESCE(endereco_country, ''), COALESCE(endereco_region, ''), gestor_id
		FROM academias
		WHERE gestor_id = $1
		LIMIT 1
	`, gestorID).Scan(&a.ID, &a.Nome, &a.Timezone, &a.Country, &a.Region, &a.GestorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, errNotFound
	}
	return a, err
}

// ListAcademiasPorIDs pré-carrega academias em uma única ida ao banco
// para o lote semanal.
func (r *Repository) ListAcademiasPorIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Academia, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, nome, timezone, COALESCE(endereco_country, ''), COALESCE(endereco_region, ''), gestor_id
		FROM academias
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]Academia, len(ids))
	for rows.Next() {
		var a Academia
		if err := rows.Scan(&a.ID, &a.Nome, &a.Timezone, &a.Country, &a.Region, &a.GestorID); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

// UpsertAula insere a aula se ausente. Conflito na chave
// (turma_id, data_hora) é o contrato de idempotência: a linha existente é
// devolvida intacta, sem tocar em status, chamada ou confirmados.
func (r *Repository) UpsertAula(ctx context.Context, seed AulaSeed) (Aula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO aulas (turma_id, data_hora, nome, status)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (turma_id, data_hora) DO NOTHING
		RETURNING id
	`, seed.TurmaID, seed.DataHora, seed.Nome, StatusAgendada).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Outra geração (lote ou on-demand) chegou primeiro.
		return r.getAulaPorChave(ctx, seed.TurmaID, seed.DataHora)
	}
	if err != nil {
		return Aula{}, err
	}
	return r.GetAula(ctx, id)
}

func (r *Repository) getAulaPorChave(ctx context.Context, turmaID uuid.UUID, dataHora time.Time) (Aula, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM aulas WHERE turma_id = $1 AND data_hora = $2
	`, turmaID, dataHora).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Aula{}, errNotFound
	}
	if err != nil {
		return Aula{}, err
	}
	return r.GetAula(ctx, id)
}

const aulaSelect = `
	SELECT a.id, a.turma_id, a.data_hora, a.nome, a.posicao, a.observacoes, a.status, a.chamada_feita,
	       COALESCE(ARRAY_AGG(ac.aluno_id) FILTER (WHERE ac.aluno_id IS NOT NULL), '{}')
	FROM aulas a
	LEFT JOIN aulas_confirmados ac ON ac.aula_id = a.id
`

func scanAula(row pgx.Row) (Aula, error) {
	var a Aula
	err := row.Scan(&a.ID, &a.TurmaID, &a.DataHora, &a.Nome, &a.Posicao, &a.Observacoes, &a.Status, &a.ChamadaFeita, &a.Confirmados)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, errNotFound
	}
	return a, err
}

func (r *Repository) GetAula(ctx context.Context, id uuid.UUID) (Aula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanAula(r.pool.QueryRow(ctx, aulaSelect+`
		WHERE a.id = $1
		GROUP BY a.id
	`, id))
}

// ListAulasSemana devolve as aulas das turmas na janela [start, end),
// ordenadas por data_hora.
func (r *Repository) ListAulasSemana(ctx context.Context, turmaIDs []uuid.UUID, start, end time.Time) ([]Aula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, aulaSelect+`
		WHERE a.turma_id = ANY($1) AND a.data_hora >= $2 AND a.data_hora < $3
		GROUP BY a.id
		ORDER BY a.data_hora
	`, turmaIDs, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aulas []Aula
	for rows.Next() {
		var a Aula
		if err := rows.Scan(&a.ID, &a.TurmaID, &a.DataHora, &a.Nome, &a.Posicao, &a.Observacoes, &a.Status, &a.ChamadaFeita, &a.Confirmados); err != nil {
			return nil, err
		}
		aulas = append(aulas, a)
	}
	return aulas, rows.Err()
}

// AulaPatch aplica edições parciais; nil significa "não alterar".
type AulaPatch struct {
	Nome        *string
	Posicao     *string
	Observacoes *string
	Status      *string
}

func (r *Repository) UpdateAula(ctx context.Context, id uuid.UUID, patch AulaPatch) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE aulas
		SET nome        = COALESCE($2, nome),
		    posicao     = COALESCE($3, posicao),
		    observacoes = COALESCE($4, observacoes),
		    status      = COALESCE($5, status),
		    updated_at  = now()
		WHERE id = $1
	`, id, patch.Nome, patch.Posicao, patch.Observacoes, patch.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

func (r *Repository) UpdateAulaStatus(ctx context.Context, id uuid.UUID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `UPDATE aulas SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	return err
}

func (r *Repository) AddConfirmado(ctx context.Context, aulaID, alunoID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO aulas_confirmados (aula_id, aluno_id)
		VALUES ($1,$2)
		ON CONFLICT (aula_id, aluno_id) DO NOTHING
	`, aulaID, alunoID)
	return err
}

func (r *Repository) RemoveConfirmado(ctx context.Context, aulaID, alunoID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `DELETE FROM aulas_confirmados WHERE aula_id = $1 AND aluno_id = $2`, aulaID, alunoID)
	return err
}

// ConfirmarChamadaFoto grava as confirmações reconhecidas e, quando não há
// pendências manuais, marca a chamada como feita — tudo na mesma transação.
func (r *Repository) ConfirmarChamadaFoto(ctx context.Context, aulaID uuid.UUID, alunoIDs []uuid.UUID, chamadaFeita bool) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, alunoID := range alunoIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO aulas_confirmados (aula_id, aluno_id)
				VALUES ($1,$2)
				ON CONFLICT (aula_id, aluno_id) DO NOTHING
			`, aulaID, alunoID); err != nil {
				return err
			}
		}
		if chamadaFeita {
			if _, err := tx.Exec(ctx, `UPDATE aulas SET chamada_feita = TRUE, updated_at = now() WHERE id = $1`, aulaID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetProfilePorUsuario(ctx context.Context, userID uuid.UUID, tipo string) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var p Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, tipo, nome, academia_id, status_treino, face_person_id
		FROM profiles
		WHERE user_id = $1 AND tipo = $2
	`, userID, tipo).Scan(&p.ID, &p.UserID, &p.Tipo, &p.Nome, &p.AcademiaID, &p.StatusTreino, &p.FacePersonID)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, errNotFound
	}
	return p, err
}

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var p Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, tipo, nome, academia_id, status_treino, face_person_id
		FROM profiles
		WHERE id = $1
	`, id).Scan(&p.ID, &p.UserID, &p.Tipo, &p.Nome, &p.AcademiaID, &p.StatusTreino, &p.FacePersonID)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, errNotFound
	}
	return p, err
}

// ListProfilesAlunos devolve os perfis de aluno dos usuários informados,
// com o id de pessoa do serviço de reconhecimento quando cadastrado.
func (r *Repository) ListProfilesAlunos(ctx context.Context, userIDs []uuid.UUID) ([]Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, tipo, nome, academia_id, status_treino, face_person_id
		FROM profiles
		WHERE tipo = 'aluno' AND user_id = ANY($1)
	`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Tipo, &p.Nome, &p.AcademiaID, &p.StatusTreino, &p.FacePersonID); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
