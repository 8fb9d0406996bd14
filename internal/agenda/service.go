package agenda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/tatamehub/academia/internal/facerec"
	"github.com/tatamehub/academia/internal/timezone"
)

var (
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("dados inválidos")
)

// Tipos de perfil aceitos no token.
const (
	TipoAluno     = "aluno"
	TipoProfessor = "professor"
	TipoGestor    = "gestor"
)

// Viewer carrega a identidade resolvida da sessão, passada explicitamente
// a cada operação.
type Viewer struct {
	UserID     uuid.UUID
	Tipo       string
	AcademiaID *uuid.UUID
	ProfileID  *uuid.UUID
}

// AgendaRepository é o contrato de persistência do módulo.
type AgendaRepository interface {
	GetTurma(context.Context, uuid.UUID) (Turma, error)
	InsertTurma(context.Context, Turma) (Turma, error)
	ListTurmas(context.Context) ([]Turma, error)
	ListTurmasDoProfessor(context.Context, []uuid.UUID, *uuid.UUID) ([]Turma, error)
	ListTurmasDoAluno(context.Context, uuid.UUID) ([]Turma, error)
	ListTurmasDaAcademia(context.Context, uuid.UUID) ([]Turma, error)
	ListAlunosDaTurma(context.Context, uuid.UUID) ([]uuid.UUID, error)
	GetAcademia(context.Context, uuid.UUID) (Academia, error)
	GetAcademiaDoGestor(context.Context, uuid.UUID) (Academia, error)
	ListAcademiasPorIDs(context.Context, []uuid.UUID) (map[uuid.UUID]Academia, error)
	UpsertAula(context.Context, AulaSeed) (Aula, error)
	GetAula(context.Context, uuid.UUID) (Aula, error)
	ListAulasSemana(context.Context, []uuid.UUID, time.Time, time.Time) ([]Aula, error)
	UpdateAula(context.Context, uuid.UUID, AulaPatch) error
	UpdateAulaStatus(context.Context, uuid.UUID, string) error
	AddConfirmado(context.Context, uuid.UUID, uuid.UUID) error
	RemoveConfirmado(context.Context, uuid.UUID, uuid.UUID) error
	ConfirmarChamadaFoto(context.Context, uuid.UUID, []uuid.UUID, bool) error
	GetProfilePorUsuario(context.Context, uuid.UUID, string) (Profile, error)
	GetProfile(context.Context, uuid.UUID) (Profile, error)
	ListProfilesAlunos(context.Context, []uuid.UUID) ([]Profile, error)
}

// PresencaNotifier é o colaborador de cobrança notificado a cada presença.
type PresencaNotifier interface {
	RegistrarPresenca(ctx context.Context, alunoID uuid.UUID, dataHora time.Time) error
}

// FaceClient é o serviço externo de reconhecimento facial, opcional.
type FaceClient interface {
	DetectFromURL(ctx context.Context, imageURL string) ([]string, error)
	Detect(ctx context.Context, image []byte) ([]string, error)
	Identify(ctx context.Context, faceIDs []string, threshold float64) ([]facerec.Identification, error)
}

// Service contém as regras da agenda semanal de aulas.
type Service struct {
	repo          AgendaRepository
	cache         *redis.Client
	tz            timezone.Resolver
	billing       PresencaNotifier
	faces         FaceClient
	faceThreshold float64
	now           func() time.Time
}

func NewService(repo AgendaRepository, cache *redis.Client, tz timezone.Resolver, billing PresencaNotifier, faces FaceClient, faceThreshold float64) *Service {
	if faceThreshold <= 0 {
		faceThreshold = 0.5
	}
	return &Service{
		repo:          repo,
		cache:         cache,
		tz:            tz,
		billing:       billing,
		faces:         faces,
		faceThreshold: faceThreshold,
		now:           time.Now,
	}
}

// AulaSemana é a aula enriquecida para resposta de listagem.
type AulaSemana struct {
	Aula
	TempoRestante *string `json:"tempo_restante"`
}

// DerivarStatus aplica a máquina de estados por tempo. Aulas canceladas
// nunca são recalculadas.
func DerivarStatus(a Aula, now time.Time) string {
	if a.Status == StatusCancelada {
		return StatusCancelada
	}
	if !now.Before(a.DataHora) {
		if a.ChamadaFeita {
			return StatusFinalizada
		}
		return StatusAguardandoChamada
	}
	return StatusAgendada
}

func (s *Service) location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	log.Warn().Str("timezone", name).Msg("timezone desconhecido, usando padrão")
	loc, err = time.LoadLocation(s.tz.Default())
	if err != nil {
		return time.UTC
	}
	return loc
}

func tzAcademia(a *Academia) *timezone.Academia {
	if a == nil {
		return nil
	}
	explicit := ""
	if a.Timezone != nil {
		explicit = *a.Timezone
	}
	return &timezone.Academia{Timezone: explicit, Country: a.Country, Region: a.Region}
}

// timezoneDaAcademia nunca falha: ausência da academia cai no padrão.
func (s *Service) timezoneDaAcademia(ctx context.Context, academiaID uuid.UUID) string {
	academia, err := s.repo.GetAcademia(ctx, academiaID)
	if err != nil {
		return s.tz.Default()
	}
	return s.tz.Resolve(tzAcademia(&academia))
}

func (s *Service) timezoneDaTurma(ctx context.Context, turma Turma, override string) string {
	if tz := strings.TrimSpace(override); tz != "" {
		return tz
	}
	return s.timezoneDaAcademia(ctx, turma.AcademiaID)
}

// expandirTurma materializa os dias resolvíveis da turma dentro da semana.
// Rótulos não reconhecidos são pulados, não invalidam a turma.
func expandirTurma(t Turma, weekStart time.Time, loc *time.Location) []AulaSeed {
	seeds := make([]AulaSeed, 0, len(t.DiasDaSemana))
	for _, label := range t.DiasDaSemana {
		idx, ok := DayIndex(label)
		if !ok {
			log.Debug().Str("turma", t.ID.String()).Str("dia", label).Msg("dia da semana não reconhecido, pulando")
			continue
		}
		dataHora, err := OccurrenceInstant(weekStart, idx, t.Horario, loc)
		if err != nil {
			log.Warn().Err(err).Str("turma", t.ID.String()).Msg("horário inválido, pulando ocorrência")
			continue
		}
		seeds = append(seeds, AulaSeed{TurmaID: t.ID, DataHora: dataHora, Nome: "Aula - " + t.Nome})
	}
	return seeds
}

// gerarSemanaTurma faz o upsert de cada ocorrência. Falhas individuais são
// logadas e não interrompem as demais (melhor esforço, sem transação).
func (s *Service) gerarSemanaTurma(ctx context.Context, t Turma, weekStart time.Time, loc *time.Location) []Aula {
	var criadas []Aula
	for _, seed := range expandirTurma(t, weekStart, loc) {
		aula, err := s.repo.UpsertAula(ctx, seed)
		if err != nil {
			log.Error().Err(err).Str("turma", t.ID.String()).Time("data_hora", seed.DataHora).Msg("falha ao gerar aula")
			continue
		}
		criadas = append(criadas, aula)
	}
	return criadas
}

// GerarSemanaTodasTurmas é o corpo do lote semanal: cada turma computa o
// início de semana no fuso da própria academia.
func (s *Service) GerarSemanaTodasTurmas(ctx context.Context) error {
	turmas, err := s.repo.ListTurmas(ctx)
	if err != nil {
		return err
	}
	if len(turmas) == 0 {
		return nil
	}

	idSet := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(turmas))
	for _, t := range turmas {
		if _, ok := idSet[t.AcademiaID]; !ok {
			idSet[t.AcademiaID] = struct{}{}
			ids = append(ids, t.AcademiaID)
		}
	}
	academias, err := s.repo.ListAcademiasPorIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, t := range turmas {
		var academia *Academia
		if a, ok := academias[t.AcademiaID]; ok {
			academia = &a
		}
		loc := s.location(s.tz.Resolve(tzAcademia(academia)))
		weekStart := WeekStart(loc, s.now())
		s.gerarSemanaTurma(ctx, t, weekStart, loc)
	}
	return nil
}

// CriarTurmaInput são os dados aceitos na criação de turma.
type CriarTurmaInput struct {
	Nome         string
	ModalidadeID uuid.UUID
	ProfessorID  uuid.UUID
	DiasDaSemana []string
	Horario      string
	AcademiaID   *uuid.UUID
}

// CriarTurma cria a definição recorrente e já gera as aulas da próxima
// semana, para o criador não esperar o lote de domingo. Falha na geração
// não derruba a criação.
func (s *Service) CriarTurma(ctx context.Context, viewer Viewer, in CriarTurmaInput) (Turma, []Aula, error) {
	if viewer.Tipo != TipoGestor {
		return Turma{}, nil, ErrForbidden
	}
	if strings.TrimSpace(in.Nome) == "" || len(in.DiasDaSemana) == 0 {
		return Turma{}, nil, fmt.Errorf("%w: nome e dias da semana são obrigatórios", ErrValidation)
	}
	if _, _, err := parseHorario(in.Horario); err != nil {
		return Turma{}, nil, fmt.Errorf("%w: horário deve ser HH:MM", ErrValidation)
	}
	if in.ModalidadeID == uuid.Nil || in.ProfessorID == uuid.Nil {
		return Turma{}, nil, fmt.Errorf("%w: modalidade e professor são obrigatórios", ErrValidation)
	}

	academia, err := s.resolverAcademia(ctx, viewer, in.AcademiaID)
	if err != nil {
		return Turma{}, nil, err
	}

	// O professor pode vir como id de perfil; resolver para o usuário.
	professorID := in.ProfessorID
	if profile, err := s.repo.GetProfile(ctx, professorID); err == nil && profile.Tipo == TipoProfessor {
		professorID = profile.UserID
	}

	turma := Turma{
		Nome:          strings.TrimSpace(in.Nome),
		ModalidadeID:  in.ModalidadeID,
		ProfessorID:   professorID,
		DiasDaSemana:  in.DiasDaSemana,
		Horario:       strings.TrimSpace(in.Horario),
		AcademiaID:    academia.ID,
		CodigoConvite: uuid.NewString(),
	}
	turma, err = s.repo.InsertTurma(ctx, turma)
	if err != nil {
		return Turma{}, nil, err
	}

	loc := s.location(s.tz.Resolve(tzAcademia(&academia)))
	proximaSemana := WeekEnd(WeekStart(loc, s.now()))
	aulas := s.gerarSemanaTurma(ctx, turma, proximaSemana, loc)

	return turma, aulas, nil
}

func (s *Service) resolverAcademia(ctx context.Context, viewer Viewer, academiaID *uuid.UUID) (Academia, error) {
	switch {
	case academiaID != nil && *academiaID != uuid.Nil:
		return s.repo.GetAcademia(ctx, *academiaID)
	case viewer.AcademiaID != nil && *viewer.AcademiaID != uuid.Nil:
		return s.repo.GetAcademia(ctx, *viewer.AcademiaID)
	}
	academia, err := s.repo.GetAcademiaDoGestor(ctx, viewer.UserID)
	if errors.Is(err, errNotFound) {
		return Academia{}, fmt.Errorf("%w: academia não informada e não resolvida pela sessão", ErrValidation)
	}
	return academia, err
}

// professorDaTurma considera tanto o id de usuário quanto o de perfil.
func professorDaTurma(viewer Viewer, turma Turma) bool {
	if viewer.Tipo != TipoProfessor && viewer.Tipo != TipoGestor {
		return false
	}
	if turma.ProfessorID == viewer.UserID {
		return true
	}
	return viewer.ProfileID != nil && turma.ProfessorID == *viewer.ProfileID
}

// professorAtivo: ausência de perfil é normal e conta como ativo.
func (s *Service) professorAtivo(ctx context.Context, userID uuid.UUID) bool {
	profile, err := s.repo.GetProfilePorUsuario(ctx, userID, TipoProfessor)
	if err != nil {
		return true
	}
	return profile.StatusTreino == "" || profile.StatusTreino == "ativo"
}

func (s *Service) podeGerarTurma(ctx context.Context, viewer Viewer, turma Turma) bool {
	if viewer.Tipo == TipoGestor {
		return true
	}
	return professorDaTurma(viewer, turma) && s.professorAtivo(ctx, viewer.UserID)
}

// GerarSemanaTurma materializa a semana corrente de uma turma sob demanda.
func (s *Service) GerarSemanaTurma(ctx context.Context, viewer Viewer, turmaID uuid.UUID, tzOverride string) ([]Aula, error) {
	turma, err := s.repo.GetTurma(ctx, turmaID)
	if err != nil {
		return nil, err
	}
	if !s.podeGerarTurma(ctx, viewer, turma) {
		return nil, ErrForbidden
	}

	loc := s.location(s.timezoneDaTurma(ctx, turma, tzOverride))
	weekStart := WeekStart(loc, s.now())
	return s.gerarSemanaTurma(ctx, turma, weekStart, loc), nil
}

// GerarSemanaAcademia materializa a semana corrente de todas as turmas da
// academia.
func (s *Service) GerarSemanaAcademia(ctx context.Context, viewer Viewer, academiaID uuid.UUID, tzOverride string) ([]Aula, error) {
	if viewer.Tipo != TipoGestor {
		return nil, ErrForbidden
	}
	turmas, err := s.repo.ListTurmasDaAcademia(ctx, academiaID)
	if err != nil {
		return nil, err
	}

	tzName := strings.TrimSpace(tzOverride)
	if tzName == "" {
		tzName = s.timezoneDaAcademia(ctx, academiaID)
	}
	loc := s.location(tzName)
	weekStart := WeekStart(loc, s.now())

	var criadas []Aula
	for _, t := range turmas {
		criadas = append(criadas, s.gerarSemanaTurma(ctx, t, weekStart, loc)...)
	}
	return criadas, nil
}

// ListarSemanaTurma lista a janela semanal de uma turma, com backfill
// on-demand quando o lote ainda não gerou nada.
func (s *Service) ListarSemanaTurma(ctx context.Context, viewer Viewer, turmaID uuid.UUID, tzOverride string) ([]AulaSemana, error) {
	turma, err := s.repo.GetTurma(ctx, turmaID)
	if err != nil {
		return nil, err
	}

	permitido := viewer.Tipo == TipoGestor || professorDaTurma(viewer, turma)
	if !permitido && viewer.Tipo == TipoAluno {
		alunos, err := s.repo.ListAlunosDaTurma(ctx, turma.ID)
		if err != nil {
			return nil, err
		}
		permitido = contains(alunos, viewer.UserID)
	}
	if !permitido {
		return nil, ErrForbidden
	}

	loc := s.location(s.timezoneDaTurma(ctx, turma, tzOverride))
	weekStart := WeekStart(loc, s.now())
	return s.semanaComBackfill(ctx, []Turma{turma}, weekStart, loc)
}

// ListarSemanaAcademia lista a semana de todas as turmas de uma academia
// do gestor.
func (s *Service) ListarSemanaAcademia(ctx context.Context, viewer Viewer, academiaID uuid.UUID, tzOverride string) ([]AulaSemana, error) {
	if viewer.Tipo != TipoGestor {
		return nil, ErrForbidden
	}
	academia, err := s.repo.GetAcademia(ctx, academiaID)
	if err != nil {
		return nil, err
	}
	if academia.GestorID != viewer.UserID {
		return nil, ErrForbidden
	}

	turmas, err := s.repo.ListTurmasDaAcademia(ctx, academiaID)
	if err != nil {
		return nil, err
	}
	if len(turmas) == 0 {
		return []AulaSemana{}, nil
	}

	tzName := strings.TrimSpace(tzOverride)
	if tzName == "" {
		tzName = s.tz.Resolve(tzAcademia(&academia))
	}
	loc := s.location(tzName)
	weekStart := WeekStart(loc, s.now())
	return s.semanaComBackfill(ctx, turmas, weekStart, loc)
}

// MinhasAulasSemana resolve as turmas relevantes pelo papel do viewer e
// devolve a semana corrente com backfill, status atualizado e tempo
// restante.
func (s *Service) MinhasAulasSemana(ctx context.Context, viewer Viewer, tzOverride string) ([]AulaSemana, error) {
	tzName := s.tz.Or(tzOverride)

	var turmas []Turma
	var err error
	switch viewer.Tipo {
	case TipoProfessor:
		ids := []uuid.UUID{viewer.UserID}
		if viewer.ProfileID != nil {
			ids = append(ids, *viewer.ProfileID)
		}
		turmas, err = s.repo.ListTurmasDoProfessor(ctx, ids, nil)
	case TipoAluno:
		turmas, err = s.repo.ListTurmasDoAluno(ctx, viewer.UserID)
	case TipoGestor:
		turmas, tzName, err = s.turmasDoGestor(ctx, viewer, tzOverride)
	default:
		return []AulaSemana{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(turmas) == 0 {
		return []AulaSemana{}, nil
	}

	loc := s.location(tzName)
	weekStart := WeekStart(loc, s.now())

	cacheKey := fmt.Sprintf("agenda:minhas:%s:%s:%s", viewer.UserID, tzName, weekStart.Format("2006-01-02"))
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []AulaSemana
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	aulas, err := s.semanaComBackfill(ctx, turmas, weekStart, loc)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(aulas); err == nil {
			_ = s.cache.Set(ctx, cacheKey, payload, 60*time.Second).Err()
		}
	}
	return aulas, nil
}

// turmasDoGestor: gestor com perfil de professor enxerga as turmas desse
// perfil (no fuso da academia do perfil); sem perfil, todas as turmas da
// academia que administra.
func (s *Service) turmasDoGestor(ctx context.Context, viewer Viewer, tzOverride string) ([]Turma, string, error) {
	tzName := s.tz.Or(tzOverride)
	override := strings.TrimSpace(tzOverride) != ""

	if profile, err := s.repo.GetProfilePorUsuario(ctx, viewer.UserID, TipoProfessor); err == nil {
		academiaID := profile.AcademiaID
		if academiaID == nil {
			academiaID = viewer.AcademiaID
		}
		if !override && academiaID != nil {
			tzName = s.timezoneDaAcademia(ctx, *academiaID)
		}
		ids := []uuid.UUID{viewer.UserID, profile.ID, profile.UserID}
		turmas, err := s.repo.ListTurmasDoProfessor(ctx, ids, academiaID)
		return turmas, tzName, err
	}

	academiaID := viewer.AcademiaID
	if academiaID == nil {
		academia, err := s.repo.GetAcademiaDoGestor(ctx, viewer.UserID)
		if errors.Is(err, errNotFound) {
			return nil, tzName, nil
		}
		if err != nil {
			return nil, tzName, err
		}
		academiaID = &academia.ID
	}
	if !override {
		tzName = s.timezoneDaAcademia(ctx, *academiaID)
	}
	turmas, err := s.repo.ListTurmasDaAcademia(ctx, *academiaID)
	return turmas, tzName, err
}

// semanaComBackfill consulta a janela, gera on-demand as turmas sem
// nenhuma aula nela, reconsulta e materializa status + tempo restante.
func (s *Service) semanaComBackfill(ctx context.Context, turmas []Turma, weekStart time.Time, loc *time.Location) ([]AulaSemana, error) {
	ids := make([]uuid.UUID, len(turmas))
	for i, t := range turmas {
		ids[i] = t.ID
	}
	weekEnd := WeekEnd(weekStart)

	aulas, err := s.repo.ListAulasSemana(ctx, ids, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	existentes := make(map[uuid.UUID]struct{}, len(aulas))
	for _, a := range aulas {
		existentes[a.TurmaID] = struct{}{}
	}
	backfilled := false
	for _, t := range turmas {
		if _, ok := existentes[t.ID]; ok {
			continue
		}
		s.gerarSemanaTurma(ctx, t, weekStart, loc)
		backfilled = true
	}
	if backfilled {
		aulas, err = s.repo.ListAulasSemana(ctx, ids, weekStart, weekEnd)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	out := make([]AulaSemana, 0, len(aulas))
	for _, a := range aulas {
		if desired := DerivarStatus(a, now); desired != a.Status {
			if err := s.repo.UpdateAulaStatus(ctx, a.ID, desired); err != nil {
				log.Error().Err(err).Str("aula", a.ID.String()).Msg("falha ao persistir status derivado")
			} else {
				a.Status = desired
			}
		}
		out = append(out, AulaSemana{Aula: a, TempoRestante: TempoRestante(now, a.DataHora)})
	}
	return out, nil
}

// AtualizarAulaInput aplica edições do professor/gestor. Status aceita
// apenas cancelamento (ou volta para agendada).
type AtualizarAulaInput struct {
	Nome        *string
	Posicao     *string
	Observacoes *string
	Status      *string
}

func (s *Service) AtualizarAula(ctx context.Context, viewer Viewer, aulaID uuid.UUID, in AtualizarAulaInput) (Aula, error) {
	aula, err := s.repo.GetAula(ctx, aulaID)
	if err != nil {
		return Aula{}, err
	}
	turma, err := s.repo.GetTurma(ctx, aula.TurmaID)
	if err != nil {
		return Aula{}, err
	}
	if !s.podeGerarTurma(ctx, viewer, turma) {
		return Aula{}, ErrForbidden
	}

	patch := AulaPatch{}
	if in.Nome != nil {
		trimmed := strings.TrimSpace(*in.Nome)
		patch.Nome = &trimmed
	}
	if in.Posicao != nil {
		trimmed := strings.TrimSpace(*in.Posicao)
		patch.Posicao = &trimmed
	}
	if in.Observacoes != nil {
		trimmed := strings.TrimSpace(*in.Observacoes)
		patch.Observacoes = &trimmed
	}
	if in.Status != nil {
		status := StatusAgendada
		if *in.Status == StatusCancelada {
			status = StatusCancelada
		}
		patch.Status = &status
	}

	if err := s.repo.UpdateAula(ctx, aulaID, patch); err != nil {
		return Aula{}, err
	}
	return s.repo.GetAula(ctx, aulaID)
}

// ConfirmarPresenca adiciona o próprio aluno ao conjunto de confirmados e
// notifica o módulo de cobrança (melhor esforço).
func (s *Service) ConfirmarPresenca(ctx context.Context, viewer Viewer, aulaID uuid.UUID) ([]uuid.UUID, error) {
	aula, alunos, err := s.aulaComRoster(ctx, aulaID)
	if err != nil {
		return nil, err
	}
	if viewer.Tipo != TipoAluno || !contains(alunos, viewer.UserID) {
		return nil, ErrForbidden
	}

	if err := s.repo.AddConfirmado(ctx, aulaID, viewer.UserID); err != nil {
		return nil, err
	}

	if s.billing != nil {
		if err := s.billing.RegistrarPresenca(ctx, viewer.UserID, aula.DataHora); err != nil {
			log.Warn().Err(err).Str("aluno", viewer.UserID.String()).Msg("falha ao registrar presença na cobrança")
		}
	}

	atualizada, err := s.repo.GetAula(ctx, aulaID)
	if err != nil {
		return nil, err
	}
	return atualizada.Confirmados, nil
}

// RemoverConfirmacao retira o próprio aluno do conjunto de confirmados.
func (s *Service) RemoverConfirmacao(ctx context.Context, viewer Viewer, aulaID uuid.UUID) ([]uuid.UUID, error) {
	_, alunos, err := s.aulaComRoster(ctx, aulaID)
	if err != nil {
		return nil, err
	}
	if viewer.Tipo != TipoAluno || !contains(alunos, viewer.UserID) {
		return nil, ErrForbidden
	}

	if err := s.repo.RemoveConfirmado(ctx, aulaID, viewer.UserID); err != nil {
		return nil, err
	}
	atualizada, err := s.repo.GetAula(ctx, aulaID)
	if err != nil {
		return nil, err
	}
	return atualizada.Confirmados, nil
}

func (s *Service) aulaComRoster(ctx context.Context, aulaID uuid.UUID) (Aula, []uuid.UUID, error) {
	aula, err := s.repo.GetAula(ctx, aulaID)
	if err != nil {
		return Aula{}, nil, err
	}
	alunos, err := s.repo.ListAlunosDaTurma(ctx, aula.TurmaID)
	if err != nil {
		return Aula{}, nil, err
	}
	return aula, alunos, nil
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func sortCandidatos(opcoes []OpcaoCandidato) {
	sort.Slice(opcoes, func(i, j int) bool {
		return opcoes[i].Confidence > opcoes[j].Confidence
	})
}
