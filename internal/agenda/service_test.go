package agenda

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tatamehub/academia/internal/facerec"
	"github.com/tatamehub/academia/internal/timezone"
)

type stubRepo struct {
	turmas    map[uuid.UUID]Turma
	aulas     map[uuid.UUID]*Aula
	alunos    map[uuid.UUID][]uuid.UUID
	academias map[uuid.UUID]Academia
	profiles  []Profile
	upserts   int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		turmas:    make(map[uuid.UUID]Turma),
		aulas:     make(map[uuid.UUID]*Aula),
		alunos:    make(map[uuid.UUID][]uuid.UUID),
		academias: make(map[uuid.UUID]Academia),
	}
}

func (s *stubRepo) GetTurma(_ context.Context, id uuid.UUID) (Turma, error) {
	t, ok := s.turmas[id]
	if !ok {
		return Turma{}, errNotFound
	}
	return t, nil
}

func (s *stubRepo) InsertTurma(_ context.Context, t Turma) (Turma, error) {
	t.ID = uuid.New()
	s.turmas[t.ID] = t
	return t, nil
}

func (s *stubRepo) ListTurmas(_ context.Context) ([]Turma, error) {
	var out []Turma
	for _, t := range s.turmas {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubRepo) ListTurmasDoProfessor(_ context.Context, professorIDs []uuid.UUID, academiaID *uuid.UUID) ([]Turma, error) {
	var out []Turma
	for _, t := range s.turmas {
		if academiaID != nil && t.AcademiaID != *academiaID {
			continue
		}
		for _, id := range professorIDs {
			if t.ProfessorID == id {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (s *stubRepo) ListTurmasDoAluno(_ context.Context, alunoID uuid.UUID) ([]Turma, error) {
	var out []Turma
	for turmaID, roster := range s.alunos {
		for _, id := range roster {
			if id == alunoID {
				if t, ok := s.turmas[turmaID]; ok {
					out = append(out, t)
				}
				break
			}
		}
	}
	return out, nil
}

func (s *stubRepo) ListTurmasDaAcademia(_ context.Context, academiaID uuid.UUID) ([]Turma, error) {
	var out []Turma
	for _, t := range s.turmas {
		if t.AcademiaID == academiaID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubRepo) ListAlunosDaTurma(_ context.Context, turmaID uuid.UUID) ([]uuid.UUID, error) {
	return s.alunos[turmaID], nil
}

func (s *stubRepo) GetAcademia(_ context.Context, id uuid.UUID) (Academia, error) {
	a, ok := s.academias[id]
	if !ok {
		return Academia{}, errNotFound
	}
	return a, nil
}

func (s *stubRepo) GetAcademiaDoGestor(_ context.Context, gestorID uuid.UUID) (Academia, error) {
	for _, a := range s.academias {
		if a.GestorID == gestorID {
			return a, nil
		}
	}
	return Academia{}, errNotFound
}

func (s *stubRepo) ListAcademiasPorIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Academia, error) {
	out := make(map[uuid.UUID]Academia)
	for _, id := range ids {
		if a, ok := s.academias[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (s *stubRepo) UpsertAula(_ context.Context, seed AulaSeed) (Aula, error) {
	s.upserts++
	for _, a := range s.aulas {
		if a.TurmaID == seed.TurmaID && a.DataHora.Equal(seed.DataHora) {
			return *a, nil
		}
	}
	aula := &Aula{
		ID:       uuid.New(),
		TurmaID:  seed.TurmaID,
		DataHora: seed.DataHora,
		Nome:     seed.Nome,
		Status:   StatusAgendada,
	}
	s.aulas[aula.ID] = aula
	return *aula, nil
}

func (s *stubRepo) GetAula(_ context.Context, id uuid.UUID) (Aula, error) {
	a, ok := s.aulas[id]
	if !ok {
		return Aula{}, errNotFound
	}
	return *a, nil
}

func (s *stubRepo) ListAulasSemana(_ context.Context, turmaIDs []uuid.UUID, start, end time.Time) ([]Aula, error) {
	set := make(map[uuid.UUID]struct{}, len(turmaIDs))
	for _, id := range turmaIDs {
		set[id] = struct{}{}
	}
	var out []Aula
	for _, a := range s.aulas {
		if _, ok := set[a.TurmaID]; !ok {
			continue
		}
		if a.DataHora.Before(start) || !a.DataHora.Before(end) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DataHora.Before(out[j].DataHora) })
	return out, nil
}

func (s *stubRepo) UpdateAula(_ context.Context, id uuid.UUID, patch AulaPatch) error {
	a, ok := s.aulas[id]
	if !ok {
		return errNotFound
	}
	if patch.Nome != nil {
		a.Nome = *patch.Nome
	}
	if patch.Posicao != nil {
		a.Posicao = patch.Posicao
	}
	if patch.Observacoes != nil {
		a.Observacoes = patch.Observacoes
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	return nil
}

func (s *stubRepo) UpdateAulaStatus(_ context.Context, id uuid.UUID, status string) error {
	a, ok := s.aulas[id]
	if !ok {
		return errNotFound
	}
	a.Status = status
	return nil
}

func (s *stubRepo) AddConfirmado(_ context.Context, aulaID, alunoID uuid.UUID) error {
	a, ok := s.aulas[aulaID]
	if !ok {
		return errNotFound
	}
	for _, id := range a.Confirmados {
		if id == alunoID {
			return nil
		}
	}
	a.Confirmados = append(a.Confirmados, alunoID)
	return nil
}

func (s *stubRepo) RemoveConfirmado(_ context.Context, aulaID, alunoID uuid.UUID) error {
	a, ok := s.aulas[aulaID]
	if !ok {
		return errNotFound
	}
	out := a.Confirmados[:0]
	for _, id := range a.Confirmados {
		if id != alunoID {
			out = append(out, id)
		}
	}
	a.Confirmados = out
	return nil
}

func (s *stubRepo) ConfirmarChamadaFoto(ctx context.Context, aulaID uuid.UUID, alunoIDs []uuid.UUID, chamadaFeita bool) error {
	a, ok := s.aulas[aulaID]
	if !ok {
		return errNotFound
	}
	for _, id := range alunoIDs {
		if err := s.AddConfirmado(ctx, aulaID, id); err != nil {
			return err
		}
	}
	a.ChamadaFeita = chamadaFeita
	return nil
}

func (s *stubRepo) GetProfilePorUsuario(_ context.Context, userID uuid.UUID, tipo string) (Profile, error) {
	for _, p := range s.profiles {
		if p.UserID == userID && p.Tipo == tipo {
			return p, nil
		}
	}
	return Profile{}, errNotFound
}

func (s *stubRepo) GetProfile(_ context.Context, id uuid.UUID) (Profile, error) {
	for _, p := range s.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, errNotFound
}

func (s *stubRepo) ListProfilesAlunos(_ context.Context, userIDs []uuid.UUID) ([]Profile, error) {
	set := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		set[id] = struct{}{}
	}
	var out []Profile
	for _, p := range s.profiles {
		if _, ok := set[p.UserID]; ok && p.Tipo == TipoAluno {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubNotifier struct {
	registros []uuid.UUID
}

func (s *stubNotifier) RegistrarPresenca(_ context.Context, alunoID uuid.UUID, _ time.Time) error {
	s.registros = append(s.registros, alunoID)
	return nil
}

type stubFaces struct {
	detectIDs []string
	results   []facerec.Identification
}

func (s *stubFaces) DetectFromURL(context.Context, string) ([]string, error) {
	return s.detectIDs, nil
}

func (s *stubFaces) Detect(context.Context, []byte) ([]string, error) {
	return s.detectIDs, nil
}

func (s *stubFaces) Identify(context.Context, []string, float64) ([]facerec.Identification, error) {
	return s.results, nil
}

// Terça 05/03/2024 09:00 em São Paulo: a semana corrente começa no
// domingo 03/03.
var nowFixa = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func newTestService(repo *stubRepo, billing PresencaNotifier, faces FaceClient) *Service {
	svc := NewService(repo, nil, timezone.NewResolver("America/Sao_Paulo"), billing, faces, 0.5)
	svc.now = func() time.Time { return nowFixa }
	return svc
}

func seedTurma(repo *stubRepo, dias []string) (Turma, Academia, uuid.UUID) {
	gestorID := uuid.New()
	academia := Academia{ID: uuid.New(), Nome: "Academia Central", GestorID: gestorID}
	repo.academias[academia.ID] = academia

	turma := Turma{
		ID:           uuid.New(),
		Nome:         "Jiu-Jitsu Adulto",
		ModalidadeID: uuid.New(),
		ProfessorID:  uuid.New(),
		DiasDaSemana: dias,
		Horario:      "19:00",
		AcademiaID:   academia.ID,
	}
	repo.turmas[turma.ID] = turma
	return turma, academia, gestorID
}

func TestGerarSemanaTurmaIdempotente(t *testing.T) {
	repo := newStubRepo()
	turma, _, gestorID := seedTurma(repo, []string{"segunda", "quarta"})
	svc := newTestService(repo, nil, nil)
	viewer := Viewer{UserID: gestorID, Tipo: TipoGestor}

	primeira, err := svc.GerarSemanaTurma(context.Background(), viewer, turma.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(primeira) != 2 {
		t.Fatalf("expected 2 aulas got %d", len(primeira))
	}

	segunda, err := svc.GerarSemanaTurma(context.Background(), viewer, turma.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(segunda) != 2 {
		t.Fatalf("expected 2 aulas na repetição got %d", len(segunda))
	}
	if len(repo.aulas) != 2 {
		t.Fatalf("expected 2 aulas persistidas got %d", len(repo.aulas))
	}

	wants := map[time.Time]bool{
		time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC): false,
		time.Date(2024, 3, 6, 22, 0, 0, 0, time.UTC): false,
	}
	for _, a := range repo.aulas {
		seen, ok := wants[a.DataHora.UTC()]
		if !ok || seen {
			t.Fatalf("data_hora inesperada: %s", a.DataHora)
		}
		wants[a.DataHora.UTC()] = true
	}
}

func TestGerarSemanaPreservaCancelada(t *testing.T) {
	repo := newStubRepo()
	turma, _, gestorID := seedTurma(repo, []string{"segunda", "quarta"})
	svc := newTestService(repo, nil, nil)

	cancelada := &Aula{
		ID:       uuid.New(),
		TurmaID:  turma.ID,
		DataHora: time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC),
		Nome:     "Aula - Jiu-Jitsu Adulto",
		Status:   StatusCancelada,
	}
	repo.aulas[cancelada.ID] = cancelada

	if _, err := svc.GerarSemanaTurma(context.Background(), Viewer{UserID: gestorID, Tipo: TipoGestor}, turma.ID, ""); err != nil {
		t.Fatal(err)
	}

	if repo.aulas[cancelada.ID].Status != StatusCancelada {
		t.Fatalf("regeneração sobrescreveu status: %s", repo.aulas[cancelada.ID].Status)
	}
	if len(repo.aulas) != 2 {
		t.Fatalf("expected 2 aulas got %d", len(repo.aulas))
	}
}

func TestGerarSemanaPulaRotuloInvalido(t *testing.T) {
	repo := newStubRepo()
	turma, _, gestorID := seedTurma(repo, []string{"blorpday", "sexta"})
	svc := newTestService(repo, nil, nil)

	aulas, err := svc.GerarSemanaTurma(context.Background(), Viewer{UserID: gestorID, Tipo: TipoGestor}, turma.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(aulas) != 1 {
		t.Fatalf("expected 1 aula got %d", len(aulas))
	}
	if want := time.Date(2024, 3, 8, 22, 0, 0, 0, time.UTC); !aulas[0].DataHora.Equal(want) {
		t.Fatalf("expected %s got %s", want, aulas[0].DataHora)
	}
}

func TestGerarSemanaProfessorInativo(t *testing.T) {
	repo := newStubRepo()
	turma, _, _ := seedTurma(repo, []string{"segunda"})
	repo.profiles = append(repo.profiles, Profile{
		ID:           uuid.New(),
		UserID:       turma.ProfessorID,
		Tipo:         TipoProfessor,
		StatusTreino: "inativo",
	})
	svc := newTestService(repo, nil, nil)

	_, err := svc.GerarSemanaTurma(context.Background(), Viewer{UserID: turma.ProfessorID, Tipo: TipoProfessor}, turma.ID, "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
}

func TestDerivarStatus(t *testing.T) {
	base := Aula{DataHora: nowFixa.Add(time.Hour)}

	tests := []struct {
		name string
		aula Aula
		want string
	}{
		{"futura", base, StatusAgendada},
		{"passada-sem-chamada", Aula{DataHora: nowFixa.Add(-time.Hour)}, StatusAguardandoChamada},
		{"passada-com-chamada", Aula{DataHora: nowFixa.Add(-time.Hour), ChamadaFeita: true}, StatusFinalizada},
		{"cancelada-passada", Aula{DataHora: nowFixa.Add(-time.Hour), Status: StatusCancelada, ChamadaFeita: true}, StatusCancelada},
		{"exatamente-agora", Aula{DataHora: nowFixa}, StatusAguardandoChamada},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DerivarStatus(tc.aula, nowFixa); got != tc.want {
				t.Fatalf("expected %s got %s", tc.want, got)
			}
		})
	}
}

func TestMinhasAulasSemanaBackfillEStatus(t *testing.T) {
	repo := newStubRepo()
	turma, _, _ := seedTurma(repo, []string{"segunda", "quarta"})
	alunoID := uuid.New()
	repo.alunos[turma.ID] = []uuid.UUID{alunoID}
	svc := newTestService(repo, nil, nil)

	aulas, err := svc.MinhasAulasSemana(context.Background(), Viewer{UserID: alunoID, Tipo: TipoAluno}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(aulas) != 2 {
		t.Fatalf("expected backfill de 2 aulas got %d", len(aulas))
	}

	// Segunda 19:00 já passou na terça: status derivado e persistido.
	if aulas[0].Status != StatusAguardandoChamada {
		t.Fatalf("expected aguardando chamada got %s", aulas[0].Status)
	}
	if aulas[0].TempoRestante != nil {
		t.Fatalf("aula passada não deve ter tempo restante")
	}
	if repo.aulas[aulas[0].ID].Status != StatusAguardandoChamada {
		t.Fatalf("status derivado não persistido")
	}

	if aulas[1].Status != StatusAgendada {
		t.Fatalf("expected agendada got %s", aulas[1].Status)
	}
	if aulas[1].TempoRestante == nil || *aulas[1].TempoRestante != "1d 10h 0m" {
		t.Fatalf("tempo restante inesperado: %v", aulas[1].TempoRestante)
	}
}

func TestMinhasAulasSemanaGestorSemPerfil(t *testing.T) {
	repo := newStubRepo()
	turma, _, gestorID := seedTurma(repo, []string{"quarta"})
	repo.alunos[turma.ID] = []uuid.UUID{uuid.New()}
	svc := newTestService(repo, nil, nil)

	aulas, err := svc.MinhasAulasSemana(context.Background(), Viewer{UserID: gestorID, Tipo: TipoGestor}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(aulas) != 1 {
		t.Fatalf("expected 1 aula da academia got %d", len(aulas))
	}
}

func TestConfirmarPresenca(t *testing.T) {
	repo := newStubRepo()
	turma, _, _ := seedTurma(repo, []string{"quarta"})
	alunoID := uuid.New()
	repo.alunos[turma.ID] = []uuid.UUID{alunoID}

	aula := &Aula{ID: uuid.New(), TurmaID: turma.ID, DataHora: nowFixa.Add(24 * time.Hour), Status: StatusAgendada}
	repo.aulas[aula.ID] = aula

	notifier := &stubNotifier{}
	svc := newTestService(repo, notifier, nil)

	confirmados, err := svc.ConfirmarPresenca(context.Background(), Viewer{UserID: alunoID, Tipo: TipoAluno}, aula.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(confirmados) != 1 || confirmados[0] != alunoID {
		t.Fatalf("confirmados inesperados: %v", confirmados)
	}
	if len(notifier.registros) != 1 || notifier.registros[0] != alunoID {
		t.Fatalf("cobrança não notificada: %v", notifier.registros)
	}

	// Fora do roster.
	if _, err := svc.ConfirmarPresenca(context.Background(), Viewer{UserID: uuid.New(), Tipo: TipoAluno}, aula.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}

	// Remoção.
	confirmados, err = svc.RemoverConfirmacao(context.Background(), Viewer{UserID: alunoID, Tipo: TipoAluno}, aula.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(confirmados) != 0 {
		t.Fatalf("expected confirmados vazio got %v", confirmados)
	}
}

func TestAtualizarAula(t *testing.T) {
	repo := newStubRepo()
	turma, _, _ := seedTurma(repo, []string{"quarta"})
	aula := &Aula{ID: uuid.New(), TurmaID: turma.ID, DataHora: nowFixa.Add(24 * time.Hour), Status: StatusAgendada}
	repo.aulas[aula.ID] = aula
	svc := newTestService(repo, nil, nil)

	viewer := Viewer{UserID: turma.ProfessorID, Tipo: TipoProfessor}
	cancelada := StatusCancelada
	atualizada, err := svc.AtualizarAula(context.Background(), viewer, aula.ID, AtualizarAulaInput{Status: &cancelada})
	if err != nil {
		t.Fatal(err)
	}
	if atualizada.Status != StatusCancelada {
		t.Fatalf("expected cancelada got %s", atualizada.Status)
	}

	// Aluno não edita aula.
	if _, err := svc.AtualizarAula(context.Background(), Viewer{UserID: uuid.New(), Tipo: TipoAluno}, aula.ID, AtualizarAulaInput{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
}

func TestCriarTurmaGeraProximaSemana(t *testing.T) {
	repo := newStubRepo()
	gestorID := uuid.New()
	academia := Academia{ID: uuid.New(), Nome: "Academia Central", GestorID: gestorID}
	repo.academias[academia.ID] = academia

	professorUser := uuid.New()
	perfilProfessor := Profile{ID: uuid.New(), UserID: professorUser, Tipo: TipoProfessor}
	repo.profiles = append(repo.profiles, perfilProfessor)

	svc := newTestService(repo, nil, nil)
	viewer := Viewer{UserID: gestorID, Tipo: TipoGestor}

	turma, aulas, err := svc.CriarTurma(context.Background(), viewer, CriarTurmaInput{
		Nome:         "Muay Thai Iniciante",
		ModalidadeID: uuid.New(),
		ProfessorID:  perfilProfessor.ID,
		DiasDaSemana: []string{"terça", "quinta"},
		Horario:      "20:30",
	})
	if err != nil {
		t.Fatal(err)
	}
	if turma.ProfessorID != professorUser {
		t.Fatalf("perfil de professor não resolvido para usuário")
	}
	if turma.AcademiaID != academia.ID {
		t.Fatalf("academia não resolvida pela sessão do gestor")
	}
	if turma.CodigoConvite == "" {
		t.Fatalf("código de convite vazio")
	}
	if len(aulas) != 2 {
		t.Fatalf("expected 2 aulas da próxima semana got %d", len(aulas))
	}
	// Próxima semana: terça 12/03 20:30 em São Paulo = 23:30 UTC.
	if want := time.Date(2024, 3, 12, 23, 30, 0, 0, time.UTC); !aulas[0].DataHora.Equal(want) {
		t.Fatalf("expected %s got %s", want, aulas[0].DataHora)
	}

	if _, _, err := svc.CriarTurma(context.Background(), Viewer{UserID: uuid.New(), Tipo: TipoAluno}, CriarTurmaInput{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}

	_, _, err = svc.CriarTurma(context.Background(), viewer, CriarTurmaInput{
		Nome:         "Horário quebrado",
		ModalidadeID: uuid.New(),
		ProfessorID:  professorUser,
		DiasDaSemana: []string{"segunda"},
		Horario:      "25:99",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation got %v", err)
	}
}

func TestChamadaPorFotoRecognizedIDs(t *testing.T) {
	repo := newStubRepo()
	turma, _, gestorID := seedTurma(repo, []string{"quarta"})
	dentro := uuid.New()
	fora := uuid.New()
	repo.alunos[turma.ID] = []uuid.UUID{dentro}

	aula := &Aula{ID: uuid.New(), TurmaID: turma.ID, DataHora: nowFixa.Add(-time.Hour), Status: StatusAguardandoChamada}
	repo.aulas[aula.ID] = aula
	svc := newTestService(repo, nil, nil)

	resultado, err := svc.ChamadaPorFoto(context.Background(), Viewer{UserID: gestorID, Tipo: TipoGestor}, aula.ID, ChamadaFotoInput{
		RecognizedUserIDs: []uuid.UUID{dentro, fora},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resultado.Confirmados) != 1 || resultado.Confirmados[0] != dentro {
		t.Fatalf("aluno fora do roster não foi filtrado: %v", resultado.Confirmados)
	}
	if !resultado.ChamadaFeita {
		t.Fatalf("chamada deveria estar feita sem pendências")
	}
}

func TestChamadaPorFotoLimiar(t *testing.T) {
	repo := newStubRepo()
	turma, _, gestorID := seedTurma(repo, []string{"quarta"})

	alto := uuid.New()
	baixo := uuid.New()
	repo.alunos[turma.ID] = []uuid.UUID{alto, baixo}
	personAlto := "person-alto"
	personBaixo := "person-baixo"
	repo.profiles = append(repo.profiles,
		Profile{ID: uuid.New(), UserID: alto, Tipo: TipoAluno, Nome: "Aluno Alto", FacePersonID: &personAlto},
		Profile{ID: uuid.New(), UserID: baixo, Tipo: TipoAluno, Nome: "Aluno Baixo", FacePersonID: &personBaixo},
	)

	aula := &Aula{ID: uuid.New(), TurmaID: turma.ID, DataHora: nowFixa.Add(-time.Hour), Status: StatusAguardandoChamada}
	repo.aulas[aula.ID] = aula

	faces := &stubFaces{
		detectIDs: []string{"face-1", "face-2"},
		results: []facerec.Identification{
			{FaceID: "face-1", Candidates: []facerec.Candidate{{PersonID: personAlto, Confidence: 0.5}}},
			{FaceID: "face-2", Candidates: []facerec.Candidate{{PersonID: personBaixo, Confidence: 0.31}}},
		},
	}
	svc := newTestService(repo, nil, faces)

	resultado, err := svc.ChamadaPorFoto(context.Background(), Viewer{UserID: gestorID, Tipo: TipoGestor}, aula.ID, ChamadaFotoInput{
		ImageURL: "https://fotos.example/turma.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Confiança exatamente no limiar confirma automaticamente.
	if len(resultado.Confirmados) != 1 || resultado.Confirmados[0] != alto {
		t.Fatalf("confirmados inesperados: %v", resultado.Confirmados)
	}
	if len(resultado.Pendentes) != 1 {
		t.Fatalf("expected 1 pendente got %d", len(resultado.Pendentes))
	}
	pendente := resultado.Pendentes[0]
	if pendente.FaceID != "face-2" || len(pendente.Opcoes) != 1 || pendente.Opcoes[0].UserID != baixo {
		t.Fatalf("pendente inesperado: %+v", pendente)
	}
	if resultado.ChamadaFeita {
		t.Fatalf("chamada não pode ser feita com pendências")
	}
	if repo.aulas[aula.ID].ChamadaFeita {
		t.Fatalf("flag de chamada persistida indevidamente")
	}
}

func TestChamadaPorFotoSemIntegracao(t *testing.T) {
	repo := newStubRepo()
	turma, _, gestorID := seedTurma(repo, []string{"quarta"})
	repo.alunos[turma.ID] = []uuid.UUID{uuid.New()}
	aula := &Aula{ID: uuid.New(), TurmaID: turma.ID, DataHora: nowFixa.Add(-time.Hour), Status: StatusAguardandoChamada}
	repo.aulas[aula.ID] = aula

	svc := newTestService(repo, nil, nil)

	resultado, err := svc.ChamadaPorFoto(context.Background(), Viewer{UserID: gestorID, Tipo: TipoGestor}, aula.ID, ChamadaFotoInput{
		ImageURL: "https://fotos.example/turma.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !resultado.PendenteIntegracao {
		t.Fatalf("expected pendente de integração")
	}
	if resultado.ChamadaFeita || len(resultado.Pendentes) != 0 {
		t.Fatalf("resultado degradado inesperado: %+v", resultado)
	}
}

func TestGerarSemanaTodasTurmas(t *testing.T) {
	repo := newStubRepo()
	turmaSP, _, _ := seedTurma(repo, []string{"segunda"})

	// Segunda academia em outro fuso.
	manaus := "America/Manaus"
	academiaAM := Academia{ID: uuid.New(), Nome: "Academia Norte", GestorID: uuid.New(), Timezone: &manaus}
	repo.academias[academiaAM.ID] = academiaAM
	turmaAM := Turma{
		ID:           uuid.New(),
		Nome:         "Boxe",
		ModalidadeID: uuid.New(),
		ProfessorID:  uuid.New(),
		DiasDaSemana: []string{"segunda"},
		Horario:      "19:00",
		AcademiaID:   academiaAM.ID,
	}
	repo.turmas[turmaAM.ID] = turmaAM

	svc := newTestService(repo, nil, nil)
	if err := svc.GerarSemanaTodasTurmas(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(repo.aulas) != 2 {
		t.Fatalf("expected 2 aulas got %d", len(repo.aulas))
	}

	horas := make(map[uuid.UUID]time.Time)
	for _, a := range repo.aulas {
		horas[a.TurmaID] = a.DataHora.UTC()
	}
	if want := time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC); !horas[turmaSP.ID].Equal(want) {
		t.Fatalf("sp: expected %s got %s", want, horas[turmaSP.ID])
	}
	// Manaus é UTC-4: 19:00 locais = 23:00 UTC.
	if want := time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC); !horas[turmaAM.ID].Equal(want) {
		t.Fatalf("manaus: expected %s got %s", want, horas[turmaAM.ID])
	}
}
