package agenda

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ChamadaFotoInput aceita três caminhos, nesta ordem de precedência:
// ids já reconhecidos pelo cliente, mapeamentos face→usuário, ou a
// própria imagem para reconhecimento no servidor.
type ChamadaFotoInput struct {
	RecognizedUserIDs []uuid.UUID
	Mappings          []FaceMapping
	ImageURL          string
	ImageBase64       string
	Threshold         *float64
}

// FaceMapping liga uma face detectada a um usuário, decidida pelo
// operador na interface.
type FaceMapping struct {
	PersonID string    `json:"person_id"`
	UserID   uuid.UUID `json:"user_id"`
}

// OpcaoCandidato é uma sugestão abaixo do limiar, para decisão manual.
type OpcaoCandidato struct {
	UserID     uuid.UUID `json:"user_id"`
	Nome       string    `json:"nome"`
	PersonID   string    `json:"person_id"`
	Confidence float64   `json:"confidence"`
}

// PendenteFace é uma face detectada sem confirmação automática.
type PendenteFace struct {
	FaceID string           `json:"face_id"`
	Opcoes []OpcaoCandidato `json:"opcoes"`
}

// ChamadaFotoResultado resume a chamada por foto.
type ChamadaFotoResultado struct {
	Mensagem           string         `json:"mensagem"`
	Confirmados        []uuid.UUID    `json:"confirmados"`
	ChamadaFeita       bool           `json:"chamada_feita"`
	Pendentes          []PendenteFace `json:"pendentes,omitempty"`
	Reconhecidos       int            `json:"reconhecidos"`
	Threshold          float64        `json:"threshold"`
	PendenteIntegracao bool           `json:"-"`
}

// ChamadaPorFoto executa a chamada da aula a partir de reconhecimento
// facial. Apenas alunos matriculados na turma contam; faces fora do
// roster são ignoradas. A chamada só é marcada como feita quando não
// resta nenhuma face pendente.
func (s *Service) ChamadaPorFoto(ctx context.Context, viewer Viewer, aulaID uuid.UUID, in ChamadaFotoInput) (ChamadaFotoResultado, error) {
	aula, err := s.repo.GetAula(ctx, aulaID)
	if err != nil {
		return ChamadaFotoResultado{}, err
	}
	turma, err := s.repo.GetTurma(ctx, aula.TurmaID)
	if err != nil {
		return ChamadaFotoResultado{}, err
	}
	if !s.podeGerarTurma(ctx, viewer, turma) {
		return ChamadaFotoResultado{}, ErrForbidden
	}

	alunos, err := s.repo.ListAlunosDaTurma(ctx, turma.ID)
	if err != nil {
		return ChamadaFotoResultado{}, err
	}
	roster := make(map[uuid.UUID]struct{}, len(alunos))
	for _, id := range alunos {
		roster[id] = struct{}{}
	}

	threshold := s.faceThreshold
	if in.Threshold != nil && *in.Threshold > 0 && *in.Threshold <= 1 {
		threshold = *in.Threshold
	}

	var reconhecidos []uuid.UUID
	var pendentes []PendenteFace

	switch {
	case len(in.RecognizedUserIDs) > 0:
		reconhecidos = filtrarRoster(in.RecognizedUserIDs, roster)
	case len(in.Mappings) > 0:
		ids := make([]uuid.UUID, 0, len(in.Mappings))
		for _, m := range in.Mappings {
			ids = append(ids, m.UserID)
		}
		reconhecidos = filtrarRoster(ids, roster)
	default:
		if s.faces == nil {
			return ChamadaFotoResultado{
				Mensagem:           "reconhecimento facial pendente de integração",
				Confirmados:        aula.Confirmados,
				ChamadaFeita:       aula.ChamadaFeita,
				Threshold:          threshold,
				PendenteIntegracao: true,
			}, nil
		}
		reconhecidos, pendentes, err = s.reconhecerImagem(ctx, in, alunos, threshold)
		if err != nil {
			return ChamadaFotoResultado{}, err
		}
	}

	if len(reconhecidos) == 0 && len(pendentes) == 0 {
		return ChamadaFotoResultado{
			Mensagem:     "nenhum aluno da turma reconhecido",
			Confirmados:  aula.Confirmados,
			ChamadaFeita: aula.ChamadaFeita,
			Threshold:    threshold,
		}, nil
	}

	if len(reconhecidos) > 0 {
		feita := len(pendentes) == 0
		if err := s.repo.ConfirmarChamadaFoto(ctx, aulaID, reconhecidos, feita); err != nil {
			return ChamadaFotoResultado{}, err
		}
	}

	atualizada, err := s.repo.GetAula(ctx, aulaID)
	if err != nil {
		return ChamadaFotoResultado{}, err
	}

	mensagem := "chamada registrada"
	if len(pendentes) > 0 {
		mensagem = "chamada registrada com pendências"
	}
	return ChamadaFotoResultado{
		Mensagem:     mensagem,
		Confirmados:  atualizada.Confirmados,
		ChamadaFeita: atualizada.ChamadaFeita,
		Pendentes:    pendentes,
		Reconhecidos: len(reconhecidos),
		Threshold:    threshold,
	}, nil
}

func filtrarRoster(ids []uuid.UUID, roster map[uuid.UUID]struct{}) []uuid.UUID {
	var out []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := roster[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// reconhecerImagem detecta faces na imagem e identifica cada uma contra
// os perfis dos alunos. Confiança igual ou acima do limiar confirma
// automaticamente; abaixo vira pendência com candidatos ordenados por
// confiança decrescente.
func (s *Service) reconhecerImagem(ctx context.Context, in ChamadaFotoInput, alunos []uuid.UUID, threshold float64) ([]uuid.UUID, []PendenteFace, error) {
	var faceIDs []string
	var err error
	switch {
	case strings.TrimSpace(in.ImageURL) != "":
		faceIDs, err = s.faces.DetectFromURL(ctx, in.ImageURL)
	case strings.TrimSpace(in.ImageBase64) != "":
		var image []byte
		image, err = base64.StdEncoding.DecodeString(in.ImageBase64)
		if err == nil {
			faceIDs, err = s.faces.Detect(ctx, image)
		}
	default:
		return nil, nil, ErrValidation
	}
	if err != nil {
		return nil, nil, err
	}
	if len(faceIDs) == 0 {
		return nil, nil, nil
	}

	profiles, err := s.repo.ListProfilesAlunos(ctx, alunos)
	if err != nil {
		return nil, nil, err
	}
	porPersonID := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		if p.FacePersonID != nil && *p.FacePersonID != "" {
			porPersonID[*p.FacePersonID] = p
		}
	}

	results, err := s.faces.Identify(ctx, faceIDs, threshold)
	if err != nil {
		return nil, nil, err
	}

	var reconhecidos []uuid.UUID
	var pendentes []PendenteFace
	for _, res := range results {
		var opcoes []OpcaoCandidato
		for _, cand := range res.Candidates {
			profile, ok := porPersonID[cand.PersonID]
			if !ok {
				continue
			}
			opcoes = append(opcoes, OpcaoCandidato{
				UserID:     profile.UserID,
				Nome:       profile.Nome,
				PersonID:   cand.PersonID,
				Confidence: cand.Confidence,
			})
		}
		if len(opcoes) == 0 {
			continue
		}
		sortCandidatos(opcoes)
		if opcoes[0].Confidence >= threshold {
			reconhecidos = append(reconhecidos, opcoes[0].UserID)
			continue
		}
		log.Debug().Str("face", res.FaceID).Float64("confidence", opcoes[0].Confidence).Msg("face abaixo do limiar, pendente")
		pendentes = append(pendentes, PendenteFace{FaceID: res.FaceID, Opcoes: opcoes})
	}
	return dedup(reconhecidos), pendentes, nil
}

func dedup(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
