package agenda

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/tatamehub/academia/internal/http/middleware"
)

// Handler orquestra as rotas da agenda de aulas.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/turmas", func(r chi.Router) {
		r.Post("/", h.handleCriarTurma)
		r.Post("/{id}/gerar-semana", h.handleGerarSemanaTurma)
		r.Get("/{id}/aulas/semana", h.handleListarSemanaTurma)
	})

	r.Route("/aulas", func(r chi.Router) {
		r.Get("/minhas/semana", h.handleMinhasAulasSemana)
		r.Patch("/{id}", h.handleAtualizarAula)
		r.Post("/{id}/confirmar", h.handleConfirmarPresenca)
		r.Delete("/{id}/confirmar", h.handleRemoverConfirmacao)
		r.Post("/{id}/chamada-foto", h.handleChamadaPorFoto)
	})

	r.Route("/academias", func(r chi.Router) {
		r.Post("/{id}/gerar-semana", h.handleGerarSemanaAcademia)
		r.Get("/{id}/aulas/semana", h.handleListarSemanaAcademia)
	})
}

func viewerFromContext(ctx context.Context) (Viewer, error) {
	userID, err := uuid.Parse(httpmiddleware.GetSubject(ctx))
	if err != nil {
		return Viewer{}, err
	}
	viewer := Viewer{UserID: userID, Tipo: httpmiddleware.GetTipo(ctx)}
	if raw := httpmiddleware.GetAcademia(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			viewer.AcademiaID = &id
		}
	}
	if raw := httpmiddleware.GetProfile(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			viewer.ProfileID = &id
		}
	}
	return viewer, nil
}

func (h *Handler) handleCriarTurma(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	var payload struct {
		Nome         string     `json:"nome"`
		ModalidadeID uuid.UUID  `json:"modalidade_id"`
		ProfessorID  uuid.UUID  `json:"professor_id"`
		DiasDaSemana []string   `json:"dias_da_semana"`
		Horario      string     `json:"horario"`
		AcademiaID   *uuid.UUID `json:"academia_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	turma, aulas, err := h.service.CriarTurma(ctx, viewer, CriarTurmaInput{
		Nome:         payload.Nome,
		ModalidadeID: payload.ModalidadeID,
		ProfessorID:  payload.ProfessorID,
		DiasDaSemana: payload.DiasDaSemana,
		Horario:      payload.Horario,
		AcademiaID:   payload.AcademiaID,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /turmas", viewer.UserID, start)
	writeJSON(w, http.StatusCreated, map[string]any{"turma": turma, "aulas_geradas": aulas})
}

func (h *Handler) handleGerarSemanaTurma(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	turmaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "turma inválida", nil)
		return
	}

	aulas, err := h.service.GerarSemanaTurma(ctx, viewer, turmaID, r.URL.Query().Get("timezone"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /turmas/gerar-semana", viewer.UserID, start)
	writeJSON(w, http.StatusOK, map[string]any{"aulas": aulas})
}

func (h *Handler) handleListarSemanaTurma(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	turmaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "turma inválida", nil)
		return
	}

	aulas, err := h.service.ListarSemanaTurma(ctx, viewer, turmaID, r.URL.Query().Get("timezone"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "GET /turmas/aulas/semana", viewer.UserID, start)
	writeJSON(w, http.StatusOK, map[string]any{"aulas": aulas})
}

func (h *Handler) handleMinhasAulasSemana(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	aulas, err := h.service.MinhasAulasSemana(ctx, viewer, r.URL.Query().Get("timezone"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "GET /aulas/minhas/semana", viewer.UserID, start)
	writeJSON(w, http.StatusOK, map[string]any{"aulas": aulas})
}

func (h *Handler) handleGerarSemanaAcademia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	academiaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "academia inválida", nil)
		return
	}

	aulas, err := h.service.GerarSemanaAcademia(ctx, viewer, academiaID, r.URL.Query().Get("timezone"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /academias/gerar-semana", viewer.UserID, start)
	writeJSON(w, http.StatusOK, map[string]any{"aulas": aulas})
}

func (h *Handler) handleListarSemanaAcademia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	academiaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "academia inválida", nil)
		return
	}

	aulas, err := h.service.ListarSemanaAcademia(ctx, viewer, academiaID, r.URL.Query().Get("timezone"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "GET /academias/aulas/semana", viewer.UserID, start)
	writeJSON(w, http.StatusOK, map[string]any{"aulas": aulas})
}

func (h *Handler) handleAtualizarAula(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	aulaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "aula inválida", nil)
		return
	}

	var payload struct {
		Nome        *string `json:"nome"`
		Posicao     *string `json:"posicao"`
		Observacoes *string `json:"observacoes"`
		Status      *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	aula, err := h.service.AtualizarAula(ctx, viewer, aulaID, AtualizarAulaInput{
		Nome:        payload.Nome,
		Posicao:     payload.Posicao,
		Observacoes: payload.Observacoes,
		Status:      payload.Status,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "PATCH /aulas", viewer.UserID, start)
	writeJSON(w, http.StatusOK, map[string]any{"aula": aula})
}

func (h *Handler) handleConfirmarPresenca(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	aulaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "aula inválida", nil)
		return
	}

	confirmados, err := h.service.ConfirmarPresenca(ctx, viewer, aulaID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /aulas/confirmar", viewer.UserID, start)
	writeJSON(w, http.StatusOK, map[string]any{"confirmados": confirmados})
}

func (h *Handler) handleRemoverConfirmacao(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	aulaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "aula inválida", nil)
		return
	}

	confirmados, err := h.service.RemoverConfirmacao(ctx, viewer, aulaID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "DELETE /aulas/confirmar", viewer.UserID, start)
	writeJSON(w, http.StatusOK, map[string]any{"confirmados": confirmados})
}

func (h *Handler) handleChamadaPorFoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	viewer, err := viewerFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	aulaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "aula inválida", nil)
		return
	}

	var payload struct {
		RecognizedUserIDs []uuid.UUID   `json:"recognized_user_ids"`
		Mappings          []FaceMapping `json:"mappings"`
		ImageURL          string        `json:"image_url"`
		ImageBase64       string        `json:"image_base64"`
		Threshold         *float64      `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	resultado, err := h.service.ChamadaPorFoto(ctx, viewer, aulaID, ChamadaFotoInput{
		RecognizedUserIDs: payload.RecognizedUserIDs,
		Mappings:          payload.Mappings,
		ImageURL:          payload.ImageURL,
		ImageBase64:       payload.ImageBase64,
		Threshold:         payload.Threshold,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if resultado.PendenteIntegracao {
		status = http.StatusAccepted
	}

	logRequest(ctx, "POST /aulas/chamada-foto", viewer.UserID, start)
	writeJSON(w, status, resultado)
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("agenda handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func logRequest(ctx context.Context, label string, userID uuid.UUID, start time.Time) {
	logger := log.Ctx(ctx)
	if logger == nil {
		logger = &log.Logger
	}
	reqID := chimiddleware.GetReqID(ctx)
	logger.Info().Str("request_id", reqID).Str("user_id", userID.String()).Str("label", label).Dur("duration", time.Since(start)).Msg("agenda_request")
}

// Helpers de resposta JSON compatíveis com o resto do projeto.
type successEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

type errorEnvelope struct {
	Data  any            `json:"data"`
	Error *errorResponse `json:"error"`
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Data: payload, Error: nil})
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Data: nil, Error: &errorResponse{Code: code, Message: message, Details: details}})
}
