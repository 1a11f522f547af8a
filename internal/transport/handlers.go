package transport

import (
	"net/http"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type handlers struct {
	svc    Interviews
	limit  int64
	logger *zap.Logger
}

type CreateRequest struct {
	Candidate string `json:"candidate"`
	JobID     string `json:"job_id"`
}

type ConsentRequest struct {
	Reply string `json:"reply"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

// InterviewView is the compact state returned by mutating actions.
type InterviewView struct {
	ID                string                      `json:"id"`
	Candidate         string                      `json:"candidate,omitempty"`
	JobID             string                      `json:"job_id,omitempty"`
	Phase             interview.Phase             `json:"phase"`
	Terminated        bool                        `json:"terminated"`
	TerminationReason interview.TerminationReason `json:"termination_reason,omitempty"`
	Turns             int                         `json:"turns"`
	PlanLength        int                         `json:"plan_length"`
	Difficulty        interview.Difficulty        `json:"difficulty"`
	GamingStrikes     int                         `json:"gaming_strikes"`
	Version           int                         `json:"version"`
}

type DisclosureResponse struct {
	Interview InterviewView `json:"interview"`
	Text      string        `json:"text"`
}

type AnswerResponse struct {
	Interview InterviewView  `json:"interview"`
	Turn      interview.Turn `json:"turn"`
}

func viewOf(s *interview.State) InterviewView {
	return InterviewView{
		ID:                s.ID,
		Candidate:         s.Candidate,
		JobID:             s.Job.ID,
		Phase:             s.Phase,
		Terminated:        s.Terminated,
		TerminationReason: s.TerminationReason,
		Turns:             len(s.History),
		PlanLength:        len(s.Plan),
		Difficulty:        s.Difficulty,
		GamingStrikes:     s.GamingStrikes,
		Version:           s.Version,
	}
}

// fail logs server-side failures and writes the mapped status.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		fields := logger.StringFields(
			logger.StringField{Key: logger.FieldInterview, Value: chi.URLParam(r, "id")},
			logger.StringField{Key: "path", Value: r.URL.Path},
		)
		h.logger.Warn("request failed", append(fields, zap.Error(err))...)
	}
	writeError(w, status, err.Error())
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := readJSON(w, r, h.limit, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.svc.Create(r.Context(), req.Candidate, req.JobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(s))
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *handlers) disclose(w http.ResponseWriter, r *http.Request) {
	s, text, err := h.svc.Disclose(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DisclosureResponse{Interview: viewOf(s), Text: text})
}

func (h *handlers) consent(w http.ResponseWriter, r *http.Request) {
	var req ConsentRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.svc.Consent(r.Context(), chi.URLParam(r, "id"), req.Reply)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *handlers) nextQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.NextQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *handlers) answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, turn, err := h.svc.Answer(r.Context(), chi.URLParam(r, "id"), req.Answer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AnswerResponse{Interview: viewOf(s), Turn: *turn})
}

func (h *handlers) skip(w http.ResponseWriter, r *http.Request) {
	var req ReasonRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.svc.Skip(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *handlers) finish(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Finish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *handlers) withdraw(w http.ResponseWriter, r *http.Request) {
	var req ReasonRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.svc.Withdraw(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}
