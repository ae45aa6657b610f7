package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/NorousS/anime-reviews/internal/domain"
	"github.com/NorousS/anime-reviews/internal/repository"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("request body must contain a single JSON object")

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("response_encode_failed", slog.Any("error", err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, errTrailingData):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("Invalid value for field %s", typeError.Field),
			Field:   typeError.Field,
		})
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	case errors.As(err, &maxBytesError):
		s.respondError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		s.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("Unknown field %s", field),
			Field:   field,
		})
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

// respondServiceError renders a catalog error. Anything outside the known
// taxonomy is logged and reported as an internal error.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapError(err)
	if status == http.StatusInternalServerError {
		loggerFrom(r, s.logger).Error("request_failed", slog.Any("error", err))
	}
	s.respondJSON(w, status, body)
}

func mapError(err error) (int, errorResponse) {
	var rejection *domain.Rejection
	if errors.As(err, &rejection) {
		code := "VALIDATION_ERROR"
		switch {
		case errors.Is(rejection.Reason, domain.ErrInvalidRating):
			code = "INVALID_RATING"
		case errors.Is(rejection.Reason, domain.ErrInvalidStatus):
			code = "INVALID_STATUS"
		case errors.Is(rejection.Reason, domain.ErrPlanningMustBeUnrated):
			code = "PLANNING_MUST_BE_UNRATED"
		}
		return http.StatusBadRequest, errorResponse{Code: code, Message: rejection.Reason.Error(), Field: rejection.Field}
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: "Resource not found"}
	case errors.Is(err, repository.ErrReferentialViolation):
		return http.StatusNotFound, errorResponse{Code: "REFERENTIAL_VIOLATION", Message: "Anime not found", Field: "anime_id"}
	case errors.Is(err, repository.ErrDuplicateTitle):
		return http.StatusConflict, errorResponse{Code: "DUPLICATE_TITLE", Message: "Anime with this title already exists", Field: "title"}
	default:
		return http.StatusInternalServerError, errorResponse{Code: "INTERNAL_ERROR", Message: "Internal server error"}
	}
}

func parseID(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing id parameter")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id parameter")
	}
	return id, nil
}

func (s *Server) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return 0, false
	}
	return id, true
}
