package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oceanBigOne/mre-who-am-i/internal/attachment"
	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
	apperrors "github.com/oceanBigOne/mre-who-am-i/internal/errors"
)

type eventRequest struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

func (s *Server) handleEvent(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("malformed event body")
	}

	ev, err := parseEvent(req)
	if err != nil {
		return err
	}
	if s.httpMetrics != nil {
		s.httpMetrics.Events.WithLabelValues(string(ev.Type)).Inc()
	}

	if err := s.host.Dispatch(c.Request().Context(), ev); err != nil {
		return classifyDispatchError(err)
	}

	if err := c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"}); err != nil {
		return fmt.Errorf("failed to write event response: %w", err)
	}
	return nil
}

func parseEvent(req eventRequest) (domain.Event, error) {
	t, err := domain.ParseEventType(req.Type)
	if err != nil {
		return domain.Event{}, apperrors.ValidationError("unknown event type").WithField("type", req.Type)
	}

	ev := domain.Event{Type: t}
	if req.UserID == "" {
		if t.NeedsUser() {
			return domain.Event{}, apperrors.ValidationError("user_id is required").WithField("type", req.Type)
		}
		return ev, nil
	}

	id, err := uuid.Parse(req.UserID)
	if err != nil {
		return domain.Event{}, apperrors.ValidationError("user_id must be a UUID").WithField("user_id", req.UserID)
	}
	ev.UserID = id
	return ev, nil
}

// classifyDispatchError maps host failures to responses: input problems are the
// caller's fault, a stopping manager or missing names are temporary, anything else
// is a backend failure.
func classifyDispatchError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownEventType), errors.Is(err, domain.ErrMissingUserID),
		errors.Is(err, domain.ErrNameUnavailable):
		return apperrors.AsStructuredError(err)
	case errors.Is(err, attachment.ErrManagerStopped):
		return apperrors.UnavailableError("shutting down", err)
	default:
		return apperrors.ExternalError("resource backend failed", err)
	}
}

func (s *Server) handleListAttachments(c echo.Context) error {
	list, err := s.attachments.Attachments(c.Request().Context())
	if errors.Is(err, attachment.ErrManagerStopped) {
		return apperrors.UnavailableError("shutting down", err)
	}
	if err != nil {
		return apperrors.InternalError("failed to list attachments", err)
	}
	if list == nil {
		list = []attachment.Attachment{}
	}

	if err := c.JSON(http.StatusOK, list); err != nil {
		return fmt.Errorf("failed to write attachments response: %w", err)
	}
	return nil
}
