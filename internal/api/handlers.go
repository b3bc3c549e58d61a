package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"scriptdna/internal/export"
	"scriptdna/internal/logging"
	"scriptdna/internal/pipeline"
	"scriptdna/internal/services"
)

func (s *Server) session(c echo.Context) (*pipeline.Session, error) {
	session, ok := s.sessions.get(c.Param("id"))
	if !ok {
		return nil, fmt.Errorf("%w: %s", errSessionNotFound, c.Param("id"))
	}
	return session, nil
}

func (s *Server) respondSession(c echo.Context, status int, session *pipeline.Session) error {
	return c.JSON(status, SessionResponse{Session: session.Snapshot()})
}

func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Provider: s.opts.Provider, Sessions: s.sessions.len()}
	if c.QueryParam("deep") != "" && s.opts.Health != nil {
		if err := s.opts.Health(c.Request().Context()); err != nil {
			resp.Status = "degraded"
			resp.Detail = messageFor(err)
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateSession(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxTranscriptBytes+1))
	if err != nil {
		return s.writeError(c, services.Wrap(services.ErrValidation, "api", "read body", "", err))
	}
	if len(body) > maxTranscriptBytes {
		return s.writeError(c, services.Wrap(services.ErrValidation, "api", "read body",
			fmt.Sprintf("transcript exceeds %d bytes", maxTranscriptBytes), nil))
	}
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		name = "transcript.srt"
	}
	session := s.newSession()
	if _, err := session.Ingest(string(body), name); err != nil {
		return s.writeError(c, err)
	}
	if err := s.sessions.add(session); err != nil {
		return s.writeError(c, err)
	}
	return s.respondSession(c, http.StatusCreated, session)
}

func (s *Server) handleGetSession(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	return s.respondSession(c, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	if !s.sessions.remove(c.Param("id")) {
		return s.writeError(c, fmt.Errorf("%w: %s", errSessionNotFound, c.Param("id")))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	if _, err := session.Analyze(c.Request().Context()); err != nil {
		return s.writeError(c, err)
	}
	return s.respondSession(c, http.StatusOK, session)
}

func (s *Server) handleDNA(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	if _, err := session.ExtractDNA(c.Request().Context()); err != nil {
		return s.writeError(c, err)
	}
	return s.respondSession(c, http.StatusOK, session)
}

func (s *Server) handleStrategies(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	if _, err := session.GenerateStrategies(c.Request().Context()); err != nil {
		return s.writeError(c, err)
	}
	return s.respondSession(c, http.StatusOK, session)
}

func (s *Server) handleSelectStrategy(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	var req SelectStrategyRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, services.Wrap(services.ErrValidation, "api", "decode body", "", err))
	}
	if _, err := session.SelectStrategy(req.ID); err != nil {
		return s.writeError(c, err)
	}
	return s.respondSession(c, http.StatusOK, session)
}

// handleConfigure starts from the server's default script config, so a
// request may set only the fields it cares about.
func (s *Server) handleConfigure(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	cfg := s.opts.DefaultScript
	if err := c.Bind(&cfg); err != nil {
		return s.writeError(c, services.Wrap(services.ErrValidation, "api", "decode body", "", err))
	}
	if err := session.Configure(cfg); err != nil {
		return s.writeError(c, err)
	}
	return s.respondSession(c, http.StatusOK, session)
}

func (s *Server) handleNextPart(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	if _, err := session.GenerateNextPart(c.Request().Context()); err != nil {
		return s.writeError(c, err)
	}
	return s.respondSession(c, http.StatusOK, session)
}

func (s *Server) handleResetScript(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	session.ResetScript()
	return s.respondSession(c, http.StatusOK, session)
}

func (s *Server) handleExportText(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	snap := session.Snapshot()
	if len(snap.Parts) == 0 {
		return s.writeError(c, services.Wrap(services.ErrPrerequisite, "export", "", "no script parts generated yet", nil))
	}
	name := export.FullScriptFileName(snap.Topic())
	text := export.FullScript(snap.Topic(), snap.Parts)
	if raw := c.QueryParam("part"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil || number < 1 || number > len(snap.Parts) {
			return s.writeError(c, services.Wrap(services.ErrValidation, "export", "",
				fmt.Sprintf("part must be between 1 and %d", len(snap.Parts)), nil))
		}
		part := snap.Parts[number-1]
		name = export.PartFileName(part.PartNumber)
		text = export.PartText(part)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.String(http.StatusOK, text)
}

func (s *Server) handleExportFiles(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return s.writeError(c, err)
	}
	if s.opts.Exporter == nil {
		return s.writeError(c, services.Wrap(services.ErrConfiguration, "export", "", "no export directory configured", nil))
	}
	snap := session.Snapshot()
	files, err := s.opts.Exporter.WriteScript(snap.Topic(), snap.Parts)
	if err != nil {
		return s.writeError(c, err)
	}
	if s.opts.Notifier != nil {
		if err := s.opts.Notifier.NotifyScriptExported(c.Request().Context(), snap.Topic(), len(snap.Parts), files[0]); err != nil {
			logging.WarnWithContext(s.logger, "export notification failed", "notification_failed",
				logging.String(logging.FieldSessionID, snap.ID),
				logging.Error(err),
			)
		}
	}
	return c.JSON(http.StatusOK, ExportResponse{Files: files})
}
