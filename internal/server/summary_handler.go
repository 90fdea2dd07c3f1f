package server

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/at-ishikawa/qasummary/internal/analyzer"
	"github.com/at-ishikawa/qasummary/internal/interview"
	"github.com/at-ishikawa/qasummary/internal/summary"
	"github.com/at-ishikawa/qasummary/internal/transcript"
)

// SummaryHandler serves interview summaries.
type SummaryHandler struct {
	analyzer   *analyzer.Analyzer
	repository summary.Repository
	strict     bool
}

// NewSummaryHandler creates a handler. repository may be nil when summaries are not saved.
func NewSummaryHandler(analyzer *analyzer.Analyzer, repository summary.Repository, strict bool) *SummaryHandler {
	return &SummaryHandler{
		analyzer:   analyzer,
		repository: repository,
		strict:     strict,
	}
}

type qna struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type getSummaryRequest struct {
	CandidateName string `json:"candidate_name"`
	JobTitle      string `json:"job_title"`
	CompanyName   string `json:"company_name"`
	InterviewQNA  []qna  `json:"interview_qna"`
}

func (r getSummaryRequest) toInterview() interview.Interview {
	entries := make([]transcript.QAEntry, 0, len(r.InterviewQNA))
	for _, item := range r.InterviewQNA {
		entries = append(entries, transcript.QAEntry{Question: item.Question, Answer: item.Answer})
	}
	return interview.New(interview.Metadata{
		CandidateName: r.CandidateName,
		JobTitle:      r.JobTitle,
		CompanyName:   r.CompanyName,
	}, entries)
}

func detail(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"detail": err.Error()})
}

// GetSummary analyzes the posted interview and responds with the summary.
func (h *SummaryHandler) GetSummary(c *fiber.Ctx) error {
	var request getSummaryRequest
	if err := c.BodyParser(&request); err != nil {
		return detail(c, fiber.StatusBadRequest, err)
	}

	iv := request.toInterview()
	if err := iv.Validate(); err != nil {
		return detail(c, fiber.StatusBadRequest, err)
	}

	result, err := h.analyzer.Analyze(c.UserContext(), iv)
	if err != nil {
		if errors.Is(err, analyzer.ErrEmptyInterview) {
			return detail(c, fiber.StatusBadRequest, err)
		}
		slog.Default().Error("failed to summarize an interview",
			"candidate", iv.CandidateName,
			"error", err,
		)
		return detail(c, fiber.StatusInternalServerError, err)
	}

	c.Set("X-Summary-Model", result.Model)
	c.Set("X-Summary-Cached", strconv.FormatBool(result.Cached))
	if result.RecordID != "" {
		c.Set("X-Summary-Id", result.RecordID)
	}
	return c.JSON(result.Summary)
}

// Parse splits a plain text transcript into question/answer entries.
func (h *SummaryHandler) Parse(c *fiber.Ctx) error {
	text, err := transcript.Decode(c.Body())
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, err)
	}

	var opts []transcript.Option
	if c.QueryBool("strict", h.strict) {
		opts = append(opts, transcript.WithStrict())
	}
	entries, err := transcript.Parse(text, opts...)
	if err != nil {
		var parseErr *transcript.ParseError
		if errors.As(err, &parseErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"detail": parseErr.Error(),
				"line":   parseErr.Line,
				"index":  parseErr.Index,
			})
		}
		return detail(c, fiber.StatusUnprocessableEntity, err)
	}
	return c.JSON(entries)
}

var errNoRepository = errors.New("summaries are not saved by this server")

// GetSavedSummary returns a saved summary by its id.
func (h *SummaryHandler) GetSavedSummary(c *fiber.Ctx) error {
	if h.repository == nil {
		return detail(c, fiber.StatusNotImplemented, errNoRepository)
	}

	id := c.Params("id")
	record, err := h.repository.FindByID(c.UserContext(), id)
	if err != nil {
		slog.Default().Error("failed to find a summary", "id", id, "error", err)
		return detail(c, fiber.StatusInternalServerError, err)
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "summary not found: " + id})
	}
	return c.JSON(record)
}

// ListSummaries returns saved summaries, optionally only those of one candidate.
func (h *SummaryHandler) ListSummaries(c *fiber.Ctx) error {
	if h.repository == nil {
		return detail(c, fiber.StatusNotImplemented, errNoRepository)
	}

	var (
		records []summary.Record
		err     error
	)
	if candidate := c.Query("candidate"); candidate != "" {
		records, err = h.repository.FindByCandidate(c.UserContext(), candidate)
	} else {
		records, err = h.repository.FindAll(c.UserContext())
	}
	if err != nil {
		slog.Default().Error("failed to list summaries", "error", err)
		return detail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(records)
}
