package ratinghttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxBodyBytes = 1 << 20

// RegenerationScheduler hands league replays to a background queue.
type RegenerationScheduler interface {
	EnqueueRegeneration(ctx context.Context, leagueID, reason string) error
}

// Handlers serves the rating HTTP API.
type Handlers struct {
	service   ratingservice.Service
	scheduler RegenerationScheduler
	since     *SinceParser
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewHandlers creates the HTTP handlers. scheduler may be nil, in which case
// regeneration runs inside the request.
func NewHandlers(service ratingservice.Service, scheduler RegenerationScheduler, logger *slog.Logger, tracer trace.Tracer) *Handlers {
	return &Handlers{
		service:   service,
		scheduler: scheduler,
		since:     NewSinceParser(),
		logger:    logger,
		tracer:    tracer,
		now:       time.Now,
	}
}

type historyEntry struct {
	GameID       string    `json:"game_id"`
	Timestamp    time.Time `json:"timestamp"`
	RatingBefore int       `json:"rating_before"`
	Delta        int       `json:"delta"`
	RatingAfter  int       `json:"rating_after"`
}

type historyResponse struct {
	LeagueID      string         `json:"league_id"`
	EntityID      string         `json:"entity_id"`
	CurrentRating int            `json:"current_rating"`
	Entries       []historyEntry `json:"entries"`
}

type expectedScoreRequest struct {
	Side     []ratingdomain.EntityID `json:"side"`
	Opposing []ratingdomain.EntityID `json:"opposing"`
}

type regenerateRequest struct {
	Reason string `json:"reason"`
}

type lineupRequest struct {
	Players []ratingdomain.EntityID `json:"players"`
	Team    ratingdomain.EntityID   `json:"team,omitempty"`
}

type pointRequest struct {
	Time    int                   `json:"time"`
	Against bool                  `json:"against"`
	Scorer  ratingdomain.EntityID `json:"scorer"`
}

type gameRequest struct {
	ID       ratingdomain.GameID `json:"id"`
	PlayedAt time.Time           `json:"played_at"`
	Points   []pointRequest      `json:"points"`
	Blue     lineupRequest       `json:"blue"`
	Red      lineupRequest       `json:"red"`
	Finished bool                `json:"finished"`
	Winner   ratingdomain.Side   `json:"winner,omitempty"`
}

func (g gameRequest) toGame(leagueID ratingdomain.LeagueID) ratingdomain.Game {
	points := make([]ratingdomain.Point, 0, len(g.Points))
	for _, p := range g.Points {
		points = append(points, ratingdomain.Point{Time: p.Time, Against: p.Against, Scorer: p.Scorer})
	}
	return ratingdomain.Game{
		ID:       g.ID,
		LeagueID: leagueID,
		PlayedAt: g.PlayedAt,
		Points:   points,
		Blue:     ratingdomain.Lineup{Players: g.Blue.Players, Team: g.Blue.Team},
		Red:      ratingdomain.Lineup{Players: g.Red.Players, Team: g.Red.Team},
		Finished: g.Finished,
		Winner:   g.Winner,
	}
}

// HandleGetRanking serves a page of the league ranking.
func (h *Handlers) HandleGetRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ratinghttp.GetRanking")
	defer span.End()

	leagueID := chi.URLParam(r, "leagueID")
	span.SetAttributes(attribute.String("league_id", leagueID))

	opts := ratingservice.PageOptions{After: r.URL.Query().Get("after")}
	if raw := r.URL.Query().Get("first"); raw != "" {
		first, err := strconv.Atoi(raw)
		if err != nil || first < 0 {
			writeError(w, http.StatusBadRequest, "first must be a non-negative integer")
			return
		}
		opts.First = first
	}

	page, err := h.service.GetRanking(ctx, ratingdomain.LeagueID(leagueID), opts)
	if err != nil {
		h.fail(ctx, w, "GetRanking", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleGetHistory serves an entity's rating history.
func (h *Handlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ratinghttp.GetHistory")
	defer span.End()

	leagueID := ratingdomain.LeagueID(chi.URLParam(r, "leagueID"))
	entityID := ratingdomain.EntityID(chi.URLParam(r, "entityID"))

	since, err := h.since.Parse(r.URL.Query().Get("since"), h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.service.GetEntityRatingHistory(ctx, leagueID, entityID, since)
	if err != nil {
		h.fail(ctx, w, "GetHistory", err)
		return
	}
	current, err := h.service.GetCurrentRating(ctx, leagueID, entityID)
	if err != nil {
		h.fail(ctx, w, "GetHistory", err)
		return
	}

	resp := historyResponse{
		LeagueID:      string(leagueID),
		EntityID:      string(entityID),
		CurrentRating: current,
		Entries:       make([]historyEntry, 0, len(records)),
	}
	for _, rec := range records {
		resp.Entries = append(resp.Entries, historyEntry{
			GameID:       string(rec.GameID),
			Timestamp:    rec.Timestamp,
			RatingBefore: rec.RatingBefore,
			Delta:        rec.Delta,
			RatingAfter:  rec.RatingAfter,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetHistoryChart serves an entity's rating history as a PNG.
func (h *Handlers) HandleGetHistoryChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ratinghttp.GetHistoryChart")
	defer span.End()

	since, err := h.since.Parse(r.URL.Query().Get("since"), h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	png, err := h.service.RatingHistoryChart(ctx,
		ratingdomain.LeagueID(chi.URLParam(r, "leagueID")),
		ratingdomain.EntityID(chi.URLParam(r, "entityID")),
		since,
	)
	if err != nil {
		h.fail(ctx, w, "GetHistoryChart", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleExportRanking serves the full ranking as an XLSX workbook.
func (h *Handlers) HandleExportRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ratinghttp.ExportRanking")
	defer span.End()

	leagueID := chi.URLParam(r, "leagueID")
	book, err := h.service.ExportRanking(ctx, ratingdomain.LeagueID(leagueID))
	if err != nil {
		h.fail(ctx, w, "ExportRanking", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": leagueID + "-ranking.xlsx"})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(book)
}

// HandleExpectedScore serves the pre-game win probability of two sides.
func (h *Handlers) HandleExpectedScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ratinghttp.ExpectedScore")
	defer span.End()

	var req expectedScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	score, err := h.service.ComputeExpectedScore(ctx, ratingdomain.LeagueID(chi.URLParam(r, "leagueID")), req.Side, req.Opposing)
	if err != nil {
		h.fail(ctx, w, "ExpectedScore", err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// HandleApplyGame stores and rates a finished game posted by an administrator.
func (h *Handlers) HandleApplyGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ratinghttp.ApplyGame")
	defer span.End()

	var req gameRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	leagueID := ratingdomain.LeagueID(chi.URLParam(r, "leagueID"))
	records, err := h.service.ApplyGameResult(ctx, req.toGame(leagueID))
	if err != nil {
		h.fail(ctx, w, "ApplyGame", err)
		return
	}

	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			GameID:       string(rec.GameID),
			Timestamp:    rec.Timestamp,
			RatingBefore: rec.RatingBefore,
			Delta:        rec.Delta,
			RatingAfter:  rec.RatingAfter,
		})
	}
	writeJSON(w, http.StatusCreated, map[string]any{"game_id": req.ID, "entries": entries})
}

// HandleRegenerate replays a league. With a scheduler the replay is enqueued
// and the request returns 202; otherwise the summary is returned.
func (h *Handlers) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ratinghttp.Regenerate")
	defer span.End()

	leagueID := chi.URLParam(r, "leagueID")

	var req regenerateRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	reason := req.Reason
	if reason == "" {
		reason = "requested by " + AdminSubject(ctx)
	}

	h.logger.InfoContext(ctx, "League regeneration requested",
		attr.LeagueID(leagueID),
		attr.String("requested_by", AdminSubject(ctx)),
		attr.String("reason", reason),
	)

	if h.scheduler != nil {
		if err := h.scheduler.EnqueueRegeneration(ctx, leagueID, reason); err != nil {
			h.fail(ctx, w, "Regenerate", err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "enqueued", "league_id": leagueID})
		return
	}

	result, err := h.service.RegenerateLeagueRanking(ctx, ratingdomain.LeagueID(leagueID))
	if err != nil {
		h.fail(ctx, w, "Regenerate", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) fail(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "HTTP request failed", attr.String("operation", operation), attr.Error(err))
		writeError(w, status, http.StatusText(status))
		return
	}
	h.logger.WarnContext(ctx, "HTTP request rejected", attr.String("operation", operation), attr.Error(err))
	writeError(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
