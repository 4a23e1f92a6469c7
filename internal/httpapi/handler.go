// Package httpapi exposes the quest engine over JSON/HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"habitquest/internal/draft"
	"habitquest/internal/engine"
	"habitquest/internal/logging"
)

type Handler struct {
	svc           *engine.Service
	gen           draft.Generator
	maxVariations int
	logger        *slog.Logger
}

func NewHandler(svc *engine.Service, gen draft.Generator, maxVariations int, logger *slog.Logger) *Handler {
	if gen == nil {
		gen = draft.NewTemplateGenerator()
	}
	if maxVariations <= 0 {
		maxVariations = draft.DefaultVariations
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, gen: gen, maxVariations: maxVariations, logger: logger}
}

// RegisterRoutes mounts the API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.leaderboard)

	r.Route("/players/{playerID}", func(r chi.Router) {
		r.Post("/", h.ensurePlayer)
		r.Get("/", h.getPlayer)
		r.Get("/achievements", h.achievements)
		r.Post("/day", h.startDay)
		r.Get("/quests", h.todayQuests)
		r.Get("/quests/{questID}", h.getQuest)
		r.Post("/quests/{questID}/progress", h.recordProgress)
		r.Post("/quests/{questID}/complete", h.completeQuest)
		r.Post("/quests/{questID}/fail", h.failQuest)
		r.Post("/sweep", h.sweep)
		r.Get("/penalties", h.penalties)

		r.Get("/templates", h.templates)
		r.Get("/custom-quests", h.listCustomQuests)
		r.Post("/custom-quests", h.createCustomQuest)
		r.Patch("/custom-quests/{templateID}", h.updateCustomQuest)
		r.Delete("/custom-quests/{templateID}", h.deleteCustomQuest)

		r.Post("/chat-quests", h.createChatQuest)
		r.Post("/variations", h.variations)
		r.Post("/variations/accept", h.acceptVariation)

		r.Post("/weekly-rewards", h.calculateWeeklyReward)
		r.Get("/weekly-rewards", h.weeklyRewards)

		r.Get("/notifications", h.notifications)
		r.Post("/notifications/{notificationID}/read", h.markNotificationRead)
		r.Post("/motivation", h.motivation)
	})
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := engine.DefaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(w, r, "limit must be a positive integer")
			return
		}
		limit = n
	}
	players, err := h.svc.Leaderboard(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]playerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, toPlayer(p))
	}
	respondJSON(w, http.StatusOK, out)
}

type ensurePlayerRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ensurePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	var req ensurePlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.EnsurePlayer(r.Context(), id, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPlayer(*p))
}

func (h *Handler) getPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	p, err := h.svc.Player(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPlayer(*p))
}

func (h *Handler) achievements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	list, err := h.svc.Achievements(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAchievements(list))
}

func (h *Handler) startDay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	quests, err := h.svc.StartDay(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toQuests(quests))
}

func (h *Handler) todayQuests(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	quests, err := h.svc.TodayQuests(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toQuests(quests))
}

func (h *Handler) getQuest(w http.ResponseWriter, r *http.Request) {
	userID, questID, ok := playerAndID(w, r, "questID")
	if !ok {
		return
	}
	q, err := h.svc.Quest(r.Context(), userID, questID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toQuest(*q))
}

type progressRequest struct {
	CurrentProgress *int `json:"currentProgress"`
}

func (h *Handler) recordProgress(w http.ResponseWriter, r *http.Request) {
	userID, questID, ok := playerAndID(w, r, "questID")
	if !ok {
		return
	}
	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CurrentProgress == nil {
		badRequest(w, r, "currentProgress is required")
		return
	}
	q, err := h.svc.RecordProgress(r.Context(), userID, questID, *req.CurrentProgress)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toQuest(*q))
}

func (h *Handler) completeQuest(w http.ResponseWriter, r *http.Request) {
	userID, questID, ok := playerAndID(w, r, "questID")
	if !ok {
		return
	}
	res, err := h.svc.CompleteQuest(r.Context(), userID, questID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := completeResponse{
		XPGained:  res.XPGained,
		LeveledUp: res.LeveledUp,
		NewLevel:  res.NewLevel,
		Streak:    res.Streak,
		Gains:     toAttributes(res.Gains),
	}
	if len(res.NewlyEarned) > 0 {
		out.Achievements = toAchievements(res.NewlyEarned)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) failQuest(w http.ResponseWriter, r *http.Request) {
	userID, questID, ok := playerAndID(w, r, "questID")
	if !ok {
		return
	}
	res, err := h.svc.FailQuest(r.Context(), userID, questID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, failResponse{
		PenaltyID:  res.PenaltyID,
		Reason:     engine.PenaltyReasonQuestFailed,
		HPLost:     res.HPLost,
		StreakLost: res.StreakLost,
	})
}

type sweepResponse struct {
	Failed []int64 `json:"failed"`
}

func (h *Handler) sweep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	failed, err := h.svc.FailOverdue(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if failed == nil {
		failed = []int64{}
	}
	respondJSON(w, http.StatusOK, sweepResponse{Failed: failed})
}

type penaltyResponse struct {
	ID         int64  `json:"id"`
	QuestID    *int64 `json:"questId,omitempty"`
	Type       string `json:"type"`
	Reason     string `json:"reason"`
	HPLost     int    `json:"hpLost"`
	StreakLost int    `json:"streakLost"`
}

func (h *Handler) penalties(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	list, err := h.svc.Penalties(r.Context(), id, 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]penaltyResponse, 0, len(list))
	for _, p := range list {
		out = append(out, penaltyResponse{ID: p.ID, QuestID: p.QuestID, Type: p.Type, Reason: p.Reason, HPLost: p.HPLost, StreakLost: p.StreakLost})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) templates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	list, err := h.svc.Templates(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]templateResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTemplate(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) listCustomQuests(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	list, err := h.svc.CustomQuests(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]templateResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTemplate(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) createCustomQuest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	var req engine.CustomQuestProposal
	if !decodeBody(w, r, &req) {
		return
	}
	a, err := h.svc.AdmitCustomQuest(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, admissionResponse{TemplateID: a.TemplateID, QuestID: a.QuestID, Message: a.Message})
}

func (h *Handler) updateCustomQuest(w http.ResponseWriter, r *http.Request) {
	userID, templateID, ok := playerAndID(w, r, "templateID")
	if !ok {
		return
	}
	var req customQuestPatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := h.svc.UpdateCustomQuest(r.Context(), userID, templateID, req.toPatch())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTemplate(*t))
}

func (h *Handler) deleteCustomQuest(w http.ResponseWriter, r *http.Request) {
	userID, templateID, ok := playerAndID(w, r, "templateID")
	if !ok {
		return
	}
	if err := h.svc.DeactivateCustomQuest(r.Context(), userID, templateID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createChatQuest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	var req engine.ChatQuestProposal
	if !decodeBody(w, r, &req) {
		return
	}
	a, err := h.svc.AdmitChatQuest(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, admissionResponse{TemplateID: a.TemplateID, QuestID: a.QuestID, Message: a.Message})
}

type variationsRequest struct {
	Idea  string `json:"idea"`
	Count int    `json:"count"`
}

type variationResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  int    `json:"difficulty"`
	XPReward    int    `json:"xpReward"`
	Category    string `json:"category"`
}

func (h *Handler) variations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	var req variationsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := h.svc.Player(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := engine.ValidateIdea(req.Idea); err != nil {
		h.writeError(w, r, err)
		return
	}
	n := req.Count
	if n <= 0 || n > h.maxVariations {
		n = h.maxVariations
	}

	list, err := h.gen.Variations(r.Context(), req.Idea, n)
	if err != nil {
		if !errors.Is(err, engine.ErrValidation) {
			logging.WithRequestID(r.Context(), h.logger, requestID(r)).Warn("variation generator failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Code: "unavailable", Message: "quest generator unavailable", RequestID: requestID(r)})
			return
		}
		h.writeError(w, r, err)
		return
	}
	out := make([]variationResponse, 0, len(list))
	for _, v := range list {
		out = append(out, variationResponse(v))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) acceptVariation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	var req variationResponse
	if !decodeBody(w, r, &req) {
		return
	}
	a, err := h.svc.AdmitVariation(r.Context(), id, engine.QuestVariation(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, admissionResponse{TemplateID: a.TemplateID, QuestID: a.QuestID, Message: a.Message})
}

type weeklyRewardRequest struct {
	QuestsCompleted *int `json:"questsCompleted"`
}

func (h *Handler) calculateWeeklyReward(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	var req weeklyRewardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var n int
	if req.QuestsCompleted != nil {
		n = *req.QuestsCompleted
	} else {
		count, err := h.svc.CompletionsThisWeek(r.Context(), id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		n = count
	}
	reward, err := h.svc.CalculateWeeklyReward(r.Context(), id, n)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toWeeklyReward(*reward))
}

func (h *Handler) weeklyRewards(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	list, err := h.svc.WeeklyRewardHistory(r.Context(), id, 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]weeklyRewardResponse, 0, len(list))
	for _, wr := range list {
		out = append(out, toWeeklyReward(wr))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	list, err := h.svc.Notifications(r.Context(), id, unread)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, notificationResponse{ID: n.ID, Type: n.Type, Title: n.Title, Content: n.Content, Reason: n.Reason, Read: n.Read, CreatedAt: n.CreatedAt})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, notificationID, ok := playerAndID(w, r, "notificationID")
	if !ok {
		return
	}
	if err := h.svc.MarkNotificationRead(r.Context(), userID, notificationID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type motivationResponse struct {
	Message string `json:"message"`
}

func (h *Handler) motivation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	p, err := h.svc.Player(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	msg, err := h.gen.Motivation(r.Context(), *p)
	if err != nil {
		logging.WithRequestID(r.Context(), h.logger, requestID(r)).Warn("motivation generator failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Code: "unavailable", Message: "quest generator unavailable", RequestID: requestID(r)})
		return
	}
	if err := h.svc.SendMotivation(r.Context(), id, "Daily motivation", msg); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, motivationResponse{Message: msg})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, r, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func playerAndID(w http.ResponseWriter, r *http.Request, name string) (int64, int64, bool) {
	userID, ok := pathID(w, r, "playerID")
	if !ok {
		return 0, 0, false
	}
	id, ok := pathID(w, r, name)
	if !ok {
		return 0, 0, false
	}
	return userID, id, true
}

// decodeBody accepts an empty body as the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, r, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
