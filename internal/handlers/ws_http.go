package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AG-1laksh/JanPath-sub001/internal/events"
	"github.com/AG-1laksh/JanPath-sub001/internal/middleware"
	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/repository"
	"github.com/AG-1laksh/JanPath-sub001/internal/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHTTP streams full result-set snapshots over WebSocket. A client
// subscribes to one topic per connection; it receives the current snapshot
// immediately and a fresh one after every mutation that touches the topic.
// Closing the connection disposes the hub subscription.
type WSHTTP struct {
	hub        *events.Hub
	grievances repository.GrievanceRepository
	requests   repository.RequestRepository
	users      repository.UserRepository
	secret     string
	log        zerolog.Logger
}

func NewWSHTTP(hub *events.Hub, g repository.GrievanceRepository, rq repository.RequestRepository,
	u repository.UserRepository, secret string, log zerolog.Logger) *WSHTTP {
	return &WSHTTP{hub: hub, grievances: g, requests: rq, users: u, secret: secret, log: log}
}

type wsSnapshot struct {
	Topic string `json:"topic"`
	Items any    `json:"items"`
}

// GET /api/ws?topic=T. Auth via session cookie, Bearer header, or ?token=
// (browsers cannot set headers on WebSocket requests).
func (h *WSHTTP) Subscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, role, ok := h.identify(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}

		topic := strings.TrimSpace(r.URL.Query().Get("topic"))
		if topic == "" {
			utils.Error(w, http.StatusBadRequest, "topic is required")
			return
		}
		if !h.authorizeTopic(r.Context(), topic, uid, role) {
			utils.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Error().Err(err).Msg("ws upgrade failed")
			return
		}

		ch, cancel := h.hub.Subscribe(topic)
		defer cancel()
		defer conn.Close()

		// Reader pump: we never expect client frames, but reading is how we
		// learn the peer went away.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		// Initial snapshot, then one per event.
		if !h.push(r.Context(), conn, topic) {
			return
		}
		for {
			select {
			case <-done:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				if !h.push(r.Context(), conn, topic) {
					return
				}
			}
		}
	}
}

func (h *WSHTTP) push(ctx context.Context, conn *websocket.Conn, topic string) bool {
	items, err := h.snapshot(ctx, topic)
	if err != nil {
		h.log.Error().Err(err).Str("topic", topic).Msg("snapshot query failed")
		return false
	}
	if err := conn.WriteJSON(wsSnapshot{Topic: topic, Items: items}); err != nil {
		return false
	}
	return true
}

// identify resolves the caller from middleware context or the token query
// param. Role comes from the users table either way.
func (h *WSHTTP) identify(r *http.Request) (uid, role string, ok bool) {
	uid, _ = utils.GetString(r.Context(), middleware.CtxUserID)
	role, _ = utils.GetString(r.Context(), middleware.CtxRole)
	if uid != "" {
		return uid, role, true
	}

	tok := r.URL.Query().Get("token")
	if tok == "" {
		return "", "", false
	}
	claims, err := utils.ParseJWT(h.secret, tok)
	if err != nil {
		return "", "", false
	}
	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil || u == nil {
		return "", "", false
	}
	return u.ID, u.Role, true
}

func (h *WSHTTP) authorizeTopic(ctx context.Context, topic, uid, role string) bool {
	if role == models.RoleAdmin {
		return true
	}
	switch {
	case topic == events.TopicUnassigned,
		topic == events.TopicWorkerRequests,
		topic == events.TopicSignupRequests:
		return false
	case strings.HasPrefix(topic, "grievances:user:"):
		return strings.TrimPrefix(topic, "grievances:user:") == uid
	case strings.HasPrefix(topic, "grievances:worker:"):
		return strings.TrimPrefix(topic, "grievances:worker:") == uid
	case strings.HasPrefix(topic, "timeline:"):
		g, err := h.grievances.Get(ctx, strings.TrimPrefix(topic, "timeline:"))
		if err != nil || g == nil {
			return false
		}
		return g.UserID == uid || g.AssignedWorkerID == uid
	}
	return false
}

func (h *WSHTTP) snapshot(ctx context.Context, topic string) (any, error) {
	switch {
	case topic == events.TopicUnassigned:
		return h.grievances.List(ctx, repository.GrievanceFilter{
			Status:     models.StatusSubmitted,
			Unassigned: true,
		})
	case topic == events.TopicWorkerRequests:
		return h.requests.ListWorkerRequests(ctx, models.RequestPending, "")
	case topic == events.TopicSignupRequests:
		return h.requests.ListSignupRequests(ctx, models.RequestPending)
	case strings.HasPrefix(topic, "grievances:user:"):
		return h.grievances.List(ctx, repository.GrievanceFilter{
			UserID: strings.TrimPrefix(topic, "grievances:user:"),
		})
	case strings.HasPrefix(topic, "grievances:worker:"):
		return h.grievances.List(ctx, repository.GrievanceFilter{
			WorkerID: strings.TrimPrefix(topic, "grievances:worker:"),
		})
	case strings.HasPrefix(topic, "timeline:"):
		return h.grievances.Logs(ctx, strings.TrimPrefix(topic, "timeline:"))
	}
	return nil, nil
}
