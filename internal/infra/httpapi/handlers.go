// Package httpapi exposes the intake engine's read-only derived state and
// the merchant action surface to the rest of the application over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"foodtruck_order_notifier/internal/domain/intake"
	"foodtruck_order_notifier/internal/domain/order"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// IntakeAPI is the explicit-refresh surface of the intake service.
type IntakeAPI interface {
	ShowAllPendingOrders(ctx context.Context) error
	ShowOrderByID(ctx context.Context, id string) error
}

// DispatchAPI is the merchant action surface.
type DispatchAPI interface {
	Accept(ctx context.Context, id string, pickupOverride *time.Time) error
	Cancel(ctx context.Context, id string, reason string) error
	Dismiss(id string)
}

// QueueView reads the popup queue.
type QueueView interface {
	Snapshot() []*order.Order
}

// StateView reads the derived counters.
type StateView interface {
	PendingCount() int
	RefreshSeq() uint64
}

// SoundControl mirrors the chime toggle. HTTP actions count as qualifying
// merchant interactions for the unlock gate.
type SoundControl interface {
	Unlock()
	SetEnabled(enabled bool)
	Enabled() bool
}

type Handler struct {
	intake     IntakeAPI
	dispatch   DispatchAPI
	queue      QueueView
	state      StateView
	sound      SoundControl
	settings   intake.SettingsSource
	merchantID string
	logger     *logrus.Entry
}

func NewHandler(intakeAPI IntakeAPI, dispatch DispatchAPI, queue QueueView, state StateView, sound SoundControl, settings intake.SettingsSource, merchantID string, logger *logrus.Entry) *Handler {
	return &Handler{
		intake:     intakeAPI,
		dispatch:   dispatch,
		queue:      queue,
		state:      state,
		sound:      sound,
		settings:   settings,
		merchantID: merchantID,
		logger:     logger,
	}
}

type orderDTO struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	PickupTime    time.Time `json:"pickup_time"`
	CreatedAt     time.Time `json:"created_at"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	Total         float64   `json:"total"`
	Items         []itemDTO `json:"items"`
}

type itemDTO struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

func toOrderDTO(o *order.Order) orderDTO {
	items := make([]itemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemDTO{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return orderDTO{
		ID:            o.ID,
		Status:        string(o.Status),
		PickupTime:    o.PickupTime,
		CreatedAt:     o.CreatedAt,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Total:         o.Total,
		Items:         items,
	}
}

func (h *Handler) popupOrders(w http.ResponseWriter, r *http.Request) {
	snapshot := h.queue.Snapshot()
	dtos := make([]orderDTO, 0, len(snapshot))
	for _, o := range snapshot {
		dtos = append(dtos, toOrderDTO(o))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": dtos})
}

func (h *Handler) pendingCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"pending_count": h.state.PendingCount()})
}

func (h *Handler) refreshSeq(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint64{"refresh_seq": h.state.RefreshSeq()})
}

type acceptRequest struct {
	PickupTime *time.Time `json:"pickup_time,omitempty"`
}

func (h *Handler) acceptOrder(w http.ResponseWriter, r *http.Request) {
	h.sound.Unlock()
	id := chi.URLParam(r, "id")

	var req acceptRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	if err := h.dispatch.Accept(r.Context(), id, req.PickupTime); err != nil {
		h.logger.WithError(err).WithField("order_id", id).Error("accept via http failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "accept failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.sound.Unlock()
	id := chi.URLParam(r, "id")

	var req cancelRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	if err := h.dispatch.Cancel(r.Context(), id, req.Reason); err != nil {
		h.logger.WithError(err).WithField("order_id", id).Error("cancel via http failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "cancel failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) dismissOrder(w http.ResponseWriter, r *http.Request) {
	h.sound.Unlock()
	h.dispatch.Dismiss(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func (h *Handler) refreshPopupOrders(w http.ResponseWriter, r *http.Request) {
	h.sound.Unlock()
	if err := h.intake.ShowAllPendingOrders(r.Context()); err != nil {
		h.logger.WithError(err).Error("explicit refresh via http failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "refresh failed"})
		return
	}
	h.popupOrders(w, r)
}

func (h *Handler) showOrder(w http.ResponseWriter, r *http.Request) {
	h.sound.Unlock()
	id := chi.URLParam(r, "id")
	if err := h.intake.ShowOrderByID(r.Context(), id); err != nil {
		h.logger.WithError(err).WithField("order_id", id).Error("show order via http failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "show failed"})
		return
	}
	h.popupOrders(w, r)
}

type soundRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) setSound(w http.ResponseWriter, r *http.Request) {
	h.sound.Unlock()
	var req soundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.sound.SetEnabled(req.Enabled)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": h.sound.Enabled()})
}

func (h *Handler) getSound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": h.sound.Enabled()})
}

// mode reports the current operating mode so consumers can adapt their
// presentation (e.g. hide accept buttons in auto-accept mode).
func (h *Handler) mode(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.MerchantSettings(r.Context(), h.merchantID)
	if err != nil {
		h.logger.WithError(err).Error("could not load merchant settings")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "settings unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"auto_accept":      cfg.AutoAcceptOrders,
		"show_popup":       cfg.ShowOrderPopup,
		"min_prep_minutes": cfg.MinPreparationTime,
	})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
