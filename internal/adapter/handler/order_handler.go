package handler

import (
	"net/http"
	"strings"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/core/service"
)

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	itemID, err := queryInt(r, "itemId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := pageRequest(r, domain.OrderSortFields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filter := domain.OrderFilter{OrderNo: strings.TrimSpace(r.URL.Query().Get("orderNo")), ItemID: itemID}
	orders, err := h.orders.ListOrders(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successPage(h.now(), "Success get orders", domain.MapPage(orders, toOrderResponse)))
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), r.PathValue("orderNo"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success(h.now(), "Success get order", toOrderResponse(order)))
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	req, err := decodeBody[service.OrderRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success(h.now(), "Order created successfully", toOrderResponse(order)))
}

func (h *HTTPHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	req, err := decodeBody[service.OrderRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.orders.UpdateOrder(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success(h.now(), "Order updated successfully", toOrderResponse(order)))
}

func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteOrder(r.Context(), r.PathValue("orderNo")); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success[any](h.now(), "Order delete successfully"))
}
