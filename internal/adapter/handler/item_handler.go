package handler

import (
	"net/http"
	"strings"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/core/service"
)

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := queryInt(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := pageRequest(r, domain.ItemSortFields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filter := domain.ItemFilter{ID: id, Name: strings.TrimSpace(r.URL.Query().Get("name"))}
	items, err := h.items.ListItems(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successPage(h.now(), "Success get items", domain.MapPage(items, toItemResponse)))
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.items.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success(h.now(), "Success get item", toItemResponse(item)))
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	req, err := decodeBody[service.ItemRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.items.CreateItem(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success(h.now(), "Item created successfully", toItemResponse(item)))
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	req, err := decodeBody[service.ItemRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.items.UpdateItem(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success(h.now(), "Item updated successfully", toItemResponse(item)))
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.items.DeleteItem(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success[any](h.now(), "Item deleted successfully"))
}
