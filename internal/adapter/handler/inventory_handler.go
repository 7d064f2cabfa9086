package handler

import (
	"net/http"
	"strings"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/core/service"
)

func (h *HTTPHandler) ListInventories(w http.ResponseWriter, r *http.Request) {
	id, err := queryInt(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	itemID, err := queryInt(r, "itemId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := pageRequest(r, domain.InventorySortFields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filter := domain.InventoryFilter{ID: id, ItemID: itemID, Type: strings.TrimSpace(r.URL.Query().Get("type"))}
	inventories, err := h.inventories.ListInventories(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successPage(h.now(), "Success get inventories", domain.MapPage(inventories, toInventoryResponse)))
}

func (h *HTTPHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	inv, err := h.inventories.GetInventory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success(h.now(), "Success get inventory", toInventoryResponse(inv)))
}

func (h *HTTPHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	req, err := decodeBody[service.InventoryRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	inv, err := h.inventories.CreateInventory(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success(h.now(), "Inventory created successfully", toInventoryResponse(inv)))
}

// UpdateInventory answers with INV-UPD-000 whatever the body holds.
func (h *HTTPHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	_, err := h.inventories.UpdateInventory(r.Context(), nil)
	h.writeError(w, r, err)
}

func (h *HTTPHandler) DeleteInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.inventories.DeleteInventory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success[any](h.now(), "Inventory deleted successfully"))
}
