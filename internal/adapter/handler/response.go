package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

const trxDateLayout = "02-01-2006 15:04:05"

// Response is the envelope every /api/v1 endpoint answers with. Data is
// always an array: empty, a single element, or the content of a page.
type Response[T any] struct {
	IsError         bool      `json:"isError"`
	ErrorNumber     *string   `json:"errorNumber"`
	Message         string    `json:"message"`
	TrxDateResponse string    `json:"trxDateResponse"`
	Data            []T       `json:"data"`
	Page            *PageInfo `json:"page,omitempty"`
}

type PageInfo struct {
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func success[T any](now time.Time, message string, data ...T) Response[T] {
	if data == nil {
		data = []T{}
	}
	return Response[T]{
		Message:         message,
		TrxDateResponse: now.Format(trxDateLayout),
		Data:            data,
	}
}

func successPage[T any](now time.Time, message string, page domain.Page[T]) Response[T] {
	resp := success(now, message, page.Content...)
	resp.Page = &PageInfo{
		Number:        page.Number,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages(),
	}
	return resp
}

func failure(now time.Time, code, message string) Response[any] {
	return Response[any]{
		IsError:         true,
		ErrorNumber:     &code,
		Message:         message,
		TrxDateResponse: now.Format(trxDateLayout),
		Data:            []any{},
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Payloads

type ItemResponse struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	Price          json.Number `json:"price"`
	RemainingStock int64       `json:"remainingStock"`
}

type InventoryResponse struct {
	ID     int    `json:"id"`
	ItemID int    `json:"itemId"`
	Qty    int64  `json:"qty"`
	Type   string `json:"type"`
}

type OrderResponse struct {
	OrderNo string      `json:"orderNo"`
	ItemID  int         `json:"itemId"`
	Qty     int64       `json:"qty"`
	Price   json.Number `json:"price"`
}

// price renders a decimal as a bare JSON number.
func price(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func toItemResponse(it domain.ItemStock) ItemResponse {
	return ItemResponse{
		ID:             it.ID,
		Name:           it.Name,
		Price:          price(it.Price),
		RemainingStock: it.RemainingStock,
	}
}

func toInventoryResponse(inv domain.Inventory) InventoryResponse {
	return InventoryResponse{
		ID:     inv.ID,
		ItemID: inv.ItemID,
		Qty:    inv.Quantity,
		Type:   string(inv.Type),
	}
}

func toOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		OrderNo: o.OrderNo,
		ItemID:  o.ItemID,
		Qty:     o.Quantity,
		Price:   price(o.Price),
	}
}
