package service

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

// Prices are stored as DECIMAL(19, 4).
const priceScale = 4

// Request fields are pointers so that an absent field can be told apart
// from a zero value.

type ItemRequest struct {
	ID    *int             `json:"id" validate:"required,int32"`
	Name  *string          `json:"name" validate:"required,notblank,max=255"`
	Price *decimal.Decimal `json:"price" validate:"required,gt=0,lt=1000000000000000"`
}

type InventoryRequest struct {
	ID     *int    `json:"id" validate:"required,int32"`
	ItemID *int    `json:"itemId" validate:"required,int32"`
	Qty    *int64  `json:"qty" validate:"required,gt=0,int32"`
	Type   *string `json:"type" validate:"required,notblank,movement"`
}

type OrderRequest struct {
	OrderNo *string `json:"orderNo" validate:"required,notblank,trimmax=64"`
	ItemID  *int    `json:"itemId" validate:"required,int32"`
	Qty     *int64  `json:"qty" validate:"required,gt=0,int32"`
}

// Each rule set maps a field and tag to the kind reported when it fails.
// Tags without an entry are range checks and report ErrMalformedRequest.

var itemRules = map[string]domain.ErrorKind{
	"ID.required":    domain.ErrItemIDRequired,
	"Name.required":  domain.ErrItemNameRequired,
	"Name.notblank":  domain.ErrItemNameRequired,
	"Price.required": domain.ErrItemPriceRequired,
	"Price.gt":       domain.ErrItemPriceNotPositive,
}

var inventoryRules = map[string]domain.ErrorKind{
	"ID.required":     domain.ErrInventoryIDRequired,
	"ItemID.required": domain.ErrInventoryItemIDRequired,
	"Qty.required":    domain.ErrInventoryQtyRequired,
	"Qty.gt":          domain.ErrInventoryQtyNotPositive,
	"Type.required":   domain.ErrInventoryTypeRequired,
	"Type.notblank":   domain.ErrInventoryTypeRequired,
	"Type.movement":   domain.ErrInventoryTypeInvalid,
}

var orderRules = map[string]domain.ErrorKind{
	"OrderNo.required": domain.ErrOrderNoRequired,
	"OrderNo.notblank": domain.ErrOrderNoRequired,
	"ItemID.required":  domain.ErrOrderItemIDRequired,
	"Qty.required":     domain.ErrOrderQtyInvalid,
	"Qty.gt":           domain.ErrOrderQtyInvalid,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("int32", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= math.MinInt32 && n <= math.MaxInt32
	})
	must("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	must("trimmax", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) <= limit
	})
	must("movement", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseMovementType(fl.Field().String())
		return ok
	})
	return v
}

// check reports the first failing rule only. Fields are validated in
// declaration order and each field stops at its first failing tag.
func check(req any, rules map[string]domain.ErrorKind) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if kind, ok := rules[fe.StructField()+"."+fe.Tag()]; ok {
		return kind
	}
	return domain.Errorf(domain.ErrMalformedRequest, "field "+fe.Field()+" is out of range")
}

func validateItemRequest(req *ItemRequest) (domain.Item, error) {
	if req == nil {
		return domain.Item{}, domain.ErrItemRequestNull
	}
	r := *req
	if r.Price != nil {
		price := r.Price.Round(priceScale)
		r.Price = &price
	}
	if err := check(&r, itemRules); err != nil {
		return domain.Item{}, err
	}
	return domain.Item{ID: *r.ID, Name: *r.Name, Price: *r.Price}, nil
}

func validateInventoryRequest(req *InventoryRequest) (domain.Inventory, error) {
	if req == nil {
		return domain.Inventory{}, domain.ErrInventoryRequestNull
	}
	if err := check(req, inventoryRules); err != nil {
		return domain.Inventory{}, err
	}
	movementType, _ := domain.ParseMovementType(*req.Type)
	return domain.Inventory{ID: *req.ID, ItemID: *req.ItemID, Quantity: *req.Qty, Type: movementType}, nil
}

func validateOrderRequest(req *OrderRequest) (domain.Order, error) {
	if req == nil {
		return domain.Order{}, domain.ErrOrderRequestNull
	}
	if err := check(req, orderRules); err != nil {
		return domain.Order{}, err
	}
	return domain.Order{OrderNo: strings.TrimSpace(*req.OrderNo), ItemID: *req.ItemID, Quantity: *req.Qty}, nil
}
