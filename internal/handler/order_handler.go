package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"orderservice/internal/domain/model"
	"orderservice/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// /orders のルートを登録。bodyMWはbodyを受けるルートにだけ付ける。
func (h *OrderHandler) RegisterRoutes(g *echo.Group, bodyMW ...echo.MiddlewareFunc) {
	g.GET("", h.list)
	g.POST("", h.create, bodyMW...)
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.update, bodyMW...)
	g.DELETE("/:id", h.delete)
	g.GET("/:id/items", h.items)
	g.PUT("/:id/items", h.replaceItems, bodyMW...)
}

func (h *OrderHandler) list(c echo.Context) error {
	ctx := c.Request().Context()

	//customer（customer_idも可）で絞り込み
	raw := c.QueryParam("customer")
	if raw == "" {
		raw = c.QueryParam("customer_id")
	}

	var (
		orders []model.Order
		err    error
	)
	if raw != "" {
		customerID, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid customer"))
		}
		orders, err = h.uc.FindByCustomer(ctx, customerID)
	} else {
		orders, err = h.uc.All(ctx)
	}
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, serializeOrders(orders))
}

func (h *OrderHandler) create(c echo.Context) error {
	var in model.Order
	if err := in.Deserialize(decodeBody(c)); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Create(c.Request().Context(), in, in.ItemList)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, orderLocation(out.ID))
	return c.JSON(http.StatusCreated, out.Serialize())
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.FindOr404(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out.Serialize())
}

// body の item_list があれば明細も総入れ替え
func (h *OrderHandler) update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}
	//bodyより先に存在確認（なければ404）
	if _, err := h.uc.FindOr404(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	var in model.Order
	if err := in.Deserialize(decodeBody(c)); err != nil {
		return writeError(c, err)
	}
	in.ID = id

	out, err := h.uc.Update(c.Request().Context(), in, in.ItemList)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out.Serialize())
}

// 存在しなくても 204
func (h *OrderHandler) delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) items(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	items, err := h.uc.Items(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, lo.Map(items, func(it model.OrderItem, _ int) map[string]any {
		return it.Serialize()
	}))
}

func (h *OrderHandler) replaceItems(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}
	if _, err := h.uc.FindOr404(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	items, err := model.DeserializeItemReplacement(decodeBody(c))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ReplaceItems(c.Request().Context(), id, items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out.Serialize())
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// JSONとして読めないbodyはnil（Deserialize側で400になる）
func decodeBody(c echo.Context) any {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil
	}
	return body
}

func serializeOrders(orders []model.Order) []map[string]any {
	return lo.Map(orders, func(o model.Order, _ int) map[string]any {
		return o.Serialize()
	})
}

func orderLocation(id int64) string {
	return fmt.Sprintf("/orders/%d", id)
}
