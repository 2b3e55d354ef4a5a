package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"sheetpos/pos/internal/domain"
	"sheetpos/pos/internal/receipt"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type loadPayload struct {
	URL string `json:"url"`
}

type selectPayload struct {
	ProductID int `json:"product_id"`
}

type addPayload struct {
	ProductID int      `json:"product_id"`
	Price     *float64 `json:"price"`
	Tier      string   `json:"tier"`
}

type stepPayload struct {
	Direction int `json:"direction"`
}

type quantityPayload struct {
	// Quantity accepts operator text ("500 gm") or a plain number.
	Quantity any `json:"quantity"`
}

type pricePayload struct {
	Price *float64 `json:"price"`
}

func (s *Server) listProducts(c echo.Context) error {
	products := s.service.Search(c.QueryParam("q"))
	return ok(c, map[string]any{
		"products": products,
		"total":    len(products),
	})
}

func (s *Server) catalogStatus(c echo.Context) error {
	return ok(c, s.service.Status())
}

func (s *Server) exportCatalog(c echo.Context) error {
	data, err := s.service.ExportCatalog()
	if err != nil {
		return failWith(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="catalog.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func (s *Server) loadCatalog(c echo.Context) error {
	var payload loadPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_request", "Unable to parse request", err.Error())
	}

	status, err := s.service.LoadFromURL(c.Request().Context(), payload.URL)
	if err != nil {
		return failWith(c, err)
	}
	return ok(c, status)
}

func (s *Server) reloadCatalog(c echo.Context) error {
	status, err := s.service.Reload(c.Request().Context())
	if err != nil {
		return failWith(c, err)
	}
	return ok(c, status)
}

func (s *Server) uploadCatalog(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, domain.KindInvalidSource.String(), "Please choose an Excel file to upload", err.Error())
	}

	file, err := header.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, domain.KindInvalidSource.String(), "Unable to read uploaded file", err.Error())
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fail(c, http.StatusBadRequest, domain.KindInvalidSource.String(), "Unable to read uploaded file", err.Error())
	}

	status, err := s.service.LoadFromFile(header.Filename, data)
	if err != nil {
		return failWith(c, err)
	}
	return ok(c, status)
}

func (s *Server) getCart(c echo.Context) error {
	return ok(c, s.service.Cart())
}

func (s *Server) clearCart(c echo.Context) error {
	s.service.ClearCart()
	return ok(c, s.service.Cart())
}

func (s *Server) selectProduct(c echo.Context) error {
	var payload selectPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_request", "Unable to parse request", err.Error())
	}

	selection, err := s.service.SelectProduct(payload.ProductID)
	if err != nil {
		return failWith(c, err)
	}

	options := make([]map[string]any, 0, len(selection.Options))
	for _, option := range selection.Options {
		options = append(options, map[string]any{
			"tier":  option.Tier,
			"label": option.Tier.GetTierName(),
			"price": option.Price,
		})
	}
	return ok(c, map[string]any{
		"product":   selection.Product,
		"options":   options,
		"suggested": selection.Suggested,
	})
}

func (s *Server) addItem(c echo.Context) error {
	var payload addPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_request", "Unable to parse request", err.Error())
	}

	if _, err := s.service.AddToCart(payload.ProductID, payload.Price, payload.Tier); err != nil {
		return failWith(c, err)
	}
	return ok(c, s.service.Cart())
}

func (s *Server) stepItem(c echo.Context) error {
	index, err := lineIndex(c)
	if err != nil {
		return badIndex(c)
	}

	var payload stepPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_request", "Unable to parse request", err.Error())
	}

	view, err := s.service.StepQuantity(index, payload.Direction)
	if err != nil {
		return failWith(c, err)
	}
	return ok(c, view)
}

func (s *Server) setQuantity(c echo.Context) error {
	index, err := lineIndex(c)
	if err != nil {
		return badIndex(c)
	}

	var payload quantityPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_request", "Unable to parse request", err.Error())
	}

	raw, err := cast.ToStringE(payload.Quantity)
	if err != nil {
		return fail(c, http.StatusBadRequest, domain.KindInvalidQuantity.String(), "Quantity must be text or a number", nil)
	}

	if _, err := s.service.SetQuantity(index, raw); err != nil {
		return failWith(c, err)
	}
	return ok(c, s.service.Cart())
}

func (s *Server) editPrice(c echo.Context) error {
	index, err := lineIndex(c)
	if err != nil {
		return badIndex(c)
	}

	var payload pricePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_request", "Unable to parse request", err.Error())
	}
	if payload.Price == nil {
		return fail(c, http.StatusBadRequest, domain.KindInvalidPrice.String(), "Price is required", nil)
	}

	if _, err := s.service.EditPrice(index, *payload.Price); err != nil {
		return failWith(c, err)
	}
	return ok(c, s.service.Cart())
}

func (s *Server) removeItem(c echo.Context) error {
	index, err := lineIndex(c)
	if err != nil {
		return badIndex(c)
	}

	if err := s.service.RemoveLine(index); err != nil {
		return failWith(c, err)
	}
	return ok(c, s.service.Cart())
}

func (s *Server) previewReceipt(c echo.Context) error {
	if !validFormat(c) {
		return badFormat(c)
	}

	r, err := s.service.PreviewReceipt(c.QueryParam("lang"))
	if err != nil {
		return failWith(c, err)
	}
	return s.writeReceipt(c, r)
}

func (s *Server) checkout(c echo.Context) error {
	if !validFormat(c) {
		return badFormat(c)
	}

	r, err := s.service.Checkout(c.QueryParam("lang"))
	if err != nil {
		return failWith(c, err)
	}
	return s.writeReceipt(c, r)
}

// writeReceipt renders the receipt in the format named by ?format=.
func (s *Server) writeReceipt(c echo.Context, r *domain.Receipt) error {
	switch strings.ToLower(c.QueryParam("format")) {
	case "", "json":
		return ok(c, r)
	case "html":
		page, err := s.service.RenderReceiptHTML(r)
		if err != nil {
			return failWith(c, err)
		}
		return c.HTMLBlob(http.StatusOK, page)
	case "csv":
		data, err := receipt.RenderCSV(r)
		if err != nil {
			return failWith(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="receipt-%s.csv"`, r.ID))
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
	default:
		return badFormat(c)
	}
}

func validFormat(c echo.Context) bool {
	switch strings.ToLower(c.QueryParam("format")) {
	case "", "json", "html", "csv":
		return true
	}
	return false
}

func badFormat(c echo.Context) error {
	return fail(c, http.StatusBadRequest, "invalid_request", "Unsupported receipt format, use json, html or csv", c.QueryParam("format"))
}

func lineIndex(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("index"))
}

func badIndex(c echo.Context) error {
	return fail(c, http.StatusBadRequest, "invalid_request", "Line index must be a number", c.Param("index"))
}
