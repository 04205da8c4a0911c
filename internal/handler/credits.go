package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/repository"
)

// CreditHandler exposes a user's balance and their ledger history.
type CreditHandler struct {
	Users   *repository.UserRepo
	Credits *repository.CreditRepo
}

func NewCreditHandler(users *repository.UserRepo, credits *repository.CreditRepo) *CreditHandler {
	if users == nil || credits == nil {
		panic("nil repository passed to NewCreditHandler")
	}
	return &CreditHandler{Users: users, Credits: credits}
}

// Balance handles GET /v1/credits/balance.
func (h *CreditHandler) Balance(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"credits": u.Credits})
}

// Transactions handles GET /v1/credits/transactions?page=N. Pages are
// 1-based and fixed-size, newest entries first.
func (h *CreditHandler) Transactions(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	entries, err := h.Credits.ListByUser(c.Request().Context(), userID, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":      page,
		"page_size": repository.LedgerPageSize,
		"items":     entries,
	})
}
