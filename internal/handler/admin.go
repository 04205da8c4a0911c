package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/queue"
	"github.com/leemaz/marketplace-api/internal/repository"
	queue_publisher "github.com/leemaz/marketplace-api/internal/service"
)

// AdminHandler serves the admin panel: user management, manual credit
// adjustments and shop moderation.
type AdminHandler struct {
	Users   *repository.UserRepo
	Shops   *repository.ShopRepo
	Credits *repository.CreditRepo
}

func NewAdminHandler(users *repository.UserRepo, shops *repository.ShopRepo, credits *repository.CreditRepo) *AdminHandler {
	if users == nil || shops == nil || credits == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: users, Shops: shops, Credits: credits}
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, offset := pageParams(c, 50, 200)
	users, err := h.Users.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": users})
}

type setActiveReq struct {
	IsActive bool `json:"is_active"`
}

// SetUserActive handles PUT /v1/admin/users/:id/active. Deactivation is
// a soft block: the record and everything it owns stay in place, and the
// account can be reactivated later.
func (h *AdminHandler) SetUserActive(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req setActiveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Users.SetActive(c.Request().Context(), userID, req.IsActive); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": userID, "is_active": req.IsActive})
}

type adjustCreditsReq struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// AdjustCredits handles POST /v1/admin/users/:id/credits: a signed
// manual grant or deduction. The balance change and its ledger entry
// commit together, and a deduction below zero is refused the same way a
// listing fee is.
func (h *AdminHandler) AdjustCredits(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req adjustCreditsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Amount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be non-zero"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	reason := model.ReasonAdminGrant
	if req.Amount < 0 {
		reason = model.ReasonAdminDeduct
	}

	tx, err := h.Users.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Users.AdjustCreditsTx(ctx, tx, userID, req.Amount); err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "insufficient credits"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "adjust failed"})
	}
	entry := &model.CreditTransaction{
		UserID:      userID,
		Amount:      req.Amount,
		Reason:      reason,
		ActorID:     &adminID,
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.Credits.InsertTx(ctx, tx, entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ledger write failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusOK, entry)
}

// ListPendingShops handles GET /v1/admin/shops/pending, oldest first.
func (h *AdminHandler) ListPendingShops(c echo.Context) error {
	limit, offset := pageParams(c, 50, 200)
	shops, err := h.Shops.ListByStatus(c.Request().Context(), model.ShopPending, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": shops})
}

// ApproveShop handles PUT /v1/admin/shops/:id/approve.
func (h *AdminHandler) ApproveShop(c echo.Context) error {
	return h.moderate(c, model.ShopApproved, "")
}

type rejectShopReq struct {
	Reason string `json:"reason"`
}

// RejectShop handles PUT /v1/admin/shops/:id/reject.
func (h *AdminHandler) RejectShop(c echo.Context) error {
	var req rejectShopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return h.moderate(c, model.ShopRejected, strings.TrimSpace(req.Reason))
}

// moderate drives the shop state machine. Repeating a decision is an
// idempotent no-op; REJECTED is terminal, so a rejected shop can never
// be approved afterwards. The transition itself is a check-and-set on
// the state observed here, so two racing admins cannot both win.
func (h *AdminHandler) moderate(c echo.Context, target, reason string) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	shopID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shop id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shop, err := h.Shops.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if shop.Status == target {
		return c.JSON(http.StatusOK, shop)
	}
	if shop.Status == model.ShopRejected {
		return c.JSON(http.StatusConflict, echo.Map{"error": "rejected shops cannot be re-moderated"})
	}

	if err := h.Shops.SetStatus(ctx, shopID, shop.Status, target, adminID, reason); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "shop state changed, retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	shop, err = h.Shops.GetByID(ctx, shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	go func(s model.Shop) {
		_ = queue_publisher.PublishShopModerated(context.Background(), queue.ShopModeratedEvent{
			ShopID:      s.ID,
			ShopName:    s.Name,
			OwnerID:     s.OwnerID,
			Status:      s.Status,
			Reason:      s.RejectionReason,
			ModeratorID: adminID,
			ModeratedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}(*shop)

	return c.JSON(http.StatusOK, shop)
}
