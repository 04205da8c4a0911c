package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/repository"
)

// ChatHandler serves buyer-seller direct messaging.
type ChatHandler struct {
	Users *repository.UserRepo
	Chats *repository.ChatRepo
}

func NewChatHandler(users *repository.UserRepo, chats *repository.ChatRepo) *ChatHandler {
	if users == nil || chats == nil {
		panic("nil repository passed to NewChatHandler")
	}
	return &ChatHandler{Users: users, Chats: chats}
}

type sendMessageReq struct {
	ReceiverID uint64 `json:"receiver_id"`
	Body       string `json:"body"`
}

// SendMessage handles POST /v1/chat/messages.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	senderID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.ReceiverID == 0 || req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "receiver_id and body are required"})
	}
	if req.ReceiverID == senderID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot message yourself"})
	}

	if _, err := h.Users.GetByID(c.Request().Context(), req.ReceiverID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "recipient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	msg := &model.ChatMessage{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
	}
	if err := h.Chats.Insert(c.Request().Context(), msg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send failed"})
	}
	return c.JSON(http.StatusCreated, msg)
}

// ListConversations handles GET /v1/chat/conversations: one row per
// peer with the latest message and the unread count.
func (h *ChatHandler) ListConversations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	convs, err := h.Chats.Conversations(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": convs})
}

// GetThread handles GET /v1/chat/messages/:id where :id is the peer.
// Fetching a thread marks the peer's messages as read.
func (h *ChatHandler) GetThread(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	peerID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid peer id"})
	}
	limit, offset := pageParams(c, 50, 200)
	msgs, err := h.Chats.Thread(c.Request().Context(), userID, peerID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Chats.MarkRead(c.Request().Context(), userID, peerID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark read failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": msgs})
}
