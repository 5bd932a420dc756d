package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-jobs/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-jobs/internal/interface/http/response"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/conversation"
)

// ConversationHandler: чат клиента и исполнителя. Беседы создаются
// диспетчером outbox при приглашении или принятии отклика.
type ConversationHandler struct {
	listMine *conversation.ListMyConversationsUseCase
	send     *conversation.SendMessageUseCase
	messages *conversation.ListMessagesUseCase
}

func NewConversationHandler(
	listMine *conversation.ListMyConversationsUseCase,
	send *conversation.SendMessageUseCase,
	messages *conversation.ListMessagesUseCase,
) *ConversationHandler {
	return &ConversationHandler{listMine: listMine, send: send, messages: messages}
}

func (h *ConversationHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	convs, err := h.listMine.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToConversationResponses(convs, userID))
}

func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	convID, ok := pathUUID(c, "conversationId")
	if !ok {
		return
	}

	msgs, err := h.messages.Execute(c.Request.Context(), convID, userID,
		parseIntQuery(c, "limit", conversation.DefaultMessagesLimit),
		parseIntQuery(c, "offset", 0),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToMessageResponses(msgs, userID))
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	convID, ok := pathUUID(c, "conversationId")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "текст сообщения обязателен")
		return
	}

	msg, err := h.send.Execute(c.Request.Context(), convID, userID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToMessageResponse(msg, userID))
}
