package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-jobs/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-jobs/internal/interface/http/response"
	"github.com/ignatzorin/freelance-jobs/internal/storage"
)

// AttachmentHandler принимает файлы, на которые потом ссылаются заказы и отклики.
type AttachmentHandler struct {
	storage *storage.AttachmentStorage
}

func NewAttachmentHandler(storage *storage.AttachmentStorage) *AttachmentHandler {
	return &AttachmentHandler{storage: storage}
}

// Upload обрабатывает POST /api/attachments (multipart, поле file).
func (h *AttachmentHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "поле file обязательно")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "не удалось прочитать файл")
		return
	}
	defer file.Close()

	stored, err := h.storage.Save(c.Request.Context(), userID, header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToAttachmentResponse(stored))
}

// Delete обрабатывает DELETE /api/attachments?ref=/uploads/...
func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ref := c.Query("ref")
	if ref == "" {
		response.BadRequest(c, "параметр ref обязателен")
		return
	}
	if err := h.storage.Delete(c.Request.Context(), userID, ref); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"ref": ref})
}
