package chat

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"VConnct/logger"
	"VConnct/middleware"
	"VConnct/module/chat/service"
	errs "VConnct/tools/errs"
)

const maxImageBytes = 10 << 20

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the message routes under /api/message. The :id routes must
// come after the named ones so "contacts"/"conversations" don't bind as ids.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/contacts", h.Contacts)
	r.GET("/conversations", h.Conversations)
	r.GET("/:id", h.Messages)
	r.POST("/send/:id", h.Send)
}

func (h *Handler) Contacts(c *gin.Context) {
	self := middleware.CurrentUser(c)
	contacts, err := h.svc.Contacts(c.Request.Context(), self.ID)
	if err != nil {
		logger.Errorf("[chat] list contacts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (h *Handler) Conversations(c *gin.Context) {
	self := middleware.CurrentUser(c)
	convs, err := h.svc.Conversations(c.Request.Context(), self.ID)
	if err != nil {
		logger.Errorf("[chat] list conversations failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, convs)
}

func (h *Handler) Messages(c *gin.Context) {
	self := middleware.CurrentUser(c)
	msgs, err := h.svc.Messages(c.Request.Context(), self.ID, c.Param("id"))
	if err != nil {
		logger.Errorf("[chat] list messages failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

type sendRequest struct {
	Text string `json:"text"`
}

func (h *Handler) Send(c *gin.Context) {
	self := middleware.CurrentUser(c)
	receiverID := c.Param("id")

	var (
		text      string
		image     []byte
		imageType string
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		text = c.PostForm("text")
		if file, header, err := c.Request.FormFile("image"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
			if err != nil || len(data) > maxImageBytes {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid image"})
				return
			}
			image = data
			imageType = header.Header.Get("Content-Type")
		}
	} else {
		var req sendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
			return
		}
		text = req.Text
	}

	msg, err := h.svc.Send(c.Request.Context(), self.ID, receiverID, text, image, imageType)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"message": errs.Msg(err)})
			return
		}
		logger.Errorf("[chat] send message failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusCreated, msg)
}
