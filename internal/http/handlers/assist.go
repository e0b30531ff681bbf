package handlers

import (
	"context"
	"net/http"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/dashboard"
	"github.com/gin-gonic/gin"
)

type ChatAPI interface {
	Ask(ctx context.Context, question string) (apiclient.ChatAnswer, error)
}

type ClassifierAPI interface {
	Classify(ctx context.Context, image apiclient.ImageUpload) (apiclient.Prediction, error)
}

// AssistHandler fronts the farming assistant chat and the produce image
// classifier.
type AssistHandler struct {
	chat       ChatAPI
	classifier ClassifierAPI
}

func NewAssistHandler(chat ChatAPI, classifier ClassifierAPI) *AssistHandler {
	return &AssistHandler{chat: chat, classifier: classifier}
}

type chatRequest struct {
	Question string `json:"question" binding:"required,max=2000"`
}

func (h *AssistHandler) Chat(ctx *gin.Context) {
	var req chatRequest
	if !BindJSON(ctx, &req) {
		return
	}

	ans, err := h.chat.Ask(ctx.Request.Context(), req.Question)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, ans)
}

func (h *AssistHandler) Classify(ctx *gin.Context) {
	image, cleanup, err := imageFromForm(ctx, "file")
	if err != nil {
		RespondBadRequest(ctx, "Could not read image", nil)
		return
	}
	defer cleanup()

	if image == nil {
		RespondErr(ctx, &dashboard.ValidationError{Field: "file", Rule: "required", Message: "Please select an image"})
		return
	}
	if err := dashboard.ValidateImage(image.ContentType, image.Size); err != nil {
		RespondErr(ctx, err)
		return
	}

	pred, err := h.classifier.Classify(ctx.Request.Context(), *image)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, pred)
}
