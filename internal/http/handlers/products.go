package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/farmchainx/dashboard/internal/domain/rating"
	"github.com/farmchainx/dashboard/internal/qr"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
)

type RatingsReader interface {
	ProductRatings(ctx context.Context, productID string) ([]rating.Rating, error)
}

type ProductsHandler struct {
	dashboards Dashboards
	ratingsFor func(s session.Session) RatingsReader
	format     qr.Formatter
	now        func() time.Time
}

func NewProductsHandler(dashboards Dashboards, ratingsFor func(s session.Session) RatingsReader, format qr.Formatter) *ProductsHandler {
	return &ProductsHandler{
		dashboards: dashboards,
		ratingsFor: ratingsFor,
		format:     format,
		now:        time.Now,
	}
}

func (h *ProductsHandler) Create(ctx *gin.Context) {
	var req product.CreateProductRequest
	if !BindMultipart(ctx, &req) {
		return
	}

	image, cleanup, err := imageFromForm(ctx, "image")
	if err != nil {
		RespondBadRequest(ctx, "Could not read image", nil)
		return
	}
	defer cleanup()

	d, _, ok := currentDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	p, err := d.CreateProduct(ctx.Request.Context(), req, image)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"product": p,
		"message": "Product created successfully!",
	})
}

func (h *ProductsHandler) Update(ctx *gin.Context) {
	var req product.UpdateProductRequest
	if !BindJSON(ctx, &req) {
		return
	}

	d, _, ok := currentDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	p, err := d.UpdateProduct(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProductsHandler) Delete(ctx *gin.Context) {
	d, _, ok := currentDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	if err := d.DeleteProduct(ctx.Request.Context(), ctx.Param("id")); err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *ProductsHandler) Rate(ctx *gin.Context) {
	var req rating.SubmitRequest
	if !BindJSON(ctx, &req) {
		return
	}

	d, _, ok := currentDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	if err := d.Rate(ctx.Request.Context(), ctx.Param("id"), req); err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Thanks for your rating!"})
}

func (h *ProductsHandler) Ratings(ctx *gin.Context) {
	_, s, ok := currentDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	items, err := h.ratingsFor(s).ProductRatings(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondErr(ctx, err)
		return
	}
	if items == nil {
		items = []rating.Rating{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// find resolves :id against the caller's current snapshot.
func (h *ProductsHandler) find(ctx *gin.Context) (product.Product, bool) {
	d, _, ok := loadDashboard(ctx, h.dashboards)
	if !ok {
		return product.Product{}, false
	}

	p, err := d.Find(ctx.Param("id"))
	if err != nil {
		RespondErr(ctx, err)
		return product.Product{}, false
	}
	return p, true
}

func (h *ProductsHandler) Details(ctx *gin.Context) {
	p, ok := h.find(ctx)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"product": p,
		"fields":  qr.BuildDisplayFields(p, h.format),
	})
}

func (h *ProductsHandler) QRPayload(ctx *gin.Context) {
	p, ok := h.find(ctx)
	if !ok {
		return
	}

	payload := qr.BuildPayload(p, h.now())
	encoded, err := payload.Encode()
	if err != nil {
		RespondInternal(ctx, "Could not build QR payload")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"payload": payload,
		"encoded": encoded,
	})
}

type qrQuery struct {
	Size     int  `form:"size" binding:"omitempty,min=64,max=1024"`
	Download bool `form:"download"`
}

func (h *ProductsHandler) QR(ctx *gin.Context) {
	var q qrQuery
	if !BindQuery(ctx, &q) {
		return
	}

	p, ok := h.find(ctx)
	if !ok {
		return
	}

	png, err := h.renderQR(p, q.Size)
	if err != nil {
		RespondInternal(ctx, "Could not render QR code")
		return
	}

	if q.Download {
		filename := "product-" + string(p.ID) + "-qr.png"
		ctx.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", png)
}

func (h *ProductsHandler) Report(ctx *gin.Context) {
	p, ok := h.find(ctx)
	if !ok {
		return
	}

	// the report still renders with a placeholder if the QR fails
	png, err := h.renderQR(p, qr.DefaultSize)
	if err != nil {
		_ = ctx.Error(err)
		png = nil
	}

	html, err := qr.BuildReport(p, qr.BuildDisplayFields(p, h.format), png, h.now(), h.format)
	if err != nil {
		RespondInternal(ctx, "Could not build report")
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *ProductsHandler) renderQR(p product.Product, size int) ([]byte, error) {
	encoded, err := qr.BuildPayload(p, h.now()).Encode()
	if err != nil {
		return nil, err
	}
	return qr.RenderPNG(encoded, size)
}

// imageFromForm opens an optional uploaded file. A missing part is not an
// error and yields nil.
func imageFromForm(ctx *gin.Context, field string) (*apiclient.ImageUpload, func(), error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &apiclient.ImageUpload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}, func() { _ = f.Close() }, nil
}
