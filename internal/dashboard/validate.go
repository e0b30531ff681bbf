package dashboard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/go-playground/validator/v10"
)

// MaxImageBytes is the largest product image accepted for upload.
const MaxImageBytes = 5 << 20

// ValidationError is a form constraint violation caught before any
// network call.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCreate checks a product form and its optional image. It reports
// the first problem in form order.
func ValidateCreate(req product.CreateProductRequest, image *apiclient.ImageUpload) error {
	if err := validate.Struct(req); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			fe := fields[0]
			return &ValidationError{Field: fe.Field(), Rule: fe.Tag(), Message: createMessage(fe)}
		}
		return err
	}

	if image != nil {
		return ValidateImage(image.ContentType, image.Size)
	}
	return nil
}

func ValidateImage(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return &ValidationError{Field: "image", Rule: "image", Message: "Please select a valid image file"}
	}
	if size > MaxImageBytes {
		return &ValidationError{Field: "image", Rule: "max", Message: "Image size should be less than 5MB"}
	}
	return nil
}

func createMessage(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "name.required":
		return "Product name is required"
	case "cropType.required":
		return "Crop type is required"
	case "price.gt":
		return "Price must be greater than 0"
	case "quantity.gt":
		return "Quantity must be greater than 0"
	}

	switch fe.Tag() {
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
