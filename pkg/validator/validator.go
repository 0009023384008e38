package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one per-field validation failure in an error response.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func FieldErrors(validationErrors validator.ValidationErrors) []FieldError {
	fields := make([]FieldError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		fields = append(fields, FieldError{
			Path:    strings.ToLower(fieldError.Field()),
			Message: getFieldErrorMessage(fieldError),
		})
	}
	return fields
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s wajib diisi", field)
	case "email":
		return fmt.Sprintf("%s harus berupa email yang valid", field)
	case "uuid":
		return fmt.Sprintf("%s harus berupa UUID yang valid", field)
	case "oneof":
		return fmt.Sprintf("%s harus salah satu dari: %s", field, fe.Param())
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s minimal %s karakter", field, fe.Param())
		}
		return fmt.Sprintf("%s minimal %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s maksimal %s karakter", field, fe.Param())
		}
		return fmt.Sprintf("%s maksimal %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s tidak valid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Name":        "Nama",
		"Email":       "Email",
		"Password":    "Password",
		"Role":        "Role",
		"Title":       "Judul",
		"Author":      "Penulis",
		"ISBN":        "ISBN",
		"Publisher":   "Penerbit",
		"PublishYear": "Tahun terbit",
		"LibraryID":   "Perpustakaan",
		"BookID":      "Buku",
		"Status":      "Status",
		"OverdueDays": "Batas hari pinjam",
		"ToEmail":     "Email tujuan",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
