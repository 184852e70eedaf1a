package validation

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/smartcontractkit/scaffold-cli/internal/manifest"
	"github.com/smartcontractkit/scaffold-cli/internal/source"
	"github.com/smartcontractkit/scaffold-cli/internal/transport"
)

func stringField(fl validator.FieldLevel) string {
	field := fl.Field()
	if field.Kind() != reflect.String {
		panic(fmt.Sprintf("input field name is not a string: %s", fl.FieldName()))
	}
	return field.String()
}

func isRepoURL(fl validator.FieldLevel) bool {
	return source.IsValidURL(stringField(fl))
}

func isTemplateName(fl validator.FieldLevel) bool {
	return manifest.ValidateName(stringField(fl)) == nil
}

// isTransportMode accepts "git", "tar" and the empty string, which falls back
// to the configured default.
func isTransportMode(fl validator.FieldLevel) bool {
	mode := stringField(fl)
	if mode == "" {
		return true
	}
	_, err := transport.ParseMode(mode)
	return err == nil
}
