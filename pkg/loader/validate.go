package loader

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/vanderheijden86/treekit/pkg/model"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance returns the shared validator with the node tags registered.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		// node_id: not blank, no control characters
		_ = v.RegisterValidation("node_id", func(fl validator.FieldLevel) bool {
			return validNodeID(fl.Field().String())
		})

		validateInst = v
	})
	return validateInst
}

// GetValidator exposes the configured validator to other packages.
func GetValidator() *validator.Validate {
	return validatorInstance()
}

func validNodeID(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// validateDocument runs the struct tags and then the forest-wide uniqueness check.
func validateDocument(path string, doc *Document) error {
	if err := validatorInstance().Struct(doc); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			return &ValidationError{
				Path:  path,
				Field: fieldPath(fe.Namespace()),
				Err:   fmt.Errorf("failed validation for tag '%s'", fe.Tag()),
			}
		}
		return &ValidationError{Path: path, Err: err}
	}
	if err := model.ValidateForest(doc.Nodes); err != nil {
		return &ValidationError{Path: path, Err: err}
	}
	return nil
}

// fieldPath turns "Document.Nodes[0].Children[1].ID" into "nodes[0].children[1].id".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}
