// Package catalog - Pricing table validation
// Enforces table structure and the uniqueness of each workload tuple.
package catalog

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"dbu-cost/core/pricing"
	"dbu-cost/core/types"
	"dbu-cost/internal/errors"
)

// validate caches struct metadata and is safe for concurrent use
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks table structure and duplicate workload tuples.
// Every problem found is reported; the error is a VALIDATION_ERROR whose
// Issues list them in order.
func Validate(table *types.PricingTable) error {
	if table == nil {
		return errors.New(errors.TypeValidation, "pricing table failed validation").
			WithIssues("pricing payload is not an object")
	}

	var merr *multierror.Error

	if err := validate.Struct(table); err != nil {
		var fieldErrs validator.ValidationErrors
		if !stderrors.As(err, &fieldErrs) {
			return errors.Internal("pricing table validator misconfigured", err)
		}
		for _, fe := range fieldErrs {
			merr = multierror.Append(merr, fmt.Errorf("%s %s", fieldPath(fe), describe(fe)))
		}
	}

	for _, dup := range pricing.DetectDuplicates(table.Records) {
		merr = multierror.Append(merr, stderrors.New(dup))
	}

	if err := merr.ErrorOrNil(); err != nil {
		return errors.Validation("pricing table failed validation", err)
	}
	return nil
}

// fieldPath turns "PricingTable.workloads[0].service" into "/workloads/0/service"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	var b strings.Builder
	for _, part := range strings.Split(ns, ".") {
		name, index := part, ""
		if open := strings.Index(part, "["); open >= 0 && strings.HasSuffix(part, "]") {
			name, index = part[:open], part[open+1:len(part)-1]
		}
		b.WriteString("/" + name)
		if index != "" {
			b.WriteString("/" + index)
		}
	}
	return b.String()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must contain at least " + fe.Param() + " item(s)"
	case "gte":
		return "must be >= " + fe.Param()
	case "url":
		return "must be a URI"
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "iso4217":
		return "must be an ISO-4217 currency code"
	default:
		return "failed " + strconv.Quote(fe.Tag())
	}
}
