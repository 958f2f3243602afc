package form

import (
	"reflect"
	"sort"
	"strings"

	"pioneer-tui/chain"

	"github.com/go-playground/validator/v10"
)

// Draft holds the editable string fields of a form.
type Draft map[string]string

// Action sets one field of a draft.
type Action struct {
	Type  string
	Value string
}

// Reduce returns a new draft equal to d except for the field named by a.
// d itself is never modified.
func Reduce(d Draft, a Action) Draft {
	out := make(Draft, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	out[a.Type] = a.Value
	return out
}

// CheckEdits reports whether any field of d differs from baseline. A missing
// field and an empty one are treated as equal.
func CheckEdits(d Draft, baseline map[string]string) bool {
	for k, v := range d {
		if baseline[k] != v {
			return true
		}
	}
	return false
}

// Errors maps a field name to its first validation message.
type Errors map[string]string

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Valid reports whether there are no errors.
func (e Errors) Valid() bool { return len(e) == 0 }

// Fields returns the names of the fields with errors, sorted.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e Errors) String() string {
	var parts []string
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

func (e Errors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

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
	_ = v.RegisterValidation("ss58", func(fl validator.FieldLevel) bool {
		return chain.IsValidAddress(fl.Field().String())
	})
	// ss58ne=Field: not the same account as Field, whatever the network prefix
	_ = v.RegisterValidation("ss58ne", func(fl validator.FieldLevel) bool {
		other := reflect.Indirect(fl.Parent()).FieldByName(fl.Param())
		if !other.IsValid() || other.Kind() != reflect.String {
			return false
		}
		return !chain.SameAccount(fl.Field().String(), other.String())
	})
	return v
}

// collect turns validator errors into messages keyed by json field name.
// messages overrides the default text per "field.tag".
func collect(err error, errs Errors, prefix string, messages map[string]string) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		if err != nil {
			errs.add(prefix, err.Error())
		}
		return
	}
	for _, fe := range verrs {
		field := fe.Field()
		if prefix != "" {
			field = prefix + "." + field
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = defaultMessage(fe)
		}
		errs.add(field, msg)
	}
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return "Maximum length is " + fe.Param()
	case "min", "gte":
		return "Minimum value is " + fe.Param()
	case "url", "http_url":
		return "Invalid URL"
	case "ss58":
		return "Invalid address"
	}
	return "Invalid value"
}
