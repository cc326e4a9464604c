package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/repository"
)

// Context keys written by the JWT middleware.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// dbTimeout bounds the storage work of a single request.
const dbTimeout = 5 * time.Second

var validate = newValidator()

func dbContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// currentUserID returns the authenticated caller's id.
func currentUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id > 0
}

func parseIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// bindAndValidate decodes the request body into dst and validates it.  It
// writes the 400 response itself and returns false when the body is
// unusable.
func bindAndValidate(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := validationErrors(validate.Struct(dst)); errs != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	return true, nil
}

// validationErrors flattens validator errors into a field -> message map
// keyed by json paths such as "tickets[0].row".
func validationErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return map[string]string{"non_field_errors": err.Error()}
	}
	out := make(map[string]string, len(ves))
	for _, fe := range ves {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if _, seen := out[field]; !seen {
			out[field] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("Ensure this field has at least %s elements.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	}
	return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
}

// storeError translates repository failures into HTTP responses.  Anything
// unexpected is logged and reported as 500 without details.
func storeError(c echo.Context, log *slog.Logger, err error) error {
	var fe *repository.FieldError
	if errors.As(err, &fe) {
		msgs := make([]string, 0, len(fe.IDs))
		for _, id := range fe.IDs {
			msgs = append(msgs, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{fe.Field: strings.Join(msgs, " ")}})
	}
	var te *repository.TicketError
	if errors.As(err, &te) {
		field := ticketField(te.Index, te.Field)
		switch {
		case errors.Is(err, repository.ErrSeatTaken):
			return c.JSON(http.StatusConflict, echo.Map{"errors": map[string]string{field: "This seat is already taken."}})
		case errors.Is(err, repository.ErrSeatOutOfRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{field: "Outside the hall's seating grid."}})
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{field: "Object does not exist."}})
		}
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case errors.Is(err, repository.ErrSeatsSold):
		return c.JSON(http.StatusConflict, echo.Map{"error": "sold tickets fall outside the new seat grid"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "resource is still referenced"})
	case errors.Is(err, repository.ErrInvalidReference):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "referenced object does not exist"})
	}
	log.ErrorContext(c.Request().Context(), "store failure",
		slog.String("method", c.Request().Method),
		slog.String("path", c.Path()),
		slog.Any("err", err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}

func ticketField(i int, name string) string {
	return fmt.Sprintf("tickets[%d].%s", i, name)
}
