// Пакет openapi — встроенный OpenAPI-контракт API планировщика
// и проверка входящих запросов по нему (kin-openapi).
package openapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	apierrors "github.com/bigkaa/goartstore/planner-module/internal/api/errors"
)

//go:embed openapi.yaml
var specYAML []byte

// Spec возвращает исходный текст контракта.
func Spec() []byte {
	return specYAML
}

// Validator проверяет запросы по контракту.
type Validator struct {
	router routers.Router
	logger *slog.Logger
}

// NewValidator загружает и проверяет встроенный контракт.
func NewValidator(logger *slog.Logger) (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("загрузка OpenAPI: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("некорректный OpenAPI: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("маршрутизатор OpenAPI: %w", err)
	}

	return &Validator{
		router: router,
		logger: logger.With(slog.String("component", "openapi_validator")),
	}, nil
}

// Validate проверяет запрос. Запросы к путям вне контракта не проверяются.
// Тело запроса после проверки остаётся доступным для чтения.
func (v *Validator) Validate(ctx context.Context, r *http.Request) error {
	route, pathParams, err := v.router.FindRoute(r)
	if err != nil {
		if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
			return nil
		}
		return err
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	return openapi3filter.ValidateRequest(ctx, input)
}

// Middleware отвечает 400 VALIDATION_ERROR на запросы, не соответствующие контракту.
func (v *Validator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := v.Validate(r.Context(), r); err != nil {
				v.logger.Debug("Запрос не прошёл проверку контракта",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				field, msg := describe(err)
				if field == "" {
					apierrors.ValidationError(w, msg)
					return
				}
				apierrors.ValidationFields(w, "Некорректный запрос", map[string]string{field: msg})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// describe возвращает имя поля (если оно известно) и сообщение об ошибке.
func describe(err error) (string, string) {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return "", err.Error()
	}

	if reqErr.Parameter != nil {
		return reqErr.Parameter.Name, reasonOf(reqErr)
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(reqErr.Err, &schemaErr) {
		if ptr := schemaErr.JSONPointer(); len(ptr) > 0 {
			return ptr[0], schemaErr.Reason
		}
		return "", schemaErr.Reason
	}

	var parseErr *openapi3filter.ParseError
	if errors.As(reqErr.Err, &parseErr) {
		return "", "Некорректный JSON: " + parseErr.Error()
	}

	return "", reasonOf(reqErr)
}

func reasonOf(reqErr *openapi3filter.RequestError) string {
	if reqErr.Err != nil {
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			return schemaErr.Reason
		}
		return strings.TrimSpace(reqErr.Err.Error())
	}
	if reqErr.Reason != "" {
		return reqErr.Reason
	}
	return reqErr.Error()
}
