// params.go — разбор и валидация query-параметров GET /api/users.
package handlers

import (
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"

	apierrors "github.com/bigkaa/presight/internal/api/errors"
	"github.com/bigkaa/presight/internal/domain/model"
)

// Границы параметров листинга.
const (
	minPage  = 1
	minLimit = 1
	maxLimit = 100
)

// listUsersParams — query-параметры листинга (nil — параметр не передан).
type listUsersParams struct {
	Page        *int
	Limit       *int
	Search      *string
	Nationality *string
	Hobby       *string
	Sort        *string
	Order       *string
}

// sortFieldsMessage — перечень допустимых полей сортировки для сообщения об ошибке.
var sortFieldsMessage = func() string {
	names := make([]string, len(model.SortFields))
	for i, f := range model.SortFields {
		names[i] = string(f)
	}
	return "Sort must be one of: " + strings.Join(names, ", ")
}()

// parseUserFilter разбирает query в model.UserFilter.
// Пустые значения считаются отсутствующими; отсутствующие page/limit/sort/order
// получают значения по умолчанию. Возвращает ошибки по всем некорректным полям.
func parseUserFilter(query url.Values) (model.UserFilter, []apierrors.FieldError) {
	query = withoutEmpty(query)

	var (
		params listUsersParams
		errs   []apierrors.FieldError
	)
	bind := func(name string, dest any, message string) {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			errs = append(errs, apierrors.FieldError{Field: name, Message: message})
		}
	}

	bind("page", &params.Page, "Page must be a positive integer")
	bind("limit", &params.Limit, "Limit must be between 1 and 100")
	bind("search", &params.Search, "Search term must be a string")
	bind("nationality", &params.Nationality, "Nationality must be a string")
	bind("hobby", &params.Hobby, "Hobby must be a string")
	bind("sort", &params.Sort, "Sort must be a string")
	bind("order", &params.Order, "Order must be a string")

	filter := model.UserFilter{
		Page:  model.DefaultPage,
		Limit: model.DefaultLimit,
		Sort:  model.DefaultSort,
		Order: model.DefaultOrder,
	}

	if params.Page != nil {
		if *params.Page < minPage {
			errs = appendOnce(errs, "page", "Page must be a positive integer")
		} else {
			filter.Page = *params.Page
		}
	}
	if params.Limit != nil {
		if *params.Limit < minLimit || *params.Limit > maxLimit {
			errs = appendOnce(errs, "limit", "Limit must be between 1 and 100")
		} else {
			filter.Limit = *params.Limit
		}
	}

	filter.Search = trimmed(params.Search)
	filter.Nationality = trimmed(params.Nationality)
	filter.Hobby = trimmed(params.Hobby)

	if s := trimmed(params.Sort); s != "" {
		if field, ok := model.ParseSortField(s); ok {
			filter.Sort = field
		} else {
			errs = appendOnce(errs, "sort", sortFieldsMessage)
		}
	}
	if params.Order != nil {
		if order, ok := model.ParseSortOrder(strings.TrimSpace(*params.Order)); ok {
			filter.Order = order
		} else {
			errs = appendOnce(errs, "order", "Order must be either ASC or DESC")
		}
	}

	return filter, errs
}

// withoutEmpty возвращает копию query без пустых значений.
func withoutEmpty(query url.Values) url.Values {
	out := make(url.Values, len(query))
	for name, values := range query {
		for _, v := range values {
			if v != "" {
				out[name] = append(out[name], v)
			}
		}
	}
	return out
}

// appendOnce добавляет ошибку поля, если для него ещё нет ошибки.
func appendOnce(errs []apierrors.FieldError, field, message string) []apierrors.FieldError {
	for _, e := range errs {
		if e.Field == field {
			return errs
		}
	}
	return append(errs, apierrors.FieldError{Field: field, Message: message})
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
