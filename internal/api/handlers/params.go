// params.go — разбор параметров запроса и полей тела с явным null.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/oapi-codegen/runtime"

	apierrors "github.com/bigkaa/goartstore/planner-module/internal/api/errors"
)

// bindQuery разбирает query-параметр name в dest (form, explode).
// При ошибке отвечает 400 с именем параметра и возвращает false.
func bindQuery(w http.ResponseWriter, r *http.Request, name string, required bool, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		apierrors.ValidationFields(w, "Некорректный параметр запроса", map[string]string{name: err.Error()})
		return false
	}
	return true
}

// nullableString различает отсутствующее поле, явный null и строку.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// input переводит значение во входные данные сервиса:
// nil — поле не меняется, пустая строка — значение очищается.
func (n nullableString) input() *string {
	if !n.Set {
		return nil
	}
	if n.Value == nil {
		empty := ""
		return &empty
	}
	return n.Value
}
