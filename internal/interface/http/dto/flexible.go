package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var jsonNull = []byte("null")

// StringList принимает строку, массив строк или null. Строка становится
// списком из одного элемента, null и отсутствие поля дают пустой список.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*l = StringList{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		if strings.TrimSpace(single) == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("ожидалась строка или массив строк: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	*l = list
	return nil
}

// Slice никогда не возвращает nil.
func (l StringList) Slice() []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// Amount: сумма из формы: число, строка или null. Разбор в число делает use case.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, jsonNull):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("ожидалось число или строка: %w", err)
		}
		*a = Amount(n.String())
	}
	return nil
}

func (a Amount) String() string {
	return string(a)
}

func optionalAmount(a *Amount) *string {
	if a == nil {
		return nil
	}
	s := a.String()
	return &s
}

func optionalList(l *StringList) []string {
	if l == nil {
		return nil
	}
	return l.Slice()
}
