package stages

import (
	"strings"

	"scriptdna/internal/jsonrepair"
)

// Shape names the response layout a parser recognised.
type Shape string

const (
	ShapeArray        Shape = "array"
	ShapeContent      Shape = "content"
	ShapeScript       Shape = "script"
	ShapeData         Shape = "data"
	ShapeText         Shape = "text"
	ShapeFirstArray   Shape = "first_array_field"
	ShapeUnrecognized Shape = "unrecognized"
)

// scriptWrapperKeys are the wrapper properties checked, in order, when the
// model returns an object instead of an array of rows.
var scriptWrapperKeys = []Shape{ShapeContent, ShapeScript, ShapeData}

// scriptItems applies the script-part extraction rules in order.
func scriptItems(value jsonrepair.Value) ([]jsonrepair.Value, Shape) {
	if items, ok := value.Array(); ok {
		return items, ShapeArray
	}
	if value.Kind() != jsonrepair.KindObject {
		return nil, ShapeUnrecognized
	}
	for _, key := range scriptWrapperKeys {
		if items, ok := value.ArrayField(string(key)); ok {
			return items, key
		}
	}
	if text, ok := value.StringField("text"); ok && strings.TrimSpace(text) != "" {
		return []jsonrepair.Value{value}, ShapeText
	}
	return nil, ShapeUnrecognized
}

// strategyItems accepts a bare array or the first array-valued property of
// an object, in document order.
func strategyItems(value jsonrepair.Value) ([]jsonrepair.Value, Shape) {
	if items, ok := value.Array(); ok {
		return items, ShapeArray
	}
	if _, items, ok := value.FirstArrayField(); ok {
		return items, ShapeFirstArray
	}
	return nil, ShapeUnrecognized
}

// rowsFrom keeps {text} objects and bare strings; blank rows are dropped.
func rowsFrom(items []jsonrepair.Value) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		text, ok := item.String()
		if !ok {
			text, ok = item.StringField("text")
		}
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		rows = append(rows, Row{Text: strings.TrimSpace(text)})
	}
	return rows
}

func stringOr(value jsonrepair.Value, key, fallback string) string {
	if s, ok := value.StringField(key); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return fallback
}
