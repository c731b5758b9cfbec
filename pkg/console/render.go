package console

import (
	"fmt"
	"reflect"
	"strings"
)

// RenderStruct renders a Go struct (or a slice of structs, or a nested
// struct field) to console output using reflection and struct tags. It
// backs the `validatectl list` table and any future command that needs to
// print a registry-shaped value without handwriting formatting code.
//
// Struct tags:
//   - `console:"title:My Title"` - section title for a nested struct field
//   - `console:"header:Column Name"` - column header for table columns
//   - `console:"omitempty"` - skips zero values
//   - `console:"-"` - skips the field entirely
func RenderStruct(v interface{}) string {
	var output strings.Builder
	renderValue(reflect.ValueOf(v), "", &output, 0)
	return output.String()
}

// renderValue recursively renders a reflect.Value to the output builder.
func renderValue(val reflect.Value, title string, output *strings.Builder, depth int) {
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		renderStruct(val, title, output, depth)
	case reflect.Slice, reflect.Array:
		renderSlice(val, title, output, depth)
	}
}

func writeSectionTitle(title string, output *strings.Builder, depth int) {
	if title == "" {
		return
	}
	if depth == 0 {
		output.WriteString(fmt.Sprintf("# %s\n\n", title))
	} else {
		output.WriteString(fmt.Sprintf("%s %s\n\n", strings.Repeat("#", depth+1), title))
	}
}

// renderStruct renders a struct as markdown-style headers with key-value pairs.
func renderStruct(val reflect.Value, title string, output *strings.Builder, depth int) {
	typ := val.Type()
	writeSectionTitle(title, output, depth)

	maxFieldLen := 0
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		tag := parseConsoleTag(typ.Field(i).Tag.Get("console"))
		if tag.skip || (tag.omitempty && isZeroValue(field)) {
			continue
		}
		fieldName := typ.Field(i).Name
		if tag.header != "" {
			fieldName = tag.header
		}
		if len(fieldName) > maxFieldLen {
			maxFieldLen = len(fieldName)
		}
	}

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		tag := parseConsoleTag(fieldType.Tag.Get("console"))
		if tag.skip || (tag.omitempty && isZeroValue(field)) {
			continue
		}

		fieldName := fieldType.Name
		if tag.header != "" {
			fieldName = tag.header
		}

		switch field.Kind() {
		case reflect.Struct, reflect.Ptr, reflect.Slice, reflect.Array:
			subTitle := tag.title
			if subTitle == "" {
				subTitle = fieldName
			}
			renderValue(field, subTitle, output, depth+1)
		default:
			paddedName := fmt.Sprintf("%-*s", maxFieldLen, fieldName)
			output.WriteString(fmt.Sprintf("  %s: %v\n", paddedName, formatFieldValue(field)))
		}
	}

	output.WriteString("\n")
}

// renderSlice renders a slice of structs as a table; a nil/empty slice renders nothing.
func renderSlice(val reflect.Value, title string, output *strings.Builder, depth int) {
	if val.Len() == 0 {
		return
	}

	elemType := val.Type().Elem()
	for elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return
	}

	writeSectionTitle(title, output, depth)
	output.WriteString(RenderTable(buildTableConfig(val)))
}

// buildTableConfig builds a TableConfig from a slice of structs.
func buildTableConfig(val reflect.Value) TableConfig {
	config := TableConfig{}
	if val.Len() == 0 {
		return config
	}

	elemType := val.Type().Elem()
	for elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}

	var fieldIndices []int
	for i := 0; i < elemType.NumField(); i++ {
		tag := parseConsoleTag(elemType.Field(i).Tag.Get("console"))
		if tag.skip {
			continue
		}
		headerName := elemType.Field(i).Name
		if tag.header != "" {
			headerName = tag.header
		}
		config.Headers = append(config.Headers, headerName)
		fieldIndices = append(fieldIndices, i)
	}

	for i := 0; i < val.Len(); i++ {
		elem := val.Index(i)
		for elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				break
			}
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			continue
		}
		row := make([]string, 0, len(fieldIndices))
		for _, fieldIdx := range fieldIndices {
			row = append(row, formatFieldValue(elem.Field(fieldIdx)))
		}
		config.Rows = append(config.Rows, row)
	}

	return config
}

// consoleTag is the parsed form of a `console:"..."` struct tag.
type consoleTag struct {
	title     string
	header    string
	omitempty bool
	skip      bool
}

func parseConsoleTag(tag string) consoleTag {
	if tag == "-" {
		return consoleTag{skip: true}
	}

	var result consoleTag
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "omitempty":
			result.omitempty = true
		case strings.HasPrefix(part, "title:"):
			result.title = strings.TrimPrefix(part, "title:")
		case strings.HasPrefix(part, "header:"):
			result.header = strings.TrimPrefix(part, "header:")
		}
	}
	return result
}

// isZeroValue reports whether val is the zero value for its type.
func isZeroValue(val reflect.Value) bool {
	if !val.IsValid() {
		return true
	}
	switch val.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return val.Len() == 0
	case reflect.Bool:
		return !val.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return val.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return val.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return val.IsNil()
	}
	return false
}

// formatFieldValue formats a reflect.Value as a string for display.
func formatFieldValue(val reflect.Value) string {
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return "-"
		}
		val = val.Elem()
	}
	if !val.IsValid() {
		return "-"
	}
	if val.Kind() == reflect.String && val.Len() == 0 {
		return "-"
	}
	return fmt.Sprintf("%v", val.Interface())
}
