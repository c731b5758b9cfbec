package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ExtractYAMLError extracts line and column information from a YAML
// parsing error returned by github.com/goccy/go-yaml, for rendering a
// precise "pipeline config invalid at line X, column Y" diagnostic instead
// of goccy's default one-line message.
func ExtractYAMLError(err error) (line int, column int, message string) {
	originalErr := err
	for unwrapped := errors.Unwrap(originalErr); unwrapped != nil; unwrapped = errors.Unwrap(originalErr) {
		originalErr = unwrapped
	}

	line, column, message = extractFromGoccyError(originalErr)
	if line > 0 || column > 0 {
		return line, column, message
	}

	if originalErr != err {
		line, column, message = extractFromGoccyError(err)
		if line > 0 || column > 0 {
			return line, column, message
		}
	}

	return extractFromStringParsing(err.Error())
}

// extractFromGoccyError reaches into goccy/go-yaml's unexported error
// structure via reflection, since the library does not expose a typed
// accessor for the token position.
func extractFromGoccyError(err error) (line int, column int, message string) {
	errorValue := reflect.ValueOf(err)
	if errorValue.Kind() != reflect.Ptr || errorValue.IsNil() {
		return 0, 0, ""
	}
	errorValue = errorValue.Elem()

	messageField := errorValue.FieldByName("Message")
	if messageField.IsValid() && messageField.Kind() == reflect.String {
		message = messageField.String()
	}

	tokenField := errorValue.FieldByName("Token")
	if !tokenField.IsValid() || tokenField.Kind() != reflect.Ptr || tokenField.IsNil() {
		return 0, 0, message
	}
	tokenValue := tokenField.Elem()

	positionField := tokenValue.FieldByName("Position")
	if !positionField.IsValid() || positionField.Kind() != reflect.Ptr || positionField.IsNil() {
		return 0, 0, message
	}
	positionValue := positionField.Elem()

	lineField := positionValue.FieldByName("Line")
	columnField := positionValue.FieldByName("Column")
	if lineField.IsValid() && lineField.Kind() == reflect.Int {
		line = int(lineField.Int())
	}
	if columnField.IsValid() && columnField.Kind() == reflect.Int {
		column = int(columnField.Int())
	}

	if line <= 0 && column <= 1 {
		return 0, 0, message
	}
	return line, column, message
}

// extractFromStringParsing is a fallback for goccy error shapes the
// reflection path does not recognize, or for a differently-formatted
// message string.
func extractFromStringParsing(errStr string) (line int, column int, message string) {
	if strings.Contains(errStr, "yaml: line ") && strings.Contains(errStr, "column ") {
		parts := strings.SplitN(errStr, "yaml: line ", 2)
		if len(parts) > 1 {
			lineInfo := parts[1]
			colonIndex := strings.Index(lineInfo, ":")
			if colonIndex > 0 {
				lineStr := lineInfo[:colonIndex]
				if _, parseErr := fmt.Sscanf(lineStr, "%d", &line); parseErr == nil {
					remaining := lineInfo[colonIndex+1:]
					if strings.Contains(remaining, "column ") {
						columnParts := strings.SplitN(remaining, "column ", 2)
						if len(columnParts) > 1 {
							columnInfo := columnParts[1]
							colonIndex2 := strings.Index(columnInfo, ":")
							if colonIndex2 > 0 {
								columnStr := columnInfo[:colonIndex2]
								message = strings.TrimSpace(columnInfo[colonIndex2+1:])
								if _, parseErr := fmt.Sscanf(columnStr, "%d", &column); parseErr == nil {
									return
								}
							}
						}
					}
				}
			}
		}
	}

	if strings.Contains(errStr, "yaml: line ") {
		parts := strings.SplitN(errStr, "yaml: line ", 2)
		if len(parts) > 1 {
			lineInfo := parts[1]
			colonIndex := strings.Index(lineInfo, ":")
			if colonIndex > 0 {
				lineStr := lineInfo[:colonIndex]
				message = strings.TrimSpace(lineInfo[colonIndex+1:])
				if _, parseErr := fmt.Sscanf(lineStr, "%d", &line); parseErr == nil {
					column = 0
					return
				}
			}
		}
	}

	if strings.Contains(errStr, "yaml: unmarshal errors:") && strings.Contains(errStr, "line ") {
		for _, errorLine := range strings.Split(errStr, "\n") {
			errorLine = strings.TrimSpace(errorLine)
			if strings.Contains(errorLine, "line ") && strings.Contains(errorLine, ":") {
				parts := strings.SplitN(errorLine, "line ", 2)
				if len(parts) > 1 {
					colonIndex := strings.Index(parts[1], ":")
					if colonIndex > 0 {
						lineStr := parts[1][:colonIndex]
						restOfMessage := strings.TrimSpace(parts[1][colonIndex+1:])
						if _, parseErr := fmt.Sscanf(lineStr, "%d", &line); parseErr == nil {
							column = 0
							message = restOfMessage
							return
						}
					}
				}
			}
		}
	}

	return 0, 0, errStr
}
