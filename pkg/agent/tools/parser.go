package tools

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

const (
	defaultServerName = "local"
	maxXMLSize        = 1 << 20
)

var toolRegex = regexp.MustCompile(`(?s)<tool>.*?</tool>`)

// entityRegex matches ampersands that already start an XML entity.
var entityRegex = regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|#\d+|#x[0-9a-fA-F]+);`)

// ParseToolCall extracts the first <tool> element from text. It returns the
// call and the text with the call removed.
func ParseToolCall(text string) (*ToolCall, string, error) {
	if len(text) > maxXMLSize {
		return nil, text, fmt.Errorf("tool call XML exceeds maximum size of %d bytes", maxXMLSize)
	}

	loc := toolRegex.FindStringIndex(text)
	if loc == nil {
		return nil, text, fmt.Errorf("no tool call found in text")
	}

	var call ToolCall
	if err := UnmarshalXMLWithFallback([]byte(text[loc[0]:loc[1]]), &call); err != nil {
		return nil, text, fmt.Errorf("failed to unmarshal tool call XML: %w", err)
	}
	if call.ToolName == "" {
		return nil, text, fmt.Errorf("tool_name is required in tool call")
	}
	if call.ServerName == "" {
		call.ServerName = defaultServerName
	}

	remaining := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return &call, remaining, nil
}

// UnmarshalXMLWithFallback unmarshals XML, retrying once with bare
// ampersands escaped. Model-written XML often contains raw & in URLs.
func UnmarshalXMLWithFallback(data []byte, v interface{}) error {
	err := xml.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	return xml.Unmarshal(escapeBareAmpersands(data), v)
}

// escapeBareAmpersands replaces & with &amp; unless it starts an entity.
func escapeBareAmpersands(data []byte) []byte {
	text := string(data)

	entities := make(map[int]bool)
	for _, m := range entityRegex.FindAllStringIndex(text, -1) {
		entities[m[0]] = true
	}

	var b strings.Builder
	b.Grow(len(text) + 16)
	for i := 0; i < len(text); i++ {
		if text[i] == '&' && !entities[i] {
			b.WriteString("&amp;")
			continue
		}
		b.WriteByte(text[i])
	}
	return []byte(b.String())
}
