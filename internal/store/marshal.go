package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalFeatures converts a feature list to JSON TEXT for storage.
// A nil list is stored as [] so reads never see null.
func marshalFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(features); err != nil {
		return "", fmt.Errorf("marshal features: %w", err)
	}
	// Encoder appends a newline
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unmarshalFeatures converts stored JSON TEXT back to a feature list.
func unmarshalFeatures(data string) ([]string, error) {
	features := []string{}
	if err := json.Unmarshal([]byte(data), &features); err != nil {
		return nil, fmt.Errorf("unmarshal features: %w", err)
	}
	return features, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
