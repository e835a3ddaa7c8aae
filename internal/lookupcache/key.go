package lookupcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key derives a cache key from a tool name and its typed input. Struct
// fields marshal in declaration order, so equal inputs hash equally.
func Key(tool string, input interface{}) (string, error) {
	data, err := json.Marshal(struct {
		Tool  string      `json:"tool"`
		Input interface{} `json:"input"`
	}{tool, input})
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key: %w", err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
