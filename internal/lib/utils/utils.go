// Package utils contains small helpers that don't belong to a specific
// layer.
package utils

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrintJSON writes v to w as tab-indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
