package feedback

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// unmarshalJSON decodes data into v, repairing malformed JSON on a syntax
// error.
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

func parseReport(text string) (*Report, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReport
	}
	var r Report
	if err := unmarshalJSON([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("feedback: decode report: %w", err)
	}
	if r.Empty() {
		return nil, ErrEmptyReport
	}
	return &r, nil
}
