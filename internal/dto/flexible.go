package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexibleInt decodes from a JSON number or a numeric string.
type FlexibleInt int64

func (f *FlexibleInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*f = FlexibleInt(n)
		return nil
	}

	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexibleInt(n)
	return nil
}
