package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// StringList decodes from a JSON array or a bare string. Model output is not
// consistent about which one it sends.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(StringList, 0, len(raw))
		for _, item := range raw {
			if s := rawToString(item); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	default:
		*l = StringList{rawToString(data)}
		return nil
	}
}

// FlexText decodes any JSON value into its text form.
type FlexText string

func (t *FlexText) UnmarshalJSON(data []byte) error {
	*t = FlexText(rawToString(data))
	return nil
}

var leadingNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// FlexNumber accepts numbers and numeric strings such as "8", "7.5" or "8/10".
// A string with no number in it, such as "N/A", decodes as zero so the
// surrounding object still decodes.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = FlexNumber(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	match := leadingNumber.FindString(s)
	if match == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = FlexNumber(f)
	return nil
}

func (n FlexNumber) Int() int {
	return int(math.Round(float64(n)))
}

func rawToString(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(data)
}
