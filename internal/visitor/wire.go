package visitor

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Request is the body posted to the counting service.
type Request struct {
	User string `json:"user"`
}

// Response is what the counting service answers with.
type Response struct {
	Message string  `json:"message"`
	Count   float64 `json:"count"`
}

type Kind string

const (
	KindMissing Kind = "missing"
	KindNull    Kind = "null"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBool    Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// KindOf returns the JSON type of a raw value.
func KindOf(raw json.RawMessage) Kind {
	if len(raw) == 0 {
		return KindMissing
	}
	switch raw[0] {
	case '"':
		return KindString
	case '{':
		return KindObject
	case '[':
		return KindArray
	case 't', 'f':
		return KindBool
	case 'n':
		return KindNull
	}
	return KindNumber
}

// DecodeFields decodes a response body as a JSON object without interpreting its values.
func DecodeFields(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	err := json.Unmarshal(body, &fields)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("body is null")
	}
	return fields, nil
}

func decodeResponse(body []byte) (Response, error) {
	fields, err := DecodeFields(body)
	if err != nil {
		return Response{}, &PayloadError{Reason: "body is not a json object", Err: err}
	}

	var out Response
	if kind := KindOf(fields["message"]); kind != KindString {
		return Response{}, &PayloadError{Reason: fmt.Sprintf("message is %s, expected string", kind)}
	}
	err = json.Unmarshal(fields["message"], &out.Message)
	if err != nil {
		return Response{}, &PayloadError{Reason: "invalid message", Err: err}
	}

	if kind := KindOf(fields["count"]); kind != KindNumber {
		return Response{}, &PayloadError{Reason: fmt.Sprintf("count is %s, expected number", kind)}
	}
	err = json.Unmarshal(fields["count"], &out.Count)
	if err != nil {
		return Response{}, &PayloadError{Reason: "invalid count", Err: err}
	}
	if out.Count < 0 {
		return Response{}, &PayloadError{Reason: fmt.Sprintf("count is negative (%s)", FormatCount(out.Count))}
	}

	return out, nil
}

// FormatCount formats a count the way it is shown on the page, integral
// counts never carry a decimal point.
func FormatCount(count float64) string {
	return strconv.FormatFloat(count, 'f', -1, 64)
}

// Heading returns the exact text the counter heading is set to.
func Heading(count float64) string {
	return "Visitor Count: " + FormatCount(count)
}
