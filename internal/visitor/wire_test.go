package visitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"resume-visitor/internal/page"

	"github.com/stretchr/testify/require"
)

func TestHeading(t *testing.T) {
	cases := []struct {
		count    float64
		expected string
	}{
		{count: 0, expected: "Visitor Count: 0"},
		{count: 42, expected: "Visitor Count: 42"},
		{count: 1234567, expected: "Visitor Count: 1234567"},
		{count: 2.5, expected: "Visitor Count: 2.5"},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, Heading(test.count))
	}
}

func TestKindOf(t *testing.T) {
	cases := map[string]Kind{
		`"ok"`:   KindString,
		`42`:     KindNumber,
		`-1.5e3`: KindNumber,
		`true`:   KindBool,
		`false`:  KindBool,
		`null`:   KindNull,
		`{}`:     KindObject,
		`[]`:     KindArray,
		``:       KindMissing,
	}
	for raw, expected := range cases {
		require.Equal(t, expected, KindOf(json.RawMessage(raw)), raw)
	}
}

func TestDecodeResponse(t *testing.T) {
	res, err := decodeResponse([]byte(`{
		"message": "Hello vsubtle! You have visited this page 42 times.",
		"count": 42
	}`))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, Response{
		Message: "Hello vsubtle! You have visited this page 42 times.",
		Count:   42,
	}, res)

	res, err = decodeResponse([]byte(`{"message": "", "count": 0, "extra": [1]}`))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, float64(0), res.Count)
}

func TestClassify(t *testing.T) {
	require.Equal(t, FailureNone, Classify(nil))
	require.Equal(t, FailureNetwork, Classify(&NetworkError{Err: errors.New("connection refused")}))
	require.Equal(t, FailureStatus, Classify(fmt.Errorf("wrapped: %w", &StatusError{Code: 500})))
	require.Equal(t, FailurePayload, Classify(&PayloadError{Reason: "bad"}))
	require.Equal(t, FailureRender, Classify(fmt.Errorf("%w: h3", page.ErrNoMatch)))
	require.Equal(t, FailureUnknown, Classify(errors.New("something else")))
}
