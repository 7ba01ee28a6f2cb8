package gateway

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// Request is the body of POST /query
type Request struct {
	Query  string        `json:"query"`
	Params []interface{} `json:"params,omitempty"`
}

type rawRequest struct {
	Query  interface{}   `json:"query"`
	Params []interface{} `json:"params"`
}

// DecodeRequest reads a query request, rejecting a missing or non-string query and
// non-scalar parameters with BAD_REQUEST. Integral JSON numbers become int64.
func DecodeRequest(r io.Reader) (*Request, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeBadRequest, "Failed to read request body", err.Error())
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var raw rawRequest
	if err := decoder.Decode(&raw); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeBadRequest, "Invalid request body", err.Error())
	}

	query, ok := raw.Query.(string)
	if !ok || query == "" {
		return nil, utils.NewAppError(utils.ErrCodeBadRequest, "Query is missing or invalid")
	}

	params := make([]interface{}, len(raw.Params))
	for i, p := range raw.Params {
		value, err := scalar(p)
		if err != nil {
			return nil, err
		}
		params[i] = value
	}

	return &Request{Query: query, Params: params}, nil
}

func scalar(p interface{}) (interface{}, error) {
	switch v := p.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, utils.NewAppError(utils.ErrCodeBadRequest, "Invalid numeric parameter", v.String())
		}
		return f, nil
	default:
		return nil, utils.NewAppError(utils.ErrCodeBadRequest, "Parameters must be scalar values")
	}
}
