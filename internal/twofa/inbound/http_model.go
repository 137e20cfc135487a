package inbound

import (
	"bytes"
	"encoding/json"
)

type DecryptSeedRequest struct {
	EncryptedSeed string `json:"encrypted_seed"`
}

type DecryptSeedResponse struct {
	Status string `json:"status"`
}

type GenerateCodeResponse struct {
	Code     string `json:"code"`
	ValidFor int    `json:"valid_for"`
}

type VerifyCodeRequest struct {
	Code CodeValue `json:"code"`
}

type VerifyCodeResponse struct {
	Valid bool `json:"valid"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Seed   string `json:"seed"`
}

// CodeValue accepts a code sent either as a JSON string or as a bare number.
// A number keeps its literal digits, so 12345 stays "12345" and fails
// verification instead of being zero padded. null, false and a numeric zero
// count as no code at all.
type CodeValue string

func (c *CodeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("false")) {
		*c = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CodeValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*c = ""
		return nil
	}
	*c = CodeValue(n.String())
	return nil
}
