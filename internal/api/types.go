package api

import "encoding/json"

// AuthData holds the credentials for one authenticated site session.
// It is created once per site per run and never persisted.
type AuthData struct {
	MerchantID   string
	MerchantName string
	AccessID     string
	Token        string
	APIURL       string
}

// statusSuccess is the literal success marker in API responses.
const statusSuccess = "SUCCESS"

// envelope is the common response wrapper of the platform API.
// Data is kept raw because error responses put a string where success
// responses put an object.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// dataMap decodes the data field as an object, returning nil for any
// other shape.
func (e *envelope) dataMap() map[string]interface{} {
	if len(e.Data) == 0 {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(e.Data, &m); err != nil {
		return nil
	}
	return m
}

// dataString decodes the data field as a string for error diagnostics.
func (e *envelope) dataString() string {
	if len(e.Data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		return ""
	}
	return s
}
