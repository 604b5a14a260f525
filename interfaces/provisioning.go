package interfaces

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultLength is the number of random bytes generated when the request
	// does not specify a length.
	DefaultLength = 128

	// MaxLength caps the number of random bytes a single request may ask for.
	MaxLength = 1 << 20
)

var (
	// ErrEntropySource is returned when the secure random source cannot supply bytes.
	ErrEntropySource = errors.New("entropy source failure")

	// ErrInvalidLength is returned when the Length property is not a
	// non-negative integer (or its string form) within MaxLength.
	ErrInvalidLength = errors.New("invalid length")

	// ErrInvalidProperties is returned when resource properties cannot be decoded.
	ErrInvalidProperties = errors.New("invalid resource properties")
)

// Length is the requested number of random bytes. It decodes from a JSON
// number or a numeric JSON string. The zero value means "not set", so 0 and
// "0" resolve to DefaultLength just like an absent property.
type Length int

// UnmarshalJSON accepts 256, "256", null, false and "" (the last three as unset).
func (l *Length) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch string(raw) {
	case "null", "false", `""`:
		*l = 0
		return nil
	}

	text := string(raw)
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLength, err)
		}
		text = strings.TrimSpace(s)
		if text == "" {
			*l = 0
			return nil
		}
	}

	n, err := parseLength(text)
	if err != nil {
		return err
	}
	*l = Length(n)
	return nil
}

func parseLength(text string) (int64, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		// Integral numbers may still arrive in float notation, e.g. 2.56e2.
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidLength, text)
		}
		if f < 0 || f > MaxLength {
			return 0, fmt.Errorf("%w: %s out of range [0, %d]", ErrInvalidLength, text, MaxLength)
		}
		n = int64(f)
	}
	if n < 0 || n > MaxLength {
		return 0, fmt.Errorf("%w: %d out of range [0, %d]", ErrInvalidLength, n, MaxLength)
	}
	return n, nil
}

// Resolve returns the number of bytes to generate, applying DefaultLength
// when the length is unset.
func (l Length) Resolve() int {
	if l == 0 {
		return DefaultLength
	}
	return int(l)
}

// Properties are the resource properties the generator understands.
// Anything else in the template is ignored.
type Properties struct {
	Length Length `json:"Length,omitempty"`
}

// ProvisioningRequest is the typed view of an orchestrator lifecycle event.
type ProvisioningRequest struct {
	ResourceProperties    Properties `json:"ResourceProperties"`
	OldResourceProperties Properties `json:"OldResourceProperties"`
}

// DecodeProperties converts a loosely typed property bag (as delivered in a
// CloudFormation event) into Properties.
func DecodeProperties(raw map[string]interface{}) (Properties, error) {
	var props Properties
	if len(raw) == 0 {
		return props, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return props, fmt.Errorf("%w: %v", ErrInvalidProperties, err)
	}
	if err := json.Unmarshal(encoded, &props); err != nil {
		if errors.Is(err, ErrInvalidLength) {
			return props, err
		}
		return props, fmt.Errorf("%w: %v", ErrInvalidProperties, err)
	}
	return props, nil
}

// ProvisioningResult is the output of a create or update.
type ProvisioningResult struct {
	String string `json:"String"`
}

// Data renders the result as the attribute map returned to the orchestrator.
func (r *ProvisioningResult) Data() map[string]interface{} {
	return map[string]interface{}{
		"String": r.String,
	}
}
