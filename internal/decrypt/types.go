package decrypt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Default entry-point names for vendor unlocking modules. They match the
// scheme used by the reference site; per-site overrides go through
// VendorModule.
const (
	DefaultGlobalName = "Fock"
	DefaultSetupFn    = "setupUserKey"
	DefaultUnlockFn   = "unlock"
)

// Request carries the four fields a site parser supplies for one
// encrypted chapter. All four are coerced to strings before they reach
// the vendor code; UserID may be empty, the vendor decides what that
// means.
type Request struct {
	EncryptedContent string
	ChapterID        string
	KeyPacket        string
	UserID           string
}

// Validate checks the request contract. EncryptedContent, ChapterID and
// KeyPacket must be non-empty, and KeyPacket must decode as base64.
func (r Request) Validate() error {
	if r.EncryptedContent == "" {
		return &MalformedRequestError{Field: "encrypted_content", Reason: "is empty"}
	}
	if r.ChapterID == "" {
		return &MalformedRequestError{Field: "chapter_id", Reason: "is empty"}
	}
	if r.KeyPacket == "" {
		return &MalformedRequestError{Field: "key_packet", Reason: "is empty"}
	}
	if _, err := decodeKeyPacket(r.KeyPacket); err != nil {
		return &MalformedRequestError{Field: "key_packet", Reason: "is not valid base64"}
	}
	return nil
}

// RequestFromFields builds a Request from parser-supplied values. Every
// field key must be present; values are coerced to strings the way the
// decoded payloads arrive (string, []byte, JSON numbers). Anything else
// is a malformed request.
func RequestFromFields(fields map[string]any) (Request, error) {
	var req Request
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"encrypted_content", &req.EncryptedContent},
		{"chapter_id", &req.ChapterID},
		{"key_packet", &req.KeyPacket},
		{"user_id", &req.UserID},
	} {
		raw, ok := fields[f.key]
		if !ok {
			return Request{}, &MalformedRequestError{Field: f.key, Reason: "is missing"}
		}
		s, err := coerceString(raw)
		if err != nil {
			return Request{}, &MalformedRequestError{Field: f.key, Reason: err.Error()}
		}
		*f.dst = s
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func coerceString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	default:
		return "", fmt.Errorf("cannot coerce %T to string", v)
	}
}

// decodeKeyPacket accepts standard base64 with or without padding.
func decodeKeyPacket(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// VendorModule is the site-supplied unlocking code plus the names of its
// entry points. Zero-value names fall back to the defaults.
type VendorModule struct {
	Source     string
	GlobalName string
	SetupFn    string
	UnlockFn   string
}

// Validate checks that the module carries source code.
func (m VendorModule) Validate() error {
	if strings.TrimSpace(m.Source) == "" {
		return fmt.Errorf("vendor module source is empty")
	}
	return nil
}

func (m VendorModule) withDefaults() VendorModule {
	if m.GlobalName == "" {
		m.GlobalName = DefaultGlobalName
	}
	if m.SetupFn == "" {
		m.SetupFn = DefaultSetupFn
	}
	if m.UnlockFn == "" {
		m.UnlockFn = DefaultUnlockFn
	}
	return m
}

// Env is what an encrypted site contributes to a decrypt attempt: the
// hostname its vendor code expects to run under and the unlocking
// module itself. SiteID tags logs and metrics; when empty, the hostname
// stands in.
type Env struct {
	SiteID   string
	Hostname string
	Module   VendorModule
}

func (e Env) label() string {
	if e.SiteID != "" {
		return e.SiteID
	}
	if e.Hostname != "" {
		return e.Hostname
	}
	return "unknown"
}
