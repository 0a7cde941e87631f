package decrypt

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	valid := Request{
		EncryptedContent: "payload",
		ChapterID:        "42",
		KeyPacket:        b64("Fock.ready = true;"),
		UserID:           "u1",
	}
	assert.NoError(t, valid.Validate())

	noUser := valid
	noUser.UserID = ""
	assert.NoError(t, noUser.Validate(), "user_id may be empty")

	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"empty content", func(r *Request) { r.EncryptedContent = "" }, "encrypted_content"},
		{"empty chapter id", func(r *Request) { r.ChapterID = "" }, "chapter_id"},
		{"empty key packet", func(r *Request) { r.KeyPacket = "" }, "key_packet"},
		{"key packet not base64", func(r *Request) { r.KeyPacket = "!!not base64!!" }, "key_packet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, IsMalformed(err))

			var me *MalformedRequestError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.field, me.Field)
		})
	}
}

func TestRequestValidateUnpaddedBase64(t *testing.T) {
	req := Request{
		EncryptedContent: "payload",
		ChapterID:        "42",
		KeyPacket:        base64.RawStdEncoding.EncodeToString([]byte("var a = 1;")),
	}
	assert.NoError(t, req.Validate())
}

func TestRequestFromFields(t *testing.T) {
	fields := map[string]any{
		"encrypted_content": []byte("cipher"),
		"chapter_id":        float64(42),
		"key_packet":        b64("Fock.ready = true;"),
		"user_id":           json.Number("9000"),
	}
	req, err := RequestFromFields(fields)
	require.NoError(t, err)
	assert.Equal(t, "cipher", req.EncryptedContent)
	assert.Equal(t, "42", req.ChapterID)
	assert.Equal(t, "9000", req.UserID)
}

func TestRequestFromFieldsMissingKey(t *testing.T) {
	fields := map[string]any{
		"encrypted_content": "cipher",
		"chapter_id":        "42",
		"user_id":           "u1",
	}
	_, err := RequestFromFields(fields)
	require.Error(t, err)

	var me *MalformedRequestError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "key_packet", me.Field)
}

func TestRequestFromFieldsUncoercible(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"encrypted_content": "cipher",
			"chapter_id":        "42",
			"key_packet":        b64("var a = 1;"),
			"user_id":           "u1",
		}
	}

	bad := base()
	bad["chapter_id"] = []string{"42"}
	_, err := RequestFromFields(bad)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))

	nilValue := base()
	nilValue["key_packet"] = nil
	_, err = RequestFromFields(nilValue)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestVendorModuleDefaults(t *testing.T) {
	m := VendorModule{Source: "var Fock = {};"}.withDefaults()
	assert.Equal(t, "Fock", m.GlobalName)
	assert.Equal(t, "setupUserKey", m.SetupFn)
	assert.Equal(t, "unlock", m.UnlockFn)

	custom := VendorModule{
		Source:     "var Vault = {};",
		GlobalName: "Vault",
		SetupFn:    "prime",
		UnlockFn:   "open",
	}.withDefaults()
	assert.Equal(t, "Vault", custom.GlobalName)
	assert.Equal(t, "prime", custom.SetupFn)
	assert.Equal(t, "open", custom.UnlockFn)
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "timeout", Outcome(ErrTimeout))
	assert.Equal(t, "rejected", Outcome(&RejectError{Code: 7}))
	assert.Equal(t, "runtime_error", Outcome(&RuntimeError{Stage: StageModule, Message: "x"}))
	assert.Equal(t, "malformed", Outcome(&MalformedRequestError{Field: "chapter_id", Reason: "is empty"}))
}
