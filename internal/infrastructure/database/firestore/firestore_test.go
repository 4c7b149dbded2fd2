package firestore

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeServiceAccount(t *testing.T) {
	plain := `{"type":"service_account","project_id":"demo"}`

	assert.Nil(t, DecodeServiceAccount(""))
	assert.Equal(t, []byte(plain), DecodeServiceAccount(plain))
	assert.Equal(t, []byte(plain), DecodeServiceAccount(base64.StdEncoding.EncodeToString([]byte(plain))))
	assert.Equal(t, []byte("not-base64!"), DecodeServiceAccount("not-base64!"))
}
