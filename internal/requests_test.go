package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateContact(t *testing.T) {
	assert.NoError(t, Validate(ContactSchema, []byte(`{"name":"Ada","email":"ada@example.com","message":"Hi"}`)))

	err := Validate(ContactSchema, []byte(`{"name":"Ada","message":""}`))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "email")
		assert.Contains(t, err.Error(), "message")
	}
}

func TestValidateReply(t *testing.T) {
	assert.NoError(t, Validate(ReplySchema, []byte(`{"to_email":"a@b.co","subject":"Re","message":"Thanks"}`)))
	assert.Error(t, Validate(ReplySchema, []byte(`{"to_email":"a@b.co","subject":1,"message":"Thanks"}`)))
}

func TestValidateMalformed(t *testing.T) {
	assert.Error(t, Validate(ContactSchema, []byte(`{"name":`)))
}
