package validation

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVar_PasswordRule(t *testing.T) {
	assert.NoError(t, Var("abc12", "pwd"))

	err := Var("abc", "pwd")
	require.Error(t, err)
	assert.Equal(t, "must be at least 5 characters long", Message(err))

	err = Var("abc12!", "pwd")
	require.Error(t, err)
	assert.Equal(t, "must contain alphanumeric characters only", Message(err))
}

func TestVar_Email(t *testing.T) {
	assert.NoError(t, Var("a@x.com", "required,email"))
	assert.Equal(t, "must be a valid email", Message(Var("nope", "required,email")))
	assert.Equal(t, "is required", Message(Var("", "required,email")))
}

type signupForm struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,pwd"`
}

func TestToDetails_UsesTagNames(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&signupForm{Email: "bad", Password: "abc"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 5 characters long", details["password"])

	field, msg := FirstError(err)
	assert.Equal(t, "email", field)
	assert.Equal(t, "must be a valid email", msg)
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
