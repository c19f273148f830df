package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostInputValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   PostInput
		wantErr bool
	}{
		{name: "valid", input: PostInput{Title: "Hi", Content: "first"}},
		{name: "missing title", input: PostInput{Content: "first"}, wantErr: true},
		{name: "missing content", input: PostInput{Title: "Hi"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEndpointValidation(t *testing.T) {
	assert.NoError(t, Endpoint{BaseURL: "http://api.test"}.Validate())
	assert.NoError(t, Endpoint{BaseURL: "http://localhost:5002/api"}.Validate())
	assert.Error(t, Endpoint{BaseURL: ""}.Validate())
	assert.Error(t, Endpoint{BaseURL: "not a url"}.Validate())
}

func TestCredentialsValidation(t *testing.T) {
	assert.NoError(t, Credentials{Username: "peter", Password: "secret"}.Validate())
	assert.Error(t, Credentials{Username: "peter"}.Validate())
	assert.Error(t, Credentials{Password: "secret"}.Validate())
}
