package gateway_test

import (
	"errors"
	"testing"

	"github.com/isometry/wsgi-lambda/internal/gateway"
	"github.com/isometry/wsgi-lambda/internal/wsgi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCapture_StartResponse(t *testing.T) {
	testCases := []struct {
		Name            string
		Status          string
		Headers         []wsgi.Header
		ExpectedStatus  int
		ExpectedHeaders map[string]string
	}{
		{
			Name:            "ok",
			Status:          "200 OK",
			Headers:         []wsgi.Header{{Name: "Content-Type", Value: "text/plain"}},
			ExpectedStatus:  200,
			ExpectedHeaders: map[string]string{"Content-Type": "text/plain"},
		},
		{
			Name:            "bare_code",
			Status:          "404",
			ExpectedStatus:  404,
			ExpectedHeaders: map[string]string{},
		},
		{
			Name:   "last_value_wins",
			Status: "302 Found",
			Headers: []wsgi.Header{
				{Name: "Set-Cookie", Value: "a=1"},
				{Name: "Set-Cookie", Value: "b=2"},
			},
			ExpectedStatus:  302,
			ExpectedHeaders: map[string]string{"Set-Cookie": "b=2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			c := gateway.NewResponseCapture()
			require.NoError(t, c.StartResponse(tc.Status, tc.Headers, nil))
			assert.Equal(t, tc.ExpectedStatus, c.Status)
			assert.Equal(t, tc.ExpectedHeaders, c.Headers)
		})
	}
}

func TestResponseCapture_Overwrite(t *testing.T) {
	c := gateway.NewResponseCapture()
	require.NoError(t, c.StartResponse("200 OK", []wsgi.Header{{Name: "A", Value: "1"}}, nil))
	require.NoError(t, c.StartResponse("500 Internal Server Error", []wsgi.Header{{Name: "B", Value: "2"}}, errors.New("exc")))

	assert.Equal(t, 500, c.Status)
	assert.Equal(t, map[string]string{"B": "2"}, c.Headers)
}

func TestResponseCapture_InvalidStatus(t *testing.T) {
	testCases := []struct {
		Name   string
		Status string
	}{
		{Name: "empty", Status: ""},
		{Name: "short", Status: "20"},
		{Name: "non_numeric", Status: "OK 200"},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			c := gateway.NewResponseCapture()
			err := c.StartResponse(tc.Status, nil, nil)
			require.Error(t, err)

			var statusErr *gateway.StatusLineError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tc.Status, statusErr.Status)
			assert.Equal(t, 0, c.Status)
		})
	}
}
