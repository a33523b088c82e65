package aws_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsctl "github.com/isometry/wsgi-lambda/internal/controllers/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, handler http.HandlerFunc) *awsctl.Controller {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := aws.Config{
		Region:           "us-east-1",
		BaseEndpoint:     aws.String(srv.URL),
		RetryMaxAttempts: 1,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKID", SecretAccessKey: "SECRET"}, nil
		}),
	}
	ctl, err := awsctl.NewController(awsctl.WithConfig(&cfg), awsctl.WithContext(context.Background()))
	require.NoError(t, err)
	return ctl
}

func TestGetSecret(t *testing.T) {
	testCases := []struct {
		Name        string
		Status      int
		ErrorType   string
		Body        string
		Expected    string
		ExpectedErr error
		Error       bool
	}{
		{
			Name:     "found",
			Status:   http.StatusOK,
			Body:     `{"Parameter":{"Name":"/app/environ","Type":"SecureString","Value":"{\"A\":\"1\"}"}}`,
			Expected: `{"A":"1"}`,
		},
		{
			Name:        "not_found",
			Status:      http.StatusBadRequest,
			ErrorType:   "ParameterNotFound",
			Body:        `{"__type":"ParameterNotFound","message":"not found"}`,
			ExpectedErr: awsctl.ErrParameterNotFound,
			Error:       true,
		},
		{
			Name:      "denied",
			Status:    http.StatusBadRequest,
			ErrorType: "AccessDeniedException",
			Body:      `{"__type":"AccessDeniedException","message":"denied"}`,
			Error:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var target string
			ctl := newController(t, func(w http.ResponseWriter, r *http.Request) {
				target = r.Header.Get("X-Amz-Target")
				w.Header().Set("Content-Type", "application/x-amz-json-1.1")
				if tc.ErrorType != "" {
					w.Header().Set("X-Amzn-ErrorType", tc.ErrorType)
				}
				w.WriteHeader(tc.Status)
				_, _ = w.Write([]byte(tc.Body))
			})

			value, err := ctl.GetSecret("/app/environ", true)
			assert.Equal(t, "AmazonSSM.GetParameter", target)
			if tc.Error {
				require.Error(t, err)
				if tc.ExpectedErr != nil {
					assert.ErrorIs(t, err, tc.ExpectedErr)
				} else {
					assert.NotErrorIs(t, err, awsctl.ErrParameterNotFound)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, value)
			assert.Equal(t, tc.Expected, *value)
		})
	}
}

func TestPutS3Object_EmptyBucket(t *testing.T) {
	called := false
	ctl := newController(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.NoError(t, ctl.PutS3Object("", "key", []byte("{}")))
	assert.False(t, called)
}

func TestInvokeFunction(t *testing.T) {
	testCases := []struct {
		Name          string
		FunctionError string
		Body          string
		Error         bool
	}{
		{Name: "ok", Body: `{"statusCode":200,"body":"ok"}`},
		{Name: "function_error", FunctionError: "Unhandled", Body: `{"errorMessage":"boom"}`, Error: true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var (
				path    string
				payload []byte
			)
			ctl := newController(t, func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				payload, _ = io.ReadAll(r.Body)
				if tc.FunctionError != "" {
					w.Header().Set("X-Amz-Function-Error", tc.FunctionError)
				}
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tc.Body))
			})

			out, err := ctl.InvokeFunction("echo", []byte(`{"httpMethod":"GET"}`))
			assert.Equal(t, "/2015-03-31/functions/echo/invocations", path)
			assert.JSONEq(t, `{"httpMethod":"GET"}`, string(payload))
			if tc.Error {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "boom")
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tc.Body, string(out))
		})
	}
}
