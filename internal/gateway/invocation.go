package gateway

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/wsgi-lambda/internal/wsgi"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Mode is the calling convention of an invocation.
type Mode int

const (
	// ModeDirect passes a prebuilt environ and start-response callback straight
	// to the application.
	ModeDirect Mode = iota
	// ModeGateway builds the environ from an API Gateway proxy event and
	// returns a proxy response.
	ModeGateway
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeGateway:
		return "gateway"
	default:
		return "unknown"
	}
}

// requiredEventKeys must all be present (possibly null) in a gateway payload.
var requiredEventKeys = []string{
	"httpMethod",
	"path",
	"headers",
	"queryStringParameters",
	"body",
	"requestContext",
}

// Invocation is a single adapter call, tagged with its Mode. Event is only
// meaningful in gateway mode; Environ and StartResponse only in direct mode.
type Invocation struct {
	Mode          Mode
	Event         events.APIGatewayProxyRequest
	Environ       wsgi.Environ
	StartResponse wsgi.StartResponseFunc
}

// GatewayInvocation returns a gateway-mode invocation for evt.
func GatewayInvocation(evt events.APIGatewayProxyRequest) Invocation {
	return Invocation{Mode: ModeGateway, Event: evt}
}

// DirectInvocation returns a direct-mode invocation for env and start.
func DirectInvocation(env wsgi.Environ, start wsgi.StartResponseFunc) Invocation {
	return Invocation{Mode: ModeDirect, Environ: env, StartResponse: start}
}

// DetectMode reports ModeGateway when the payload object carries an
// httpMethod key, ModeDirect otherwise.
func DetectMode(payload []byte) Mode {
	if gjson.GetBytes(payload, "httpMethod").Exists() {
		return ModeGateway
	}
	return ModeDirect
}

// DecodeInvocation decides the mode of a raw JSON payload once and decodes
// it accordingly. In direct mode the payload is the environ itself and start
// is used as its start-response callback.
func DecodeInvocation(payload []byte, start wsgi.StartResponseFunc) (Invocation, error) {
	if !gjson.ValidBytes(payload) || !gjson.ParseBytes(payload).IsObject() {
		return Invocation{}, errors.New("invocation payload is not a JSON object")
	}

	if DetectMode(payload) == ModeGateway {
		evt, err := DecodeEvent(payload)
		if err != nil {
			return Invocation{}, err
		}
		return GatewayInvocation(evt), nil
	}

	var env wsgi.Environ
	if err := json.Unmarshal(payload, &env); err != nil {
		return Invocation{}, errors.Wrap(err, "failed to decode environ")
	}
	return DirectInvocation(env, start), nil
}

// DecodeEvent decodes an API Gateway proxy event after checking that every
// required key is present.
func DecodeEvent(payload []byte) (events.APIGatewayProxyRequest, error) {
	var evt events.APIGatewayProxyRequest
	for _, key := range requiredEventKeys {
		if !gjson.GetBytes(payload, key).Exists() {
			return evt, &MissingKeyError{Key: key}
		}
	}
	identity := gjson.GetBytes(payload, "requestContext.identity")
	if identity.IsObject() && !identity.Get("sourceIp").Exists() {
		return evt, &MissingKeyError{Key: "requestContext.identity.sourceIp"}
	}

	if err := json.Unmarshal(payload, &evt); err != nil {
		return evt, errors.Wrap(err, "failed to decode gateway event")
	}
	return evt, nil
}
