package cloudbuild

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrMalformedEvent is returned for events that cannot be turned into a Build
var ErrMalformedEvent = errors.New("malformed build event")

// PubSubMessage is the envelope Cloud Build status updates arrive in
type PubSubMessage struct {
	Data        string            `json:"data"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	MessageID   string            `json:"messageId,omitempty"`
	PublishTime string            `json:"publishTime,omitempty"`
}

// DecodeEvent decodes the build carried by a Pub/Sub message
func DecodeEvent(msg PubSubMessage) (*Build, error) {
	return Decode(msg.Data)
}

// Decode decodes base64 encoded build json
func Decode(data string) (*Build, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, malformed(err, "invalid base64 payload")
	}

	return Parse(raw)
}

// Parse parses build json. The document must be a json object, fields of
// an unexpected type are left at their zero value.
func Parse(raw []byte) (*Build, error) {
	var document map[string]json.RawMessage
	err := json.Unmarshal(raw, &document)
	if err != nil {
		return nil, malformed(err, "payload is not a json object")
	}
	if document == nil {
		return nil, errors.WithMessage(ErrMalformedEvent, "payload is null")
	}

	var build Build
	err = json.Unmarshal(raw, &build)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		return nil, malformed(err, "cannot parse build")
	}
	build.Substitutions = stringSubstitutions(document["substitutions"])
	build.Raw = json.RawMessage(raw)

	return &build, nil
}

// stringSubstitutions keeps the substitutions that have string values
func stringSubstitutions(raw json.RawMessage) map[string]string {
	var substitutions map[string]json.RawMessage
	if err := json.Unmarshal(raw, &substitutions); err != nil || substitutions == nil {
		return nil
	}

	strs := map[string]string{}
	for key, value := range substitutions {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			strs[key] = s
		}
	}
	return strs
}

func malformed(err error, message string) error {
	return errors.WithMessagef(ErrMalformedEvent, "%s: %s", message, err)
}
