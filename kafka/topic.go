package kafka

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"google.golang.org/protobuf/proto"
)

const (
	// contextSeparator joins the segments of a wire topic.
	contextSeparator = "."

	// contractSeparator joins the two tail segments of an event name and the
	// parts of a version inside a topic.
	contractSeparator = "_"

	topicSegments = 6
)

// Env is the deployment environment a connector publishes to.
type Env string

// Known environments.
const (
	EnvTest    Env = "test"
	EnvDev     Env = "dev"
	EnvStaging Env = "staging"
	EnvProd    Env = "prod"
)

// ParseEnv parses an environment name case-insensitively.
func ParseEnv(s string) (Env, error) {
	switch e := Env(strings.ToLower(strings.TrimSpace(s))); e {
	case EnvTest, EnvDev, EnvStaging, EnvProd:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEnv, s)
	}
}

func (e Env) String() string { return string(e) }

// MarshalText implements encoding.TextMarshaler.
func (e Env) MarshalText() ([]byte, error) { return []byte(e), nil }

// UnmarshalText implements encoding.TextUnmarshaler, so an Env can be
// decoded straight from YAML or JSON.
func (e *Env) UnmarshalText(text []byte) error {
	parsed, err := ParseEnv(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MessageType tags the semantic kind of an event stream.
type MessageType string

// Known message types, serialized as their short codes.
const (
	MsgTypeFact     MessageType = "fct"
	MsgTypeBackfill MessageType = "bf"
	MsgTypeCDC      MessageType = "cdc"
	MsgTypeCommand  MessageType = "cmd"
	MsgTypeSystem   MessageType = "sys"
)

// ParseMessageType parses a short code such as "fct" case-insensitively.
func ParseMessageType(s string) (MessageType, error) {
	switch m := MessageType(strings.ToLower(strings.TrimSpace(s))); m {
	case MsgTypeFact, MsgTypeBackfill, MsgTypeCDC, MsgTypeCommand, MsgTypeSystem:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMessageType, s)
	}
}

func (m MessageType) String() string { return string(m) }

// MarshalText implements encoding.TextMarshaler.
func (m MessageType) MarshalText() ([]byte, error) { return []byte(m), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MessageType) UnmarshalText(text []byte) error {
	parsed, err := ParseMessageType(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Topic identifies a destination stream. It is a comparable value and can be
// used as a map key.
type Topic struct {
	Env           Env
	MsgType       MessageType
	Author        string
	ConnectorName string
	Version       semver.Version
	EventName     string
}

// NewTopic builds a Topic. Non-empty names are the caller's responsibility.
func NewTopic(env Env, msgType MessageType, author, connectorName string, version semver.Version, eventName string) Topic {
	return Topic{
		Env:           env,
		MsgType:       msgType,
		Author:        author,
		ConnectorName: connectorName,
		Version:       version,
		EventName:     eventName,
	}
}

// NewTopicForMessage builds the Topic of msg, deriving the event name from
// its fully-qualified protobuf name.
func NewTopicForMessage(env Env, msgType MessageType, author, connectorName string, version semver.Version, msg proto.Message) (Topic, error) {
	name, err := EventName(string(msg.ProtoReflect().Descriptor().FullName()))
	if err != nil {
		return Topic{}, err
	}
	return NewTopic(env, msgType, author, connectorName, version, name), nil
}

// EventName joins the last two dot-separated segments of a fully-qualified
// type name with "_": "nakji.evm.Block" becomes "evm_Block".
func EventName(fullName string) (string, error) {
	parts := strings.Split(fullName, contextSeparator)
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedTypeName, fullName)
	}
	return parts[len(parts)-2] + contractSeparator + parts[len(parts)-1], nil
}

// Schema returns author.connector.major_minor_patch.event, the part of the
// topic shared by every environment and message type.
func (t Topic) Schema() string {
	return strings.Join([]string{t.Author, t.ConnectorName, versionSegment(t.Version), t.EventName}, contextSeparator)
}

// String returns the wire topic env.msgtype.schema.
func (t Topic) String() string {
	return strings.Join([]string{string(t.Env), string(t.MsgType), t.Schema()}, contextSeparator)
}

// ParseTopic parses a wire topic produced by Topic.String.
func ParseTopic(s string) (Topic, error) {
	parts := strings.Split(s, contextSeparator)
	if len(parts) != topicSegments {
		return Topic{}, fmt.Errorf("%w: %q has %d segments, want %d", ErrMalformedTopic, s, len(parts), topicSegments)
	}

	env, err := ParseEnv(parts[0])
	if err != nil {
		return Topic{}, fmt.Errorf("%w: %w", ErrMalformedTopic, err)
	}
	msgType, err := ParseMessageType(parts[1])
	if err != nil {
		return Topic{}, fmt.Errorf("%w: %w", ErrMalformedTopic, err)
	}

	nums := strings.Split(parts[4], contractSeparator)
	if len(nums) != 3 {
		return Topic{}, fmt.Errorf("%w: version segment %q", ErrMalformedTopic, parts[4])
	}
	version, err := semver.StrictNewVersion(strings.Join(nums, "."))
	if err != nil {
		return Topic{}, fmt.Errorf("%w: version segment %q: %w", ErrMalformedTopic, parts[4], err)
	}

	return NewTopic(env, msgType, parts[2], parts[3], *version, parts[5]), nil
}

func versionSegment(v semver.Version) string {
	return fmt.Sprintf("%d%s%d%s%d", v.Major(), contractSeparator, v.Minor(), contractSeparator, v.Patch())
}
