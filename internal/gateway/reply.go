package gateway

import (
	"encoding/json"
	"strings"
)

// Action tags a parsed gateway reply.
type Action string

const (
	ActionChat      Action = "chat"
	ActionExtract   Action = "extract"
	ActionGenerate  Action = "generate"
	ActionUpdate    Action = "update"
	ActionMalformed Action = "malformed"
)

// Reply is the tagged union returned by the gateway. Malformed replies carry the reason in Message.
type Reply struct {
	Action  Action
	Message string
	Fields  map[string]any
}

type rawReply struct {
	Action  string          `json:"action"`
	Message *string         `json:"message"`
	Fields  json.RawMessage `json:"fields"`
}

// ParseReply decodes raw into one of the known shapes. Anything else is Malformed.
func ParseReply(raw string) Reply {
	body := stripFences(raw)
	if body == "" {
		return malformed("empty reply")
	}

	var r rawReply
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return malformed("not a json object")
	}

	var fields map[string]any
	if len(r.Fields) > 0 && string(r.Fields) != "null" {
		fd := json.NewDecoder(strings.NewReader(string(r.Fields)))
		fd.UseNumber()
		if err := fd.Decode(&fields); err != nil {
			return malformed("fields is not an object")
		}
	}
	msg := ""
	if r.Message != nil {
		msg = strings.TrimSpace(*r.Message)
	}

	switch Action(strings.ToLower(strings.TrimSpace(r.Action))) {
	case ActionChat:
		if msg == "" {
			return malformed("chat without message")
		}
		return Reply{Action: ActionChat, Message: msg}
	case ActionExtract:
		if fields == nil {
			return malformed("extract without fields")
		}
		return Reply{Action: ActionExtract, Message: msg, Fields: fields}
	case ActionGenerate:
		return Reply{Action: ActionGenerate, Message: msg}
	case ActionUpdate:
		if len(fields) == 0 {
			return malformed("update without fields")
		}
		return Reply{Action: ActionUpdate, Message: msg, Fields: fields}
	default:
		return malformed("unknown action " + r.Action)
	}
}

func malformed(reason string) Reply {
	return Reply{Action: ActionMalformed, Message: reason}
}

// stripFences removes a surrounding markdown code fence, which some models add despite json mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
