package client

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
)

// decodeError normalizes a non-2xx response. Bodies are expected to carry
// either {"detail": "...", "code": "..."} or a field-keyed error map.
func decodeError(resp *http.Response, raw []byte) *domain.ErrAPI {
	apiErr := &domain.ErrAPI{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err == nil {
		for key, val := range body {
			switch key {
			case "detail":
				apiErr.Detail = messageOf(val)
			case "code":
				apiErr.Code = messageOf(val)
			default:
				if apiErr.Fields == nil {
					apiErr.Fields = make(map[string][]string)
				}
				apiErr.Fields[key] = messagesOf(val)
			}
		}
	}

	apiErr.Kind = classify(apiErr)
	return apiErr
}

// classify derives the error kind. An explicit backend code wins; for
// backends that only send a detail, 400/403 answers about the profile or
// participation are treated as preconditions.
func classify(e *domain.ErrAPI) domain.ErrorKind {
	switch e.Code {
	case CodeProfileIncomplete, CodeParticipationRequired:
		return domain.KindPrecondition
	}

	switch {
	case e.Status == http.StatusUnauthorized:
		return domain.KindUnauthorized
	case e.Status == http.StatusNotFound:
		return domain.KindNotFound
	case e.Status >= http.StatusInternalServerError:
		return domain.KindServer
	case e.Status == http.StatusBadRequest || e.Status == http.StatusForbidden:
		d := strings.ToLower(e.Detail)
		if strings.Contains(d, "profile") || strings.Contains(d, "participation") {
			return domain.KindPrecondition
		}
		return domain.KindValidation
	case e.Status >= http.StatusBadRequest:
		return domain.KindValidation
	}
	return domain.KindUnknown
}

func messageOf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Join(messagesOf(raw), ", ")
}

// messagesOf accepts a string, a list of strings or a nested object.
func messagesOf(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		return []string{domain.FlattenFieldErrors(flatten(nested))}
	}
	return []string{string(raw)}
}

func flatten(m map[string]json.RawMessage) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = messagesOf(v)
	}
	return out
}
