package transport

import (
	"strings"

	"educare/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterRules installs the media resource cross-field rules on val.
func RegisterRules(val *validator.Validator) {
	val.RegisterStructValidation(validateResourceRules, ResourceRules{})
}

func validateResourceRules(sl playground.StructLevel) {
	r := sl.Current().Interface().(ResourceRules)

	if r.TTSEnabled && strings.TrimSpace(r.TTSEndpoint) == "" {
		sl.ReportError(r.TTSEndpoint, "tts_endpoint", "TTSEndpoint", "required_if_tts", "")
	}

	content := strings.TrimSpace(r.Content)
	switch r.ResourceType {
	case "text":
		if content == "" {
			sl.ReportError(r.Content, "content", "Content", "required", "")
		}
	case "link":
		if content == "" {
			sl.ReportError(r.Content, "content", "Content", "required", "")
		} else if sl.Validator().Var(content, "url") != nil {
			sl.ReportError(r.Content, "content", "Content", "url", "")
		}
	}
}
