package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/feedsync/internal/common"
)

const (
	// MaxContentLength bounds entity content, counted in code points.
	MaxContentLength = 10000
	// MaxAttachments bounds the number of attachments per pending submission.
	MaxAttachments = 5
)

var (
	validate *validator.Validate

	// custom validation tags
	notBlankTag = "notblank"
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
}

// notBlankValidation rejects strings that are empty after trimming whitespace.
func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// SubmissionInput is the validated shape of a submission: trimmed content plus
// the references of successfully uploaded attachments, in original add order.
//
// The max tag counts code points for strings, which matches the content bound.
type SubmissionInput struct {
	Content     string          `json:"content" validate:"notblank,max=10000"`
	Attachments []AttachmentRef `json:"attachmentRefs" validate:"max=5"`
}

// Validate checks the input before any network call. The returned error wraps
// common.ErrorValidation and carries user-facing messages.
func (in SubmissionInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch {
		case fe.Field() == "Content" && fe.Tag() == notBlankTag:
			msgs = append(msgs, "content must not be blank")
		case fe.Field() == "Content" && fe.Tag() == "max":
			msgs = append(msgs, fmt.Sprintf("content exceeds %d characters", MaxContentLength))
		case fe.Field() == "Attachments":
			msgs = append(msgs, fmt.Sprintf("too many attachments (limit %d)", MaxAttachments))
		default:
			msgs = append(msgs, fe.Error())
		}
	}
	return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(msgs, "; "))
}
