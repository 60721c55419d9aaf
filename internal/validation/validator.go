package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/article-voting-api/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CommentInput is the client payload for a comment submission
type CommentInput struct {
	Author string `json:"autor"`
	Text   string `json:"texto"`
	UserID string `json:"userId"`
}

// VoteInput is the client payload for a vote
type VoteInput struct {
	UserID string `json:"userId"`
}

// ValidateComment checks a comment submission. Author and text are
// trimmed before the checks, so surrounding whitespace neither rescues an
// empty field nor pushes a valid one over its limit.
func ValidateComment(in *CommentInput) []ValidationError {
	var errs []ValidationError

	author := strings.TrimSpace(in.Author)
	text := strings.TrimSpace(in.Text)

	if author == "" {
		errs = append(errs, ValidationError{Field: "autor", Message: "autor is required"})
	}
	if text == "" {
		errs = append(errs, ValidationError{Field: "texto", Message: "texto is required"})
	}
	if in.UserID == "" {
		errs = append(errs, ValidationError{Field: "userId", Message: "userId is required"})
	}

	if utf8.RuneCountInString(author) > models.MaxAuthorLen {
		errs = append(errs, ValidationError{
			Field:   "autor",
			Message: fmt.Sprintf("autor must be at most %d characters", models.MaxAuthorLen),
		})
	}
	if utf8.RuneCountInString(text) > models.MaxTextLen {
		errs = append(errs, ValidationError{
			Field:   "texto",
			Message: fmt.Sprintf("texto must be at most %d characters", models.MaxTextLen),
		})
	}

	return errs
}

// ValidateVote checks a vote payload
func ValidateVote(in *VoteInput) []ValidationError {
	if in.UserID == "" {
		return []ValidationError{{Field: "userId", Message: "userId is required"}}
	}
	return nil
}

// RequiredFields extracts the field names from a set of validation errors
func RequiredFields(errs []ValidationError) []string {
	fields := make([]string, 0, len(errs))
	seen := make(map[string]bool)
	for _, e := range errs {
		if !seen[e.Field] {
			fields = append(fields, e.Field)
			seen[e.Field] = true
		}
	}
	return fields
}
