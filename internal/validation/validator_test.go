package validation_test

import (
	"strings"
	"testing"

	"github.com/article-voting-api/internal/validation"
)

func TestValidateComment_Valid(t *testing.T) {
	in := &validation.CommentInput{
		Author: "Ana",
		Text:   "Muy buen artículo",
		UserID: "user-1",
	}

	if errs := validation.ValidateComment(in); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
}

func TestValidateComment_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		in    validation.CommentInput
		field string
	}{
		{"missing author", validation.CommentInput{Text: "texto", UserID: "u1"}, "autor"},
		{"missing text", validation.CommentInput{Author: "Ana", UserID: "u1"}, "texto"},
		{"missing userId", validation.CommentInput{Author: "Ana", Text: "texto"}, "userId"},
		{"whitespace author", validation.CommentInput{Author: "   ", Text: "texto", UserID: "u1"}, "autor"},
		{"whitespace text", validation.CommentInput{Author: "Ana", Text: " \t ", UserID: "u1"}, "texto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validation.ValidateComment(&tt.in)
			if len(errs) == 0 {
				t.Fatal("Expected validation errors")
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error on field %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidateComment_AuthorBoundary(t *testing.T) {
	in := &validation.CommentInput{
		Author: strings.Repeat("a", 50),
		Text:   "texto",
		UserID: "u1",
	}
	if errs := validation.ValidateComment(in); len(errs) != 0 {
		t.Errorf("Author of exactly 50 chars should pass, got %v", errs)
	}

	in.Author = strings.Repeat("a", 51)
	if errs := validation.ValidateComment(in); len(errs) == 0 {
		t.Error("Author of 51 chars should fail")
	}
}

func TestValidateComment_TextBoundary(t *testing.T) {
	in := &validation.CommentInput{
		Author: "Ana",
		Text:   strings.Repeat("t", 500),
		UserID: "u1",
	}
	if errs := validation.ValidateComment(in); len(errs) != 0 {
		t.Errorf("Text of exactly 500 chars should pass, got %v", errs)
	}

	in.Text = strings.Repeat("t", 501)
	if errs := validation.ValidateComment(in); len(errs) == 0 {
		t.Error("Text of 501 chars should fail")
	}
}

func TestValidateComment_TrimBeforeLengthCheck(t *testing.T) {
	// 50 meaningful chars padded with whitespace must still pass
	in := &validation.CommentInput{
		Author: "  " + strings.Repeat("a", 50) + "  ",
		Text:   "texto",
		UserID: "u1",
	}
	if errs := validation.ValidateComment(in); len(errs) != 0 {
		t.Errorf("Padded author of 50 meaningful chars should pass, got %v", errs)
	}
}

func TestValidateVote(t *testing.T) {
	if errs := validation.ValidateVote(&validation.VoteInput{UserID: "u1"}); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}

	errs := validation.ValidateVote(&validation.VoteInput{})
	if len(errs) != 1 || errs[0].Field != "userId" {
		t.Errorf("Expected userId error, got %v", errs)
	}
}

func TestRequiredFields(t *testing.T) {
	errs := []validation.ValidationError{
		{Field: "autor", Message: "autor is required"},
		{Field: "autor", Message: "autor too long"},
		{Field: "userId", Message: "userId is required"},
	}

	fields := validation.RequiredFields(errs)
	if len(fields) != 2 || fields[0] != "autor" || fields[1] != "userId" {
		t.Errorf("Expected deduplicated [autor userId], got %v", fields)
	}
}
